package worker

import (
	"github.com/sirupsen/logrus"

	"github.com/cadenceworks/foreman/pkg/database"
	"github.com/cadenceworks/foreman/pkg/structs"
)

// monitorPass converges state for workers that stopped heartbeating and
// enforces retention. Every worker runs this; the guarded updates make it
// safe for several monitors to reap the same worker at once.
func (d *Daemon) monitorPass(now int64) {
	workers, err := d.db.Workers()
	if err != nil {
		d.log.WithError(err).Warn("monitor could not list workers")
		return
	}

	ttl := int64(d.cfg.HeartbeatTTL.Seconds())
	stale := []string{}
	for _, w := range workers {
		if w.Name == d.name || w.Online(now, ttl) {
			continue
		}
		d.reapLostWorker(w.Name)
		if now-w.LastHeartbeat > int64(d.cfg.WorkerRetention.Seconds()) {
			stale = append(stale, w.Name)
		}
	}

	if len(stale) > 0 {
		n, err := d.db.DeleteWorkers(stale)
		if err != nil {
			d.log.WithError(err).Warn("failed to delete stale workers")
		} else if n > 0 {
			d.log.WithField("count", n).Info("deleted stale worker rows")
		}
	}

	purged, err := d.db.PurgeTasks(now - int64(d.cfg.TaskRetention.Seconds()))
	if err != nil {
		d.log.WithError(err).Warn("failed to purge old tasks")
	} else if purged > 0 {
		d.log.WithField("count", purged).Info("purged finished tasks")
	}
}

// reapLostWorker fails the running tasks of a worker presumed lost and
// finishes cancellations it never acknowledged. Terminal transitions release
// the dead worker's reservations as a side effect.
func (d *Daemon) reapLostWorker(name string) {
	log := d.log.WithField("lost", name)

	q := &structs.Query{
		Workers: []string{name},
		States:  []structs.State{structs.RUNNING, structs.CANCELING},
	}
	q.Sanitize()
	tasks, err := d.db.Tasks(q)
	if err != nil {
		log.WithError(err).Warn("could not list tasks of lost worker")
		return
	}

	for _, t := range tasks {
		payload := &database.StatePayload{Error: "worker lost"}
		switch t.State {
		case structs.RUNNING:
			err = d.db.UpdateState(t.ID, name, structs.RUNNING, structs.FAILED, payload)
		case structs.CANCELING:
			err = d.db.UpdateState(t.ID, name, structs.CANCELING, structs.CANCELED, payload)
		}
		if err != nil {
			// another monitor probably got there first
			log.WithError(err).WithField("task", t.ID).Debug("lost task already converged")
			continue
		}
		log.WithFields(logrus.Fields{"task": t.ID, "was": t.State}).Info("converged task of lost worker")
	}
}
