package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cadenceworks/foreman/internal/config"
	"github.com/cadenceworks/foreman/internal/utils"
	"github.com/cadenceworks/foreman/pkg/database"
	"github.com/cadenceworks/foreman/pkg/errors"
	"github.com/cadenceworks/foreman/pkg/runtime"
	"github.com/cadenceworks/foreman/pkg/structs"
)

// Daemon is a single worker process. It heartbeats its liveness row, claims
// waiting tasks whose reservations can be granted, runs them through its
// Executor, and periodically sweeps up after workers that vanished.
type Daemon struct {
	db   database.Database
	cfg  *config.Worker
	exec *Executor
	name string
	log  *logrus.Entry

	stop     chan struct{}
	stopOnce sync.Once
	draining atomic.Bool

	// wake is pulsed by the change stream so claims happen promptly rather
	// than on the next poll tick. Capacity 1; a pending pulse is enough.
	wake chan struct{}
}

func NewDaemon(db database.Database, reg *runtime.Registry, cfg *config.Worker) *Daemon {
	name := utils.NewWorkerName()
	return &Daemon{
		db:   db,
		cfg:  cfg,
		exec: NewExecutor(db, reg, cfg, name),
		name: name,
		log:  logrus.WithFields(logrus.Fields{"component": "worker", "worker": name}),
		stop: make(chan struct{}),
		wake: make(chan struct{}, 1),
	}
}

// Name is the worker name this daemon claims tasks under.
func (d *Daemon) Name() string { return d.name }

// Run executes an already claimed task to completion (the immediate
// dispatch path).
func (d *Daemon) Run(t *structs.Task) { d.exec.Run(t) }

// Start registers the worker and runs its loops. It blocks until Stop.
func (d *Daemon) Start() error {
	err := d.db.Heartbeat(d.name, time.Now().Unix())
	if err != nil {
		return err
	}
	d.log.Info("worker starting")

	go d.watchChanges()
	go d.heartbeatLoop()
	go d.monitorLoop()
	d.claimLoop()
	return nil
}

// Drain stops claiming new tasks and waits for in-flight ones to converge.
// Used on graceful shutdown.
func (d *Daemon) Drain() {
	d.draining.Store(true)
	d.log.Info("draining, waiting on in-flight tasks")
	d.exec.Wait()
}

// Interrupt stops claiming, cancels in-flight task bodies and converges
// their rows before returning. Bodies get the grace interval to wind down.
func (d *Daemon) Interrupt() {
	d.draining.Store(true)
	d.log.Warn("interrupted, terminating in-flight tasks")
	d.exec.Interrupt()
}

// Stop halts all loops.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

func (d *Daemon) claimLoop() {
	poll := time.NewTicker(d.cfg.PollInterval)
	defer poll.Stop()

	for {
		select {
		case <-d.stop:
			return
		default:
		}

		if !d.draining.Load() {
			t, err := d.db.ClaimNext(d.name, d.cfg.ClaimScanLimit)
			if err == nil {
				d.log.WithFields(logrus.Fields{"task": t.ID, "type": t.Type}).Info("claimed task")
				// Run blocks until the row converges; a worker owns at most
				// one running task at a time
				d.exec.Run(t)
				continue
			}
			if err != errors.ErrNothingToClaim {
				d.log.WithError(err).Warn("claim failed")
			}
		}

		select {
		case <-d.stop:
			return
		case <-d.wake:
		case <-poll.C:
		}
	}
}

// watchChanges pulses the claim loop whenever a task row changes in a way
// that could make something claimable. Retries the stream forever; the poll
// ticker covers any gap.
func (d *Daemon) watchChanges() {
	for {
		select {
		case <-d.stop:
			return
		default:
		}

		stream, err := d.db.Changes()
		if err != nil {
			d.log.WithError(err).Warn("change stream unavailable, polling only")
			select {
			case <-d.stop:
				return
			case <-time.After(d.cfg.PollInterval):
			}
			continue
		}

		for {
			evt, err := stream.Next()
			if err != nil {
				d.log.WithError(err).Warn("change stream broke, reconnecting")
				stream.Close()
				break
			}
			if evt == nil {
				d.log.Warn("change stream closed, claims fall back to polling")
				stream.Close()
				return
			}
			if evt.New == structs.WAITING || structs.IsFinalState(evt.New) {
				// new work, or reservations freed up
				select {
				case d.wake <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (d *Daemon) heartbeatLoop() {
	tick := time.NewTicker(d.cfg.HeartbeatInterval)
	defer tick.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-tick.C:
			err := d.db.Heartbeat(d.name, time.Now().Unix())
			if err != nil {
				d.log.WithError(err).Warn("heartbeat failed")
			}
		}
	}
}

func (d *Daemon) monitorLoop() {
	tick := time.NewTicker(d.cfg.MonitorInterval)
	defer tick.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-tick.C:
			d.monitorPass(time.Now().Unix())
		}
	}
}
