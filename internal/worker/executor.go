package worker

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cadenceworks/foreman/internal/config"
	"github.com/cadenceworks/foreman/pkg/database"
	"github.com/cadenceworks/foreman/pkg/runtime"
	"github.com/cadenceworks/foreman/pkg/structs"
)

const maxErrorLength = 500

// Executor runs claimed tasks, each in its own goroutine, and converges
// their rows to an end state. Task bodies get a cancellable context and a
// scratch dir; panics and ignored cancellations are contained here so a
// misbehaving body can never wedge the worker.
type Executor struct {
	db   database.Database
	reg  *runtime.Registry
	cfg  *config.Worker
	name string
	log  *logrus.Entry
	wg   sync.WaitGroup

	interrupt chan struct{}
	intOnce   sync.Once
}

func NewExecutor(db database.Database, reg *runtime.Registry, cfg *config.Worker, name string) *Executor {
	return &Executor{
		db:        db,
		reg:       reg,
		cfg:       cfg,
		name:      name,
		log:       logrus.WithFields(logrus.Fields{"component": "executor", "worker": name}),
		interrupt: make(chan struct{}),
	}
}

// Name is the worker name tasks are claimed under.
func (e *Executor) Name() string { return e.name }

// Run executes an already claimed task to completion, converging its row to
// a terminal state before returning. A worker runs one task at a time.
func (e *Executor) Run(t *structs.Task) {
	e.wg.Add(1)
	defer e.wg.Done()
	e.execute(t)
}

// Wait blocks until every in-flight task has converged.
func (e *Executor) Wait() { e.wg.Wait() }

// Interrupt cancels every in-flight task body, gives it the grace interval
// to wind down, and waits for the rows to converge.
func (e *Executor) Interrupt() {
	e.intOnce.Do(func() { close(e.interrupt) })
	e.wg.Wait()
}

func (e *Executor) execute(t *structs.Task) {
	log := e.log.WithFields(logrus.Fields{"task": t.ID, "type": t.Type})

	handler, err := e.reg.Resolve(t.Type)
	if err != nil {
		log.WithError(err).Warn("claimed task has no handler")
		e.converge(log, t, structs.RUNNING, structs.FAILED, &database.StatePayload{
			Error: fmt.Sprintf("no handler registered for type %s", t.Type),
		})
		return
	}

	workDir, err := os.MkdirTemp(e.cfg.WorkDirRoot, "task-"+t.ID+"-")
	if err != nil {
		log.WithError(err).Error("failed to create work dir")
		e.converge(log, t, structs.RUNNING, structs.FAILED, &database.StatePayload{
			Error: "failed to create work dir",
		})
		return
	}
	defer os.RemoveAll(workDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tc := runtime.NewTaskContext(t, e.name, workDir, e.db)

	done := make(chan error, 1)
	go func() {
		done <- e.invoke(ctx, log, handler, tc)
	}()

	canceling := false
	var grace <-chan time.Time

	poll := time.NewTicker(e.cfg.PollInterval)
	defer poll.Stop()

	interrupt := e.interrupt
	for {
		select {
		case <-interrupt:
			// the worker is shutting down hard; wind the body down now
			interrupt = nil
			cancel()
			if grace == nil {
				grace = time.After(e.cfg.GraceInterval)
			}
			log.Warn("worker interrupted, terminating task")
		case err := <-done:
			payload := &database.StatePayload{CreatedResources: tc.CreatedResources()}
			if canceling {
				e.converge(log, t, structs.CANCELING, structs.CANCELED, payload)
			} else if err != nil {
				payload.Error = truncateError(err)
				e.converge(log, t, structs.RUNNING, structs.FAILED, payload)
			} else {
				e.converge(log, t, structs.RUNNING, structs.COMPLETED, payload)
			}
			return
		case <-poll.C:
			cur, err := e.db.Task(t.ID)
			if err != nil {
				log.WithError(err).Warn("failed to re-read task")
				continue
			}
			if structs.IsFinalState(cur.State) || cur.Worker != e.name {
				// the liveness monitor (or an operator) converged this task
				// behind our back; nothing left to write
				log.WithField("state", cur.State).Warn("task taken away mid run, abandoning")
				return
			}
			if cur.State == structs.CANCELING && !canceling {
				canceling = true
				cancel()
				grace = time.After(e.cfg.GraceInterval)
				log.Info("cancel requested, winding down")
			}
		case <-grace:
			// the body ignored its context for the whole grace interval;
			// abandon the goroutine and converge the row without it
			log.Warn("grace interval expired, terminating task")
			payload := &database.StatePayload{CreatedResources: tc.CreatedResources()}
			if canceling {
				e.converge(log, t, structs.CANCELING, structs.CANCELED, payload)
			} else {
				payload.Error = "worker interrupted"
				e.converge(log, t, structs.RUNNING, structs.FAILED, payload)
			}
			return
		}
	}
}

// invoke runs the task body, converting panics into errors. The stack is
// logged; only a generic message is ever written to the task row.
func (e *Executor) invoke(ctx context.Context, log *logrus.Entry, h runtime.Handler, tc *runtime.TaskContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error(string(debug.Stack()))
			err = fmt.Errorf("task body panicked")
		}
	}()
	return h(ctx, tc)
}

func (e *Executor) converge(log *logrus.Entry, t *structs.Task, from, to structs.State, payload *database.StatePayload) {
	err := e.db.UpdateState(t.ID, e.name, from, to, payload)
	if err == nil {
		log.WithField("to", to).Info("task finished")
		return
	}

	// a cancel can land between the body finishing and our write, moving the
	// row to canceling under us. We still own it, so it is ours to settle:
	// nobody else will ever write canceled.
	cur, rerr := e.db.Task(t.ID)
	if rerr == nil && cur.State == structs.CANCELING && cur.Worker == e.name {
		err = e.db.UpdateState(t.ID, e.name, structs.CANCELING, structs.CANCELED, payload)
		if err == nil {
			log.WithField("to", structs.CANCELED).Info("task finished")
			return
		}
	}

	// not-owner / invalid-transition past this point means the liveness
	// monitor (or an operator) won the race; the row is already settled
	log.WithError(err).WithField("to", to).Warn("could not converge task state")
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorLength {
		msg = msg[:maxErrorLength]
	}
	return msg
}
