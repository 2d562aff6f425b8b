package runtime

import (
	"sync"
	"time"

	"github.com/cadenceworks/foreman/pkg/structs"
)

// progressSink is where progress reports go. Satisfied by the database layer.
type progressSink interface {
	AppendProgress(taskID, worker string, report structs.ProgressReport) error
}

// TaskContext is the view of a claimed task handed to its handler.
// It carries the task row's spec fields plus a scratch dir and lets the
// handler report progress and record resources it created.
type TaskContext struct {
	task    *structs.Task
	worker  string
	workDir string
	sink    progressSink

	mu      sync.Mutex
	created []string
}

func NewTaskContext(t *structs.Task, worker, workDir string, sink progressSink) *TaskContext {
	return &TaskContext{task: t, worker: worker, workDir: workDir, sink: sink}
}

func (c *TaskContext) ID() string                          { return c.task.ID }
func (c *TaskContext) Name() string                        { return c.task.Name }
func (c *TaskContext) Type() string                        { return c.task.Type }
func (c *TaskContext) Args() []byte                        { return c.task.Args }
func (c *TaskContext) Reservations() []structs.Reservation { return c.task.Reservations }
func (c *TaskContext) GroupID() string                     { return c.task.GroupID }
func (c *TaskContext) ParentID() string                    { return c.task.ParentID }

// WorkDir is a private scratch directory for this run. It is removed once
// the task reaches a final state.
func (c *TaskContext) WorkDir() string { return c.workDir }

// Progress records a human readable progress report on the task row.
// Best effort; a failed report does not fail the task.
func (c *TaskContext) Progress(message string, done, total int64) error {
	if c.sink == nil {
		return nil
	}
	return c.sink.AppendProgress(c.task.ID, c.worker, structs.ProgressReport{
		Message: message,
		Done:    done,
		Total:   total,
		At:      time.Now().Unix(),
	})
}

// RecordCreated notes repository resources this task created. They are
// written to the task row when it completes, so cleanup jobs can find
// the output of failed or canceled runs.
func (c *TaskContext) RecordCreated(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, ids...)
}

// CreatedResources returns a copy of everything recorded so far.
func (c *TaskContext) CreatedResources() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.created))
	copy(out, c.created)
	return out
}
