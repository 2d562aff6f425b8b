package database

import (
	"github.com/cadenceworks/foreman/pkg/database/changes"
	"github.com/cadenceworks/foreman/pkg/structs"
)

// StatePayload is written alongside a terminal state transition.
type StatePayload struct {
	// Error is a sanitized failure description. Never a traceback.
	Error string

	// CreatedResources the task body reported creating.
	CreatedResources []string
}

// Database is the coordination substrate: the single source of truth for
// task state, reservations, worker liveness and claim ordering. Every
// mutation here is a single atomic statement or transaction; no caller ever
// needs a read-modify-write across two round trips.
type Database interface {
	// InsertTask writes a new waiting (or canceled) task, assigning its
	// monotonic ordering key.
	InsertTask(t *structs.Task) error

	// DispatchImmediate inserts the task and, in the same transaction,
	// attempts to grant its reservations and set it running under the given
	// worker. If the grant fails the task is queued (deferred) or canceled
	// (not deferred). The task's State/Worker/OrderingKey are set to whatever
	// was committed.
	DispatchImmediate(t *structs.Task, worker string) error

	// ClaimNext atomically grants the oldest conflict-free waiting task to
	// the given worker and returns it. Returns ErrNothingToClaim when no
	// waiting task's reservations can be granted right now.
	ClaimNext(worker string, scanLimit int) (*structs.Task, error)

	// UpdateState performs the from -> to transition, guarded on current
	// state and owning worker. Terminal transitions release the task's
	// reservations in the same statement (the granted set is derived from
	// non-terminal states, so there is nothing separate to release).
	UpdateState(taskID, worker string, from, to structs.State, payload *StatePayload) error

	// RequestCancel moves a waiting task straight to canceled, or a running
	// task to canceling for its worker to act on. Idempotent; returns the
	// task as committed.
	RequestCancel(taskID string) (*structs.Task, error)

	// AppendProgress appends a progress report to a task the given worker
	// currently holds.
	AppendProgress(taskID, worker string, report structs.ProgressReport) error

	Task(id string) (*structs.Task, error)
	Tasks(q *structs.Query) ([]*structs.Task, error)

	// PurgeTasks deletes terminal tasks last updated before the given unix
	// second. Non-terminal tasks are never deleted.
	PurgeTasks(olderThan int64) (int64, error)

	// Heartbeat upserts the worker row with the given beat time.
	Heartbeat(name string, at int64) error
	Workers() ([]*structs.Worker, error)
	DeleteWorkers(names []string) (int64, error)

	InsertGroup(g *structs.TaskGroup) error
	Groups(q *structs.Query) ([]*structs.TaskGroup, error)

	// GroupSummary aggregates child task counts by state at read time.
	GroupSummary(id string) (*structs.GroupSummary, error)

	Changes() (changes.Stream, error)

	Close() error
}
