package structs

// TaskSpec are fields that can be set when a task is created
type TaskSpec struct {
	// Type is the type of task this is. This should match the name of a
	// registered task handler.
	//
	// Required.
	Type string `json:"type"`

	// Args is some optional data the task handler should use.
	Args []byte `json:"args"`

	// Name is an optional human readable name for this task
	Name string `json:"name"`

	// Reservations are the resources this task must hold while running.
	Reservations []Reservation `json:"reservations"`

	// Immediate marks the task as eligible for synchronous inline execution
	// at creation time, if its reservations are free.
	Immediate bool `json:"immediate"`

	// Deferred controls what happens when an immediate task can't run right
	// away: queue it (true) or cancel it (false). Ignored unless Immediate.
	Deferred bool `json:"deferred"`

	// GroupID is the optional task group this task belongs to.
	GroupID string `json:"group_id"`

	// ParentID is the optional task that spawned this one.
	ParentID string `json:"parent_id"`
}

// Task represents a single unit of work that needs to be done.
type Task struct {
	// TaskSpec are fields that can be set when a task is created
	TaskSpec `json:",inline"`

	// ID is a unique identifier for this task
	ID string `json:"id"`

	// State is the current state of this task
	State State `json:"state"`

	// OrderingKey is the monotonic creation key tasks are claimed by.
	// It never regresses relative to already-committed tasks, even under
	// concurrent inserts from hosts with skewed clocks.
	OrderingKey int64 `json:"ordering_key"`

	// Worker is the name of the worker currently executing this task,
	// empty otherwise.
	Worker string `json:"worker"`

	// Error is a sanitized description of why the task failed.
	// Diagnostic detail (stacks, internal paths) is logged, never stored here.
	Error string `json:"error"`

	// CreatedResources are identifiers of resources the task body reported
	// creating, returned to callers on completion.
	CreatedResources []string `json:"created_resources"`

	// Progress holds structured reports emitted by the task body.
	Progress []ProgressReport `json:"progress"`

	// CreatedAt is the time this task was created unix time in seconds
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the time this task was last updated unix time in seconds
	UpdatedAt int64 `json:"updated_at"`
}

// ProgressReport is a single structured progress update from a task body.
type ProgressReport struct {
	Message string `json:"message"`
	Done    int64  `json:"done"`
	Total   int64  `json:"total"`
	At      int64  `json:"at"`
}
