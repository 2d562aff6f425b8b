package structs

// DispatchRequest is an outline to create (and maybe inline-execute) a task.
type DispatchRequest struct {
	// TaskSpec are fields that can be set when a task is created
	TaskSpec `json:",inline"`
}

// CreateGroupRequest is an outline to create a new task group.
type CreateGroupRequest struct {
	TaskGroupSpec `json:",inline"`
}
