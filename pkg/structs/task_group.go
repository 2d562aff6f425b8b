package structs

// TaskGroupSpec are fields that can be set when a group is created
type TaskGroupSpec struct {
	// Description is a human readable summary of what the group does.
	Description string `json:"description"`
}

// TaskGroup aggregates related tasks for coarse progress reporting.
type TaskGroup struct {
	TaskGroupSpec `json:",inline"`

	ID string `json:"id"`

	CreatedAt int64 `json:"created_at"`
}

// GroupSummary is a TaskGroup plus its per-state child task counts.
// Counts are computed from the task rows at read time, never cached,
// so they cannot drift from ground truth.
type GroupSummary struct {
	TaskGroup `json:",inline"`

	Counts map[State]int64 `json:"counts"`

	Total int64 `json:"total"`
}

// Done reports whether every task in the group reached an end state.
func (g *GroupSummary) Done() bool {
	var final int64
	for st, n := range g.Counts {
		if IsFinalState(st) {
			final += n
		}
	}
	return final == g.Total
}
