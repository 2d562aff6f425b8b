package structs

const (
	queryLimitDefault = 1000
	queryLimitMax     = 10000
)

type Query struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Filters
	TaskIDs  []string `json:"task_ids,omitempty"`
	GroupIDs []string `json:"group_ids,omitempty"`
	Types    []string `json:"types,omitempty"`
	Workers  []string `json:"workers,omitempty"`
	States   []State  `json:"states,omitempty"`

	// Unix second bounds, 0 means unset
	UpdatedBefore int64 `json:"updated_before,omitempty"`
	UpdatedAfter  int64 `json:"updated_after,omitempty"`
	CreatedBefore int64 `json:"created_before,omitempty"`
	CreatedAfter  int64 `json:"created_after,omitempty"`
}

func (q *Query) Sanitize() {
	if q.Limit <= 0 {
		q.Limit = queryLimitDefault
	}
	if q.Limit > queryLimitMax {
		q.Limit = queryLimitMax
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if len(q.TaskIDs) == 0 {
		q.TaskIDs = nil
	}
	if len(q.GroupIDs) == 0 {
		q.GroupIDs = nil
	}
	if len(q.Types) == 0 {
		q.Types = nil
	}
	if len(q.Workers) == 0 {
		q.Workers = nil
	}
	if len(q.States) == 0 {
		q.States = nil
	}
}
