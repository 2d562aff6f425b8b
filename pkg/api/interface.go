package api

import (
	"github.com/cadenceworks/foreman/pkg/structs"
)

// API represents the functions foreman servers should expose.
type API interface {
	// Implemented in foreman/internal/core.Service

	Dispatch(req *structs.DispatchRequest) (*structs.Task, error)
	Cancel(taskID string) (*structs.Task, error)

	Task(id string) (*structs.Task, error)
	Tasks(q *structs.Query) ([]*structs.Task, error)

	CreateGroup(req *structs.CreateGroupRequest) (*structs.TaskGroup, error)
	Group(id string) (*structs.GroupSummary, error)
	Groups(q *structs.Query) ([]*structs.TaskGroup, error)

	Workers() ([]*structs.Worker, error)
}

type Server interface {
	ServeForever(api API) error
	Close() error
}
