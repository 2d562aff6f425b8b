package core

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cadenceworks/foreman/internal/utils"
	"github.com/cadenceworks/foreman/pkg/database"
	"github.com/cadenceworks/foreman/pkg/errors"
	"github.com/cadenceworks/foreman/pkg/structs"
)

const (
	// max values
	maxNameLength = 500
	maxTypeLength = 500
	maxArgsLength = 10000
	maxDescLength = 2000
)

// Exec runs tasks claimed inline by immediate dispatch. Implemented by the
// worker daemon; nil on pure API deployments.
type Exec interface {
	// Name is the worker name tasks are claimed under.
	Name() string

	// Run executes an already claimed task to completion.
	Run(t *structs.Task)
}

// Service is the dispatch side of the engine: it validates requests,
// writes tasks and groups, and answers queries. Claiming, execution and
// liveness live in the worker daemon.
type Service struct {
	db   database.Database
	exec Exec
	log  *logrus.Entry
}

func NewService(db database.Database, exec Exec) *Service {
	return &Service{db: db, exec: exec, log: logrus.WithField("component", "core")}
}

func (s *Service) Close() error {
	return s.db.Close()
}

// Dispatch validates and creates a task. Immediate tasks are claimed and
// started inline when their reservations are free; if the resources are busy
// a deferred task queues as usual and a non-deferred one is canceled.
func (s *Service) Dispatch(req *structs.DispatchRequest) (*structs.Task, error) {
	if req == nil {
		return nil, errors.ErrInvalidArg
	}
	err := validateTaskSpec(&req.TaskSpec)
	if err != nil {
		return nil, err
	}
	if req.GroupID != "" {
		groups, err := s.db.Groups(&structs.Query{Limit: 1, GroupIDs: []string{req.GroupID}})
		if err != nil {
			return nil, err
		}
		if len(groups) != 1 {
			return nil, fmt.Errorf("%w task group %s", errors.ErrNotFound, req.GroupID)
		}
	}

	t := &structs.Task{
		TaskSpec: req.TaskSpec,
		ID:       utils.NewRandomID(),
		State:    structs.WAITING,
	}

	if !req.Immediate {
		return t, s.db.InsertTask(t)
	}
	if s.exec == nil {
		return nil, fmt.Errorf("%w immediate dispatch needs a worker", errors.ErrNotSupported)
	}

	err = s.db.DispatchImmediate(t, s.exec.Name())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"task": t.ID, "state": t.State}).Debug("immediate dispatch")
	if t.State != structs.RUNNING {
		return t, nil
	}

	// immediate means synchronous: run the task here and hand back the row
	// in whatever end state it converged to
	s.exec.Run(t)
	return s.db.Task(t.ID)
}

// Cancel asks for a task to stop. Waiting tasks are canceled outright,
// running tasks move to canceling and their worker winds them down.
// Canceling an already canceled or canceling task is a no-op.
func (s *Service) Cancel(taskID string) (*structs.Task, error) {
	if !utils.IsValidID(taskID) {
		return nil, fmt.Errorf("%w %s", errors.ErrInvalidArg, taskID)
	}
	return s.db.RequestCancel(taskID)
}

func (s *Service) Task(id string) (*structs.Task, error) {
	if !utils.IsValidID(id) {
		return nil, fmt.Errorf("%w %s", errors.ErrInvalidArg, id)
	}
	return s.db.Task(id)
}

func (s *Service) Tasks(q *structs.Query) ([]*structs.Task, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()
	return s.db.Tasks(q)
}

func (s *Service) CreateGroup(req *structs.CreateGroupRequest) (*structs.TaskGroup, error) {
	if req == nil {
		return nil, errors.ErrInvalidArg
	}
	if len(req.Description) > maxDescLength {
		return nil, fmt.Errorf("%w group description is %d chars, max %d", errors.ErrMaxExceeded, len(req.Description), maxDescLength)
	}
	g := &structs.TaskGroup{
		TaskGroupSpec: req.TaskGroupSpec,
		ID:            utils.NewRandomID(),
	}
	return g, s.db.InsertGroup(g)
}

// Group returns a group together with its per-state task counts.
func (s *Service) Group(id string) (*structs.GroupSummary, error) {
	if !utils.IsValidID(id) {
		return nil, fmt.Errorf("%w %s", errors.ErrInvalidArg, id)
	}
	return s.db.GroupSummary(id)
}

func (s *Service) Groups(q *structs.Query) ([]*structs.TaskGroup, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()
	return s.db.Groups(q)
}

func (s *Service) Workers() ([]*structs.Worker, error) {
	return s.db.Workers()
}
