package runtime

import (
	"context"
	"sort"
	"sync"

	"github.com/cadenceworks/foreman/pkg/errors"
)

// Handler runs a single task. The given context is cancelled when the task
// is asked to stop; handlers that ignore it are terminated after the grace
// interval and their task converges to canceled anyway.
type Handler func(ctx context.Context, task *TaskContext) error

// Registry maps task types to the handlers a worker is willing to run.
// A claimed task whose type is not registered fails with a stored error.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register binds a handler to a task type. Registering the same type twice
// replaces the previous handler.
func (r *Registry) Register(taskType string, h Handler) error {
	if taskType == "" {
		return errors.ErrNoTaskType
	}
	if h == nil {
		return errors.ErrInvalidArg
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[taskType] = h
	return nil
}

// Resolve returns the handler for the given task type.
func (r *Registry) Resolve(taskType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[taskType]
	if !ok {
		return nil, errors.ErrNotRegistered
	}
	return h, nil
}

// Types returns the registered task types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
