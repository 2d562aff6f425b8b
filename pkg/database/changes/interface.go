package changes

// It's kind of odd having this in its own package, but it avoids a circular
// dependency when importing mocks during testing

import (
	"github.com/cadenceworks/foreman/pkg/structs"
)

// Change is a minimal row-change notification. Workers use these to wake up
// when a task becomes claimable (new waiting task, or a terminal transition
// freeing reservations) rather than polling on a timer alone.
type Change struct {
	Table string
	ID    string
	Old   structs.State
	New   structs.State
}

type Stream interface {
	Next() (*Change, error)
	Close() error
}
