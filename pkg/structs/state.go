package structs

import (
	"strings"
)

type State string

const (
	// transient states
	WAITING   State = "waiting"
	RUNNING   State = "running"
	CANCELING State = "canceling"

	// end states
	COMPLETED State = "completed"
	FAILED    State = "failed"
	CANCELED  State = "canceled"
)

// transitions is the directed graph of legal state changes.
// Once an end state is reached no further transition is allowed.
var transitions = map[State][]State{
	WAITING:   {RUNNING, CANCELING, CANCELED},
	RUNNING:   {COMPLETED, FAILED, CANCELING},
	CANCELING: {CANCELED},
}

func IsFinalState(s State) bool {
	switch s {
	case COMPLETED, FAILED, CANCELED:
		return true
	default:
		return false
	}
}

// CanTransition reports whether from -> to is a legal state change.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ToState(s string) State {
	switch strings.ToLower(s) {
	case "waiting":
		return WAITING
	case "running":
		return RUNNING
	case "canceling":
		return CANCELING
	case "completed":
		return COMPLETED
	case "failed":
		return FAILED
	case "canceled":
		return CANCELED
	default:
		return ""
	}
}
