package structs

// Mode says how a task intends to hold a resource.
type Mode string

const (
	// Exclusive holds block every other hold on the same resource.
	Exclusive Mode = "exclusive"

	// Shared holds coexist with other shared holds, but not exclusive ones.
	Shared Mode = "shared"
)

func ToMode(s string) Mode {
	switch s {
	case "exclusive":
		return Exclusive
	case "shared":
		return Shared
	default:
		return ""
	}
}

// Reservation is a declared, mode-tagged claim on a named resource.
// A task holds all of its reservations for as long as it is running.
type Reservation struct {
	// Resource is a free-form identifier, eg. a repository name.
	Resource string `json:"resource"`

	// Mode is how the resource is held (defaults to exclusive).
	Mode Mode `json:"mode"`
}

// Conflicts reports whether the given reservation set can not be granted
// alongside the already-held set.
//
// An exclusive hold blocks everything on the same resource; a shared hold
// blocks only exclusive requests. An empty want set never conflicts.
func Conflicts(want, held []Reservation) bool {
	heldExclusive := map[string]bool{}
	heldShared := map[string]bool{}
	for _, h := range held {
		if h.Mode == Shared {
			heldShared[h.Resource] = true
		} else {
			heldExclusive[h.Resource] = true
		}
	}
	for _, w := range want {
		if heldExclusive[w.Resource] {
			return true
		}
		if w.Mode != Shared && heldShared[w.Resource] {
			return true
		}
	}
	return false
}
