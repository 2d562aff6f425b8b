package structs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflicts(t *testing.T) {
	cases := []struct {
		Name   string
		Want   []Reservation
		Held   []Reservation
		Expect bool
	}{
		{
			Name:   "EmptyWantNeverConflicts",
			Want:   nil,
			Held:   []Reservation{{Resource: "repo:1", Mode: Exclusive}},
			Expect: false,
		},
		{
			Name:   "EmptyHeldGrants",
			Want:   []Reservation{{Resource: "repo:1", Mode: Exclusive}},
			Held:   nil,
			Expect: false,
		},
		{
			Name:   "ExclusiveBlocksExclusive",
			Want:   []Reservation{{Resource: "repo:1", Mode: Exclusive}},
			Held:   []Reservation{{Resource: "repo:1", Mode: Exclusive}},
			Expect: true,
		},
		{
			Name:   "SharedCoexistsWithShared",
			Want:   []Reservation{{Resource: "repo:2", Mode: Shared}},
			Held:   []Reservation{{Resource: "repo:2", Mode: Shared}},
			Expect: false,
		},
		{
			Name:   "SharedBlockedByExclusive",
			Want:   []Reservation{{Resource: "repo:1", Mode: Shared}},
			Held:   []Reservation{{Resource: "repo:1", Mode: Exclusive}},
			Expect: true,
		},
		{
			Name:   "ExclusiveBlockedByShared",
			Want:   []Reservation{{Resource: "repo:1", Mode: Exclusive}},
			Held:   []Reservation{{Resource: "repo:1", Mode: Shared}},
			Expect: true,
		},
		{
			Name:   "DisjointResources",
			Want:   []Reservation{{Resource: "repo:1", Mode: Exclusive}},
			Held:   []Reservation{{Resource: "repo:2", Mode: Exclusive}},
			Expect: false,
		},
		{
			Name: "AnyOverlapBlocks",
			Want: []Reservation{
				{Resource: "repo:1", Mode: Shared},
				{Resource: "repo:2", Mode: Exclusive},
			},
			Held: []Reservation{
				{Resource: "repo:3", Mode: Exclusive},
				{Resource: "repo:2", Mode: Shared},
			},
			Expect: true,
		},
		{
			Name:   "UnsetModeTreatedAsExclusive",
			Want:   []Reservation{{Resource: "repo:1"}},
			Held:   []Reservation{{Resource: "repo:1", Mode: Shared}},
			Expect: true,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, Conflicts(c.Want, c.Held))
		})
	}
}
