package database

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cadenceworks/foreman/pkg/structs"
)

func exclusive(rs ...string) []structs.Reservation {
	out := []structs.Reservation{}
	for _, r := range rs {
		out = append(out, structs.Reservation{Resource: r, Mode: structs.Exclusive})
	}
	return out
}

func shared(rs ...string) []structs.Reservation {
	out := []structs.Reservation{}
	for _, r := range rs {
		out = append(out, structs.Reservation{Resource: r, Mode: structs.Shared})
	}
	return out
}

func TestNextOrderingKey(t *testing.T) {
	cases := []struct {
		Name   string
		Now    int64
		Last   int64
		Expect int64
	}{
		{"ClockAhead", 100, 50, 100},
		{"ClockEqual", 100, 100, 101},
		{"ClockBehind", 50, 100, 101},
		{"FirstEver", 100, 0, 100},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, NextOrderingKey(c.Now, c.Last))
		})
	}
}

// Concurrent creators on hosts with skewed clocks must never mint a key that
// is <= an already-committed one. We simulate a run of inserts where each
// creator's clock is randomly offset (including backwards) and check the
// committed key sequence is strictly increasing.
func TestNextOrderingKeyMonotonicUnderClockSkew(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	var wall int64 = 1_700_000_000_000_000 // some plausible epoch in micros
	var last int64

	for i := 0; i < 10000; i++ {
		wall += rng.Int63n(50) // wall clock ambles forward
		skew := rng.Int63n(2_000_001) - 1_000_000
		observed := wall + skew // this creator's view of the clock, +-1s

		key := NextOrderingKey(observed, last)

		assert.Greater(t, key, last, "iteration %d: key %d did not advance past %d", i, key, last)
		last = key
	}
}

func TestFirstGrantable(t *testing.T) {
	taskA := &structs.Task{ID: "a", TaskSpec: structs.TaskSpec{Reservations: exclusive("repo:1")}}
	taskB := &structs.Task{ID: "b", TaskSpec: structs.TaskSpec{Reservations: exclusive("repo:2")}}
	taskC := &structs.Task{ID: "c", TaskSpec: structs.TaskSpec{Reservations: shared("repo:1")}}
	taskFree := &structs.Task{ID: "free"}

	cases := []struct {
		Name       string
		Candidates []*structs.Task
		Held       []structs.Reservation
		Expect     string
	}{
		{
			Name:       "NothingWaiting",
			Candidates: nil,
			Held:       nil,
			Expect:     "",
		},
		{
			Name:       "OldestFirst",
			Candidates: []*structs.Task{taskA, taskB},
			Held:       nil,
			Expect:     "a",
		},
		{
			Name:       "SkipsBlockedOlderTask",
			Candidates: []*structs.Task{taskA, taskB},
			Held:       exclusive("repo:1"),
			Expect:     "b",
		},
		{
			Name:       "AllBlocked",
			Candidates: []*structs.Task{taskA, taskC},
			Held:       exclusive("repo:1"),
			Expect:     "",
		},
		{
			Name:       "SharedGrantsAlongsideShared",
			Candidates: []*structs.Task{taskC},
			Held:       shared("repo:1"),
			Expect:     "c",
		},
		{
			Name:       "EmptyReservationsAlwaysGrant",
			Candidates: []*structs.Task{taskA, taskFree},
			Held:       exclusive("repo:1", "repo:2"),
			Expect:     "free",
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			pick := firstGrantable(c.Candidates, c.Held)
			if c.Expect == "" {
				assert.Nil(t, pick)
			} else {
				assert.NotNil(t, pick)
				assert.Equal(t, c.Expect, pick.ID)
			}
		})
	}
}
