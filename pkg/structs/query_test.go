package structs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		Name   string
		Given  *Query
		Expect *Query
	}{
		{
			Name:   "SetsDefaultLimit",
			Given:  &Query{},
			Expect: &Query{Limit: queryLimitDefault},
		},
		{
			Name:   "SetsMaxLimit",
			Given:  &Query{Limit: queryLimitMax + 1},
			Expect: &Query{Limit: queryLimitMax},
		},
		{
			Name:   "SanitizesOffset",
			Given:  &Query{Limit: 1, Offset: -1},
			Expect: &Query{Limit: 1, Offset: 0},
		},
		{
			Name:   "ZeroTasks",
			Given:  &Query{Limit: 1, TaskIDs: []string{}},
			Expect: &Query{Limit: 1},
		},
		{
			Name:   "ZeroGroups",
			Given:  &Query{Limit: 1, GroupIDs: []string{}},
			Expect: &Query{Limit: 1},
		},
		{
			Name:   "ZeroTypes",
			Given:  &Query{Limit: 1, Types: []string{}},
			Expect: &Query{Limit: 1},
		},
		{
			Name:   "ZeroWorkers",
			Given:  &Query{Limit: 1, Workers: []string{}},
			Expect: &Query{Limit: 1},
		},
		{
			Name:   "ZeroStates",
			Given:  &Query{Limit: 1, States: []State{}},
			Expect: &Query{Limit: 1},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			c.Given.Sanitize()
			assert.Equal(t, c.Expect, c.Given)
		})
	}
}
