package database

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cadenceworks/foreman/pkg/structs"
)

func TestToTaskSqlArgs(t *testing.T) {
	in := &structs.Task{
		TaskSpec: structs.TaskSpec{
			Type: "sync",
			Args: []byte(`{"a": "b"}`),
			Name: "sync repo one",
			Reservations: []structs.Reservation{
				{Resource: "repo:1", Mode: structs.Exclusive},
			},
			Immediate: true,
			Deferred:  true,
			GroupID:   "groupid",
			ParentID:  "parentid",
		},
		ID:          "id",
		State:       structs.WAITING,
		OrderingKey: 12345,
		Worker:      "workername",
		Error:       "message",
		CreatedAt:   200,
		UpdatedAt:   300,
	}

	qstr, result, err := toTaskSqlArgs(2, in)

	assert.Nil(t, err)
	assert.Equal(t, "($2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)", qstr)

	reservations, _ := json.Marshal(in.Reservations)
	assert.Equal(t, []interface{}{
		in.Type,
		in.Args,
		in.Name,
		reservations,
		in.Immediate,
		in.Deferred,
		in.GroupID,
		in.ParentID,
		in.ID,
		in.State,
		in.OrderingKey,
		in.Worker,
		in.Error,
		[]byte(`[]`),
		[]byte(`[]`),
		in.CreatedAt,
		in.UpdatedAt,
	}, result)
}

func TestToTaskSqlArgsSetsCreatedAt(t *testing.T) {
	in := &structs.Task{ID: "id", State: structs.WAITING}

	_, _, err := toTaskSqlArgs(1, in)

	assert.Nil(t, err)
	assert.NotZero(t, in.CreatedAt)
	assert.Equal(t, in.CreatedAt, in.UpdatedAt)
}

func TestToSqlIn(t *testing.T) {
	qstr, args := toSqlIn(3, "state", []string{"waiting", "running"})

	assert.Equal(t, "state IN ($3, $4)", qstr)
	assert.Equal(t, []interface{}{"waiting", "running"}, args)
}

func TestToSqlInEmpty(t *testing.T) {
	qstr, args := toSqlIn(1, "state", nil)

	assert.Equal(t, "", qstr)
	assert.Equal(t, []interface{}{}, args)
}

func TestToSqlQuery(t *testing.T) {
	cases := []struct {
		Name       string
		In         map[string][]string
		UpB        int64
		UpA        int64
		CrB        int64
		CrA        int64
		ExpectStr  string
		ExpectArgs []interface{}
	}{
		{
			Name:       "Empty",
			In:         nil,
			ExpectStr:  "",
			ExpectArgs: []interface{}{},
		},
		{
			Name:       "SingleField",
			In:         map[string][]string{"id": {"a", "b"}},
			ExpectStr:  "WHERE id IN ($1, $2)",
			ExpectArgs: []interface{}{"a", "b"},
		},
		{
			Name: "FieldsInSortedOrder",
			In: map[string][]string{
				"worker": {"w1"},
				"id":     {"a"},
			},
			ExpectStr:  "WHERE id IN ($1) AND worker IN ($2)",
			ExpectArgs: []interface{}{"a", "w1"},
		},
		{
			Name:       "TimeBounds",
			In:         nil,
			UpB:        10,
			UpA:        5,
			CrB:        20,
			CrA:        15,
			ExpectStr:  "WHERE updated_at <= $1 AND updated_at >= $2 AND created_at <= $3 AND created_at >= $4",
			ExpectArgs: []interface{}{int64(10), int64(5), int64(20), int64(15)},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			qstr, args := toSqlQuery(c.In, c.UpB, c.UpA, c.CrB, c.CrA)

			assert.Equal(t, c.ExpectStr, qstr)
			assert.Equal(t, c.ExpectArgs, args)
		})
	}
}

func TestStatesToStrings(t *testing.T) {
	assert.Nil(t, statesToStrings(nil))
	assert.Equal(t, []string{"waiting", "failed"}, statesToStrings([]structs.State{structs.WAITING, structs.FAILED}))
}
