package database

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cadenceworks/foreman/pkg/database/changes"
	"github.com/cadenceworks/foreman/pkg/structs"
)

// The trigger installed by the migrations emits a small json payload on the
// foreman_events channel for every task insert / update. Only states travel
// over the wire (NOTIFY payloads are size limited, task args are not).

type pgChangeStream struct {
	ctx    context.Context
	conn   *pgxpool.Conn
	closed bool
}

type pgEventPayload struct {
	Table string `json:"table"`
	ID    string `json:"id"`
	Old   string `json:"old_state"`
	New   string `json:"new_state"`
}

// Changes returns a stream of task row changes, fed by LISTEN/NOTIFY.
func (p *Postgres) Changes() (changes.Stream, error) {
	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	_, err = conn.Exec(ctx, "listen foreman_events")
	return &pgChangeStream{
		ctx:  ctx,
		conn: conn,
	}, err
}

func (p *pgChangeStream) Next() (*changes.Change, error) {
	if p.closed {
		return nil, nil
	}

	notification, err := p.conn.Conn().WaitForNotification(p.ctx)
	if err != nil {
		return nil, err
	}

	payload := pgEventPayload{}
	err = json.Unmarshal([]byte(notification.Payload), &payload)
	if err != nil {
		return nil, err
	}

	return &changes.Change{
		Table: payload.Table,
		ID:    payload.ID,
		Old:   structs.ToState(payload.Old),
		New:   structs.ToState(payload.New),
	}, nil
}

func (p *pgChangeStream) Close() error {
	p.closed = true
	p.conn.Release()
	return nil
}
