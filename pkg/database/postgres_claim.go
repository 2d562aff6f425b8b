package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cadenceworks/foreman/pkg/errors"
	"github.com/cadenceworks/foreman/pkg/structs"

	"github.com/jackc/pgx/v5"
)

// Advisory lock keys. Both are transaction scoped (pg_advisory_xact_lock) so
// they can never leak past a commit or rollback.
//
// orderingLock serializes only the ordering-key assignment, not whole-table
// inserts: two creators contend for the instant it takes to read the max
// committed key and pick a larger one, nothing more.
//
// claimLock serializes claim attempts. The conflict check reads the grants of
// every running task; two claimers computing that set concurrently could each
// grant tasks whose reservations overlap, so the check and the grant must be
// one critical section.
const (
	orderingLock = int64(8271001)
	claimLock    = int64(8271002)
)

// NextOrderingKey picks the ordering key for a new task given the local clock
// (microseconds) and the highest already-committed key. The result is always
// strictly greater than lastCommitted, so ordering never regresses even when
// the clock of the inserting process runs behind a previous inserter's.
func NextOrderingKey(nowMicros, lastCommitted int64) int64 {
	if nowMicros <= lastCommitted {
		return lastCommitted + 1
	}
	return nowMicros
}

// assignOrderingKey sets t.OrderingKey under the ordering advisory lock.
// Must be called inside the transaction that inserts the row; the lock is
// held until that transaction ends, which is exactly the window in which the
// chosen key must stay the maximum.
func assignOrderingKey(ctx context.Context, tx pgx.Tx, t *structs.Task) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, orderingLock)
	if err != nil {
		return err
	}
	var last int64
	err = tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT COALESCE(MAX(ordering_key), 0) FROM %s;`, tableTasks)).Scan(&last)
	if err != nil {
		return err
	}
	t.OrderingKey = NextOrderingKey(time.Now().UnixMicro(), last)
	return nil
}

// ClaimNext atomically grants the oldest conflict-free waiting task to the
// given worker. The scan is oldest-first but skips candidates whose resources
// are busy, so a younger task with free resources is not starved behind an
// older blocked one (work conserving, approximate FIFO).
func (p *Postgres) ClaimNext(worker string, scanLimit int) (*structs.Task, error) {
	if scanLimit <= 0 {
		scanLimit = 100
	}

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, claimLock)
	if err != nil {
		return nil, err
	}

	held, err := heldReservations(ctx, tx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE state=$1 ORDER BY ordering_key ASC LIMIT $2;`, taskCols, tableTasks),
		structs.WAITING, scanLimit,
	)
	if err != nil {
		return nil, err
	}
	candidates := []*structs.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		candidates = append(candidates, t)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	pick := firstGrantable(candidates, held)
	if pick == nil {
		return nil, errors.ErrNothingToClaim
	}

	now := timeNow()
	info, err := tx.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET state=$1, worker=$2, updated_at=$3 WHERE id=$4 AND state=$5;`, tableTasks),
		structs.RUNNING, worker, now, pick.ID, structs.WAITING,
	)
	if err != nil {
		return nil, err
	}
	if info.RowsAffected() != 1 {
		// Can't happen while we hold the claim lock, unless something outside
		// the claim path (eg. a cancel) moved the row. Treat as no claim.
		return nil, errors.ErrNothingToClaim
	}
	err = tx.Commit(ctx)
	if err != nil {
		return nil, err
	}

	pick.State = structs.RUNNING
	pick.Worker = worker
	pick.UpdatedAt = now
	return pick, nil
}

// DispatchImmediate inserts the task and attempts to grant its reservations
// in the same transaction, so it is never observable half-reserved. On grant
// failure the task is committed waiting (deferred) or canceled (not
// deferred). t reflects whatever was committed.
func (p *Postgres) DispatchImmediate(t *structs.Task, worker string) error {
	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock order matters: ordering before claim, same as any other inserter.
	err = assignOrderingKey(ctx, tx, t)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, claimLock)
	if err != nil {
		return err
	}

	held, err := heldReservations(ctx, tx)
	if err != nil {
		return err
	}

	if !structs.Conflicts(t.Reservations, held) {
		t.State = structs.RUNNING
		t.Worker = worker
	} else if t.Deferred {
		t.State = structs.WAITING
	} else {
		t.State = structs.CANCELED
		t.Error = "resources busy and task is not deferred"
	}

	vals, args, err := toTaskSqlArgs(1, t)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s;`, tableTasks, taskCols, vals), args...)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// heldReservations returns the union of reservations granted to every
// non-terminal running task. Tasks in canceling still hold their grants;
// waiting tasks have declared but not been granted anything.
func heldReservations(ctx context.Context, tx pgx.Tx) ([]structs.Reservation, error) {
	rows, err := tx.Query(ctx, fmt.Sprintf(
		`SELECT reservations FROM %s WHERE state IN ($1, $2);`, tableTasks),
		structs.RUNNING, structs.CANCELING,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	held := []structs.Reservation{}
	for rows.Next() {
		var raw []byte
		err = rows.Scan(&raw)
		if err != nil {
			return nil, err
		}
		var rs []structs.Reservation
		err = json.Unmarshal(raw, &rs)
		if err != nil {
			return nil, err
		}
		held = append(held, rs...)
	}
	return held, rows.Err()
}

// firstGrantable returns the first candidate (given in ordering-key order)
// whose reservation set does not conflict with the held set, or nil.
func firstGrantable(candidates []*structs.Task, held []structs.Reservation) *structs.Task {
	for _, c := range candidates {
		if !structs.Conflicts(c.Reservations, held) {
			return c
		}
	}
	return nil
}
