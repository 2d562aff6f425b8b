package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cadenceworks/foreman/pkg/errors"
	"github.com/cadenceworks/foreman/pkg/structs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	tableTasks   = "tasks"
	tableWorkers = "workers"
	tableGroups  = "task_groups"

	// taskCols is the canonical column order for task rows; insert args and
	// row scans must agree with it.
	taskCols = `type, args, name, reservations, immediate, deferred, group_id, parent_id, id, state, ordering_key, worker, error, created_resources, progress, created_at, updated_at`
)

var terminalStates = []string{
	string(structs.COMPLETED),
	string(structs.FAILED),
	string(structs.CANCELED),
}

// Postgres is a foreman database implementation that uses postgres.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.SetDefaults()
	opts.URL = strings.Replace(opts.URL, "$"+opts.UsernameEnvVar, os.Getenv(opts.UsernameEnvVar), 1)
	opts.URL = strings.Replace(opts.URL, "$"+opts.PasswordEnvVar, os.Getenv(opts.PasswordEnvVar), 1)
	pool, err := pgxpool.New(context.Background(), opts.URL)
	return &Postgres{pool: pool, opts: opts}, err
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InsertTask writes a single task row, assigning its ordering key inside the
// same transaction (see assignOrderingKey).
func (p *Postgres) InsertTask(t *structs.Task) error {
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

	err = p.insertTaskTx(ctx, tx, t)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateState performs a guarded state transition. The guard covers both the
// expected current state and the owning worker, so two writers can never race
// each other past the state machine. A terminal transition clears the worker
// back-reference, which also releases the task's reservations (the granted
// set is derived from non-terminal rows).
func (p *Postgres) UpdateState(taskID, worker string, from, to structs.State, payload *StatePayload) error {
	if !structs.CanTransition(from, to) {
		return fmt.Errorf("%w %s -> %s", errors.ErrInvalidTransition, from, to)
	}
	if payload == nil {
		payload = &StatePayload{}
	}
	created, err := json.Marshal(orEmpty(payload.CreatedResources))
	if err != nil {
		return err
	}

	newWorker := worker
	if structs.IsFinalState(to) {
		newWorker = ""
	}
	qstr := fmt.Sprintf(`UPDATE %s SET state=$1, worker=$2, error=$3, created_resources=$4, updated_at=$5
	WHERE id=$6 AND state=$7 AND worker=$8;`, tableTasks)
	args := []interface{}{to, newWorker, payload.Error, created, timeNow(), taskID, from, worker}

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, args...)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 1 {
		return nil
	}

	// The guard failed; re-read to say why.
	task, err := p.Task(taskID)
	if err != nil {
		return err
	}
	if task.State == from && task.Worker != worker {
		return fmt.Errorf("%w task %s is held by %q not %q", errors.ErrNotOwner, taskID, task.Worker, worker)
	}
	return fmt.Errorf("%w task %s is %s, wanted %s -> %s", errors.ErrInvalidTransition, taskID, task.State, from, to)
}

// RequestCancel translates a user cancel into the right transition for the
// task's current state: waiting tasks are canceled outright (they never ran),
// running tasks are put into canceling for their worker to act on. Calling
// this on a task already canceling or terminal is a no-op.
func (p *Postgres) RequestCancel(taskID string) (*structs.Task, error) {
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

	now := timeNow()
	info, err := tx.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET state=$1, updated_at=$2 WHERE id=$3 AND state=$4;`, tableTasks),
		structs.CANCELED, now, taskID, structs.WAITING,
	)
	if err != nil {
		return nil, err
	}
	if info.RowsAffected() == 0 {
		_, err = tx.Exec(ctx, fmt.Sprintf(
			`UPDATE %s SET state=$1, updated_at=$2 WHERE id=$3 AND state=$4;`, tableTasks),
			structs.CANCELING, now, taskID, structs.RUNNING,
		)
		if err != nil {
			return nil, err
		}
	}

	row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1;`, taskCols, tableTasks), taskID)
	task, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w task %s", errors.ErrNotFound, taskID)
		}
		return nil, err
	}
	return task, tx.Commit(ctx)
}

// AppendProgress appends a report to a task the given worker holds.
func (p *Postgres) AppendProgress(taskID, worker string, report structs.ProgressReport) error {
	data, err := json.Marshal([]structs.ProgressReport{report})
	if err != nil {
		return err
	}

	qstr := fmt.Sprintf(`UPDATE %s SET progress = progress || $1::jsonb, updated_at=$2
	WHERE id=$3 AND worker=$4 AND state IN ($5, $6);`, tableTasks)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, data, timeNow(), taskID, worker, structs.RUNNING, structs.CANCELING)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return fmt.Errorf("%w task %s is not held by %q", errors.ErrNotOwner, taskID, worker)
	}
	return nil
}

// Task returns a single task by id.
func (p *Postgres) Task(id string) (*structs.Task, error) {
	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1;`, taskCols, tableTasks), id)
	task, err := scanTask(row)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w task %s", errors.ErrNotFound, id)
	}
	return task, err
}

// Tasks returns tasks matching the given query, oldest first.
func (p *Postgres) Tasks(q *structs.Query) ([]*structs.Task, error) {
	where, args := toSqlQuery(map[string][]string{
		"id":       q.TaskIDs,
		"group_id": q.GroupIDs,
		"type":     q.Types,
		"worker":   q.Workers,
		"state":    statesToStrings(q.States),
	},
		q.UpdatedBefore, q.UpdatedAfter, q.CreatedBefore, q.CreatedAfter,
	)
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY ordering_key ASC LIMIT $%d OFFSET $%d;`,
		taskCols, tableTasks, where, len(args)-1, len(args),
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*structs.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// PurgeTasks deletes terminal tasks last updated before the given unix second.
// Non-terminal tasks are never touched, whatever their age.
func (p *Postgres) PurgeTasks(olderThan int64) (int64, error) {
	in, args := toSqlIn(2, "state", terminalStates)
	qstr := fmt.Sprintf(`DELETE FROM %s WHERE updated_at < $1 AND %s;`, tableTasks, in)
	args = append([]interface{}{olderThan}, args...)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, args...)
	if err != nil {
		return 0, err
	}
	return info.RowsAffected(), nil
}

// Heartbeat upserts the worker row with the given beat time.
func (p *Postgres) Heartbeat(name string, at int64) error {
	qstr := fmt.Sprintf(`INSERT INTO %s (name, last_heartbeat, created_at) VALUES ($1, $2, $3)
	ON CONFLICT (name) DO UPDATE SET last_heartbeat=$2;`, tableWorkers)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, qstr, name, at, at)
	return err
}

// Workers returns all known worker rows. Liveness is for the caller to judge
// against the heartbeat TTL; it is deliberately not stored.
func (p *Postgres) Workers() ([]*structs.Worker, error) {
	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, fmt.Sprintf(
		`SELECT name, last_heartbeat, created_at FROM %s ORDER BY name;`, tableWorkers))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := []*structs.Worker{}
	for rows.Next() {
		w := structs.Worker{}
		err = rows.Scan(&w.Name, &w.LastHeartbeat, &w.CreatedAt)
		if err != nil {
			return nil, err
		}
		workers = append(workers, &w)
	}
	return workers, rows.Err()
}

// DeleteWorkers removes the given worker rows.
func (p *Postgres) DeleteWorkers(names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	in, args := toSqlIn(1, "name", names)
	qstr := fmt.Sprintf(`DELETE FROM %s WHERE %s;`, tableWorkers, in)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, args...)
	if err != nil {
		return 0, err
	}
	return info.RowsAffected(), nil
}

// InsertGroup writes a new task group row.
func (p *Postgres) InsertGroup(g *structs.TaskGroup) error {
	if g.CreatedAt == 0 {
		g.CreatedAt = timeNow()
	}
	qstr := fmt.Sprintf(`INSERT INTO %s (id, description, created_at) VALUES ($1, $2, $3);`, tableGroups)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, qstr, g.ID, g.Description, g.CreatedAt)
	return err
}

// Groups returns task groups matching the given query.
func (p *Postgres) Groups(q *structs.Query) ([]*structs.TaskGroup, error) {
	where, args := toSqlQuery(map[string][]string{
		"id": q.GroupIDs,
	}, 0, 0, q.CreatedBefore, q.CreatedAfter)
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT id, description, created_at FROM %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		tableGroups, where, len(args)-1, len(args),
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []*structs.TaskGroup{}
	for rows.Next() {
		g := structs.TaskGroup{}
		err = rows.Scan(&g.ID, &g.Description, &g.CreatedAt)
		if err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// GroupSummary aggregates child task counts by state at read time.
func (p *Postgres) GroupSummary(id string) (*structs.GroupSummary, error) {
	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	sum := &structs.GroupSummary{Counts: map[structs.State]int64{}}
	row := conn.QueryRow(ctx, fmt.Sprintf(
		`SELECT id, description, created_at FROM %s WHERE id=$1;`, tableGroups), id)
	err = row.Scan(&sum.ID, &sum.Description, &sum.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w task group %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, fmt.Sprintf(
		`SELECT state, COUNT(*) FROM %s WHERE group_id=$1 GROUP BY state;`, tableTasks), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var st structs.State
		var n int64
		err = rows.Scan(&st, &n)
		if err != nil {
			return nil, err
		}
		sum.Counts[st] = n
		sum.Total += n
	}
	return sum, rows.Err()
}

// insertTaskTx assigns the task's ordering key and inserts its row within the
// caller's transaction.
func (p *Postgres) insertTaskTx(ctx context.Context, tx pgx.Tx, t *structs.Task) error {
	err := assignOrderingKey(ctx, tx, t)
	if err != nil {
		return err
	}
	vals, args, err := toTaskSqlArgs(1, t)
	if err != nil {
		return err
	}
	qstr := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s;`, tableTasks, taskCols, vals)
	_, err = tx.Exec(ctx, qstr, args...)
	return err
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTask reads one task row in taskCols order.
func scanTask(row rowScanner) (*structs.Task, error) {
	t := structs.Task{}
	var reservations, created, progress []byte
	err := row.Scan(
		&t.Type,
		&t.Args,
		&t.Name,
		&reservations,
		&t.Immediate,
		&t.Deferred,
		&t.GroupID,
		&t.ParentID,
		&t.ID,
		&t.State,
		&t.OrderingKey,
		&t.Worker,
		&t.Error,
		&created,
		&progress,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(reservations, &t.Reservations)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(created, &t.CreatedResources)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(progress, &t.Progress)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// toTaskSqlArgs converts a task into a SQL values string & args (for an insert)
func toTaskSqlArgs(offset int, t *structs.Task) (string, []interface{}, error) {
	vals := []string{}
	for i := offset; i < 17+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = timeNow()
		t.UpdatedAt = t.CreatedAt
	}
	reservations, err := json.Marshal(orEmptyReservations(t.Reservations))
	if err != nil {
		return "", nil, err
	}
	created, err := json.Marshal(orEmpty(t.CreatedResources))
	if err != nil {
		return "", nil, err
	}
	progress, err := json.Marshal(orEmptyProgress(t.Progress))
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		t.Type,
		t.Args,
		t.Name,
		reservations,
		t.Immediate,
		t.Deferred,
		t.GroupID,
		t.ParentID,
		t.ID,
		t.State,
		t.OrderingKey,
		t.Worker,
		t.Error,
		created,
		progress,
		t.CreatedAt,
		t.UpdatedAt,
	}, nil
}

// toSqlQuery converts query data into a SQL query string & args
func toSqlQuery(in map[string][]string, upB, upA, crB, crA int64) (string, []interface{}) {
	if in == nil {
		in = map[string][]string{}
	}
	and := []string{}
	args := []interface{}{}
	for _, k := range sortedKeys(in) {
		v := in[k]
		if len(v) == 0 {
			continue
		}
		s, a := toSqlIn(len(args)+1, k, v)
		and = append(and, s)
		args = append(args, a...)
	}
	if upB > 0 { // updated before
		args = append(args, upB)
		and = append(and, fmt.Sprintf("updated_at <= $%d", len(args)))
	}
	if upA > 0 { // updated after
		args = append(args, upA)
		and = append(and, fmt.Sprintf("updated_at >= $%d", len(args)))
	}
	if crB > 0 { // created before
		args = append(args, crB)
		and = append(and, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if crA > 0 { // created after
		args = append(args, crA)
		and = append(and, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if len(and) == 0 {
		return "", args
	}
	return fmt.Sprintf("WHERE %s", strings.Join(and, " AND ")), args
}

// toSqlIn converts a list of strings into a SQL IN clause
func toSqlIn(offset int, field string, args []string) (string, []interface{}) {
	if len(args) == 0 {
		return "", []interface{}{}
	}
	vals := []string{}
	ifargs := []interface{}{}
	for i, a := range args {
		vals = append(vals, fmt.Sprintf("$%d", i+offset))
		ifargs = append(ifargs, a)
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(vals, ", ")), ifargs
}

// sortedKeys keeps generated SQL deterministic (map iteration is not).
func sortedKeys(in map[string][]string) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// statesToStrings converts a list of states into a list of strings
func statesToStrings(in []structs.State) []string {
	if len(in) == 0 {
		return nil
	}
	out := []string{}
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func orEmptyReservations(in []structs.Reservation) []structs.Reservation {
	if in == nil {
		return []structs.Reservation{}
	}
	return in
}

func orEmptyProgress(in []structs.ProgressReport) []structs.ProgressReport {
	if in == nil {
		return []structs.ProgressReport{}
	}
	return in
}

// timeNow returns the current time in unix seconds
func timeNow() int64 {
	return time.Now().Unix()
}
