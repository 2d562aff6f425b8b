package structs

// Worker is a single task-executing process. Workers own at most one
// running task at a time and prove liveness by updating LastHeartbeat.
//
// Note there is no stored online/lost flag; liveness is always recomputed
// from LastHeartbeat against the configured TTL so it can never go stale.
type Worker struct {
	// Name uniquely identifies the worker and embeds its host.
	Name string `json:"name"`

	// LastHeartbeat is the last time the worker checked in, unix seconds.
	LastHeartbeat int64 `json:"last_heartbeat"`

	// CreatedAt is the time this worker first registered, unix seconds.
	CreatedAt int64 `json:"created_at"`
}

// Online reports whether the worker's heartbeat is within ttlSeconds of now.
func (w *Worker) Online(now, ttlSeconds int64) bool {
	return now-w.LastHeartbeat <= ttlSeconds
}
