package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cadenceworks/foreman/pkg/errors"
)

const (
	defHeartbeatInterval = 15 * time.Second
	defHeartbeatTTL      = 60 * time.Second
	defGraceInterval     = 30 * time.Second
	defPollInterval      = 5 * time.Second
	defMonitorInterval   = 30 * time.Second
	defClaimScanLimit    = 100
	defTaskRetention     = 7 * 24 * time.Hour
	defWorkerRetention   = 24 * time.Hour
)

// Worker holds everything a worker daemon needs to run. Zero values are
// replaced with defaults by SetDefaults, so a partial yaml file is fine.
type Worker struct {
	// DatabaseURL is the postgres connection string. The usual
	// $ENV_VAR substitution applies.
	DatabaseURL string `yaml:"database_url"`

	// HeartbeatInterval is how often the worker renews its liveness row.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// HeartbeatTTL is how stale a heartbeat may be before other workers
	// treat its owner as lost. Must exceed HeartbeatInterval.
	HeartbeatTTL time.Duration `yaml:"heartbeat_ttl"`

	// GraceInterval is how long a canceling task's handler gets to stop
	// on its own before it is terminated.
	GraceInterval time.Duration `yaml:"grace_interval"`

	// PollInterval bounds how long the claim loop sleeps when no change
	// notifications arrive.
	PollInterval time.Duration `yaml:"poll_interval"`

	// MonitorInterval is how often the liveness and retention pass runs.
	MonitorInterval time.Duration `yaml:"monitor_interval"`

	// ClaimScanLimit caps how many waiting tasks a single claim scans
	// looking for one whose reservations can be granted.
	ClaimScanLimit int `yaml:"claim_scan_limit"`

	// TaskRetention is how long finished tasks are kept before purging.
	TaskRetention time.Duration `yaml:"task_retention"`

	// WorkerRetention is how long offline worker rows are kept.
	WorkerRetention time.Duration `yaml:"worker_retention"`

	// WorkDirRoot is where per-task scratch directories are created.
	// Empty means the system temp dir.
	WorkDirRoot string `yaml:"work_dir_root"`
}

func (c *Worker) SetDefaults() {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = defHeartbeatInterval
	}
	if c.HeartbeatTTL <= 0 {
		c.HeartbeatTTL = defHeartbeatTTL
	}
	if c.GraceInterval <= 0 {
		c.GraceInterval = defGraceInterval
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defPollInterval
	}
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = defMonitorInterval
	}
	if c.ClaimScanLimit <= 0 {
		c.ClaimScanLimit = defClaimScanLimit
	}
	if c.TaskRetention <= 0 {
		c.TaskRetention = defTaskRetention
	}
	if c.WorkerRetention <= 0 {
		c.WorkerRetention = defWorkerRetention
	}
}

func (c *Worker) Validate() error {
	if c.HeartbeatTTL <= c.HeartbeatInterval {
		return fmt.Errorf("%w heartbeat_ttl %s must exceed heartbeat_interval %s", errors.ErrInvalidArg, c.HeartbeatTTL, c.HeartbeatInterval)
	}
	return nil
}

// UnmarshalYAML decodes durations from strings like "30s"; yaml has no
// native duration scalar.
func (c *Worker) UnmarshalYAML(value *yaml.Node) error {
	aux := struct {
		DatabaseURL       string `yaml:"database_url"`
		HeartbeatInterval string `yaml:"heartbeat_interval"`
		HeartbeatTTL      string `yaml:"heartbeat_ttl"`
		GraceInterval     string `yaml:"grace_interval"`
		PollInterval      string `yaml:"poll_interval"`
		MonitorInterval   string `yaml:"monitor_interval"`
		ClaimScanLimit    int    `yaml:"claim_scan_limit"`
		TaskRetention     string `yaml:"task_retention"`
		WorkerRetention   string `yaml:"worker_retention"`
		WorkDirRoot       string `yaml:"work_dir_root"`
	}{}
	err := value.Decode(&aux)
	if err != nil {
		return err
	}

	c.DatabaseURL = aux.DatabaseURL
	c.ClaimScanLimit = aux.ClaimScanLimit
	c.WorkDirRoot = aux.WorkDirRoot

	for _, f := range []struct {
		raw  string
		into *time.Duration
	}{
		{aux.HeartbeatInterval, &c.HeartbeatInterval},
		{aux.HeartbeatTTL, &c.HeartbeatTTL},
		{aux.GraceInterval, &c.GraceInterval},
		{aux.PollInterval, &c.PollInterval},
		{aux.MonitorInterval, &c.MonitorInterval},
		{aux.TaskRetention, &c.TaskRetention},
		{aux.WorkerRetention, &c.WorkerRetention},
	} {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("%w bad duration %q", errors.ErrInvalidArg, f.raw)
		}
		*f.into = d
	}
	return nil
}

// LoadWorker reads a yaml worker config. An empty path yields defaults.
func LoadWorker(path string) (*Worker, error) {
	cfg := &Worker{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
