package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cadenceworks/foreman/pkg/errors"
)

func TestLoadWorkerDefaults(t *testing.T) {
	cfg, err := LoadWorker("")

	assert.Nil(t, err)
	assert.Equal(t, 15*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 60*time.Second, cfg.HeartbeatTTL)
	assert.Equal(t, 30*time.Second, cfg.GraceInterval)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.MonitorInterval)
	assert.Equal(t, 100, cfg.ClaimScanLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.TaskRetention)
	assert.Equal(t, 24*time.Hour, cfg.WorkerRetention)
}

func TestLoadWorkerPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.yaml")
	err := os.WriteFile(path, []byte("heartbeat_interval: 5s\nclaim_scan_limit: 10\n"), 0600)
	assert.Nil(t, err)

	cfg, err := LoadWorker(path)

	assert.Nil(t, err)
	assert.Equal(t, 5*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 10, cfg.ClaimScanLimit)
	// untouched fields still default
	assert.Equal(t, 60*time.Second, cfg.HeartbeatTTL)
	assert.Equal(t, 30*time.Second, cfg.GraceInterval)
}

func TestLoadWorkerRejectsTTLBelowInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.yaml")
	err := os.WriteFile(path, []byte("heartbeat_interval: 30s\nheartbeat_ttl: 10s\n"), 0600)
	assert.Nil(t, err)

	cfg, err := LoadWorker(path)

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, errors.ErrInvalidArg)
}

func TestLoadWorkerMissingFile(t *testing.T) {
	cfg, err := LoadWorker(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Nil(t, cfg)
	assert.NotNil(t, err)
}
