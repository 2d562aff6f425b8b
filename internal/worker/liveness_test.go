package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cadenceworks/foreman/internal/config"
	"github.com/cadenceworks/foreman/internal/mocks/pkg/database_mock"
	"github.com/cadenceworks/foreman/pkg/database"
	"github.com/cadenceworks/foreman/pkg/runtime"
	"github.com/cadenceworks/foreman/pkg/structs"
)

func monitorConfig() *config.Worker {
	cfg := &config.Worker{
		HeartbeatTTL:    60 * time.Second,
		WorkerRetention: 24 * time.Hour,
		TaskRetention:   7 * 24 * time.Hour,
	}
	cfg.SetDefaults()
	return cfg
}

func TestMonitorPassReapsLostWorker(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))
	d := NewDaemon(db, runtime.NewRegistry(), monitorConfig())

	now := int64(1_700_000_000)
	db.EXPECT().Workers().Return([]*structs.Worker{
		{Name: d.Name(), LastHeartbeat: now},
		{Name: "dead-worker", LastHeartbeat: now - 120},
	}, nil)

	var seen *structs.Query
	db.EXPECT().Tasks(gomock.Any()).DoAndReturn(func(q *structs.Query) ([]*structs.Task, error) {
		seen = q
		running := &structs.Task{ID: "t-run", State: structs.RUNNING, Worker: "dead-worker"}
		canceling := &structs.Task{ID: "t-cxl", State: structs.CANCELING, Worker: "dead-worker"}
		return []*structs.Task{running, canceling}, nil
	})

	var failPayload *database.StatePayload
	db.EXPECT().UpdateState("t-run", "dead-worker", structs.RUNNING, structs.FAILED, gomock.Any()).DoAndReturn(
		func(taskID, worker string, from, to structs.State, p *database.StatePayload) error {
			failPayload = p
			return nil
		},
	)
	db.EXPECT().UpdateState("t-cxl", "dead-worker", structs.CANCELING, structs.CANCELED, gomock.Any()).Return(nil)
	db.EXPECT().PurgeTasks(now - int64((7 * 24 * time.Hour).Seconds())).Return(int64(0), nil)

	d.monitorPass(now)

	assert.Equal(t, []string{"dead-worker"}, seen.Workers)
	assert.Equal(t, []structs.State{structs.RUNNING, structs.CANCELING}, seen.States)
	assert.Equal(t, "worker lost", failPayload.Error)
}

func TestMonitorPassDeletesStaleWorkerRows(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))
	d := NewDaemon(db, runtime.NewRegistry(), monitorConfig())

	now := int64(1_700_000_000)
	gone := now - int64((48 * time.Hour).Seconds())
	db.EXPECT().Workers().Return([]*structs.Worker{
		{Name: "long-gone", LastHeartbeat: gone},
	}, nil)
	db.EXPECT().Tasks(gomock.Any()).Return([]*structs.Task{}, nil)
	db.EXPECT().DeleteWorkers([]string{"long-gone"}).Return(int64(1), nil)
	db.EXPECT().PurgeTasks(gomock.Any()).Return(int64(3), nil)

	d.monitorPass(now)
}

func TestMonitorPassSkipsSelfAndOnlineWorkers(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))
	d := NewDaemon(db, runtime.NewRegistry(), monitorConfig())

	now := int64(1_700_000_000)
	db.EXPECT().Workers().Return([]*structs.Worker{
		{Name: d.Name(), LastHeartbeat: now - 3600}, // never reap ourselves
		{Name: "healthy", LastHeartbeat: now - 10},
	}, nil)
	db.EXPECT().PurgeTasks(gomock.Any()).Return(int64(0), nil)

	d.monitorPass(now)
}
