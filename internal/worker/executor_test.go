package worker

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cadenceworks/foreman/internal/config"
	"github.com/cadenceworks/foreman/internal/mocks/pkg/database_mock"
	"github.com/cadenceworks/foreman/pkg/database"
	"github.com/cadenceworks/foreman/pkg/errors"
	"github.com/cadenceworks/foreman/pkg/runtime"
	"github.com/cadenceworks/foreman/pkg/structs"
)

func testConfig() *config.Worker {
	cfg := &config.Worker{}
	cfg.SetDefaults()
	// keep completion-path tests free of task re-reads
	cfg.PollInterval = time.Hour
	cfg.GraceInterval = time.Hour
	return cfg
}

func claimedTask(id, taskType string) *structs.Task {
	t := &structs.Task{ID: id, State: structs.RUNNING, Worker: "worker-test"}
	t.Type = taskType
	return t
}

func TestExecutorCompletesTask(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))
	reg := runtime.NewRegistry()
	assert.Nil(t, reg.Register("archive", func(ctx context.Context, tc *runtime.TaskContext) error {
		tc.RecordCreated("res-1", "res-2")
		return nil
	}))

	var payload *database.StatePayload
	db.EXPECT().UpdateState("task-1", "worker-test", structs.RUNNING, structs.COMPLETED, gomock.Any()).DoAndReturn(
		func(taskID, worker string, from, to structs.State, p *database.StatePayload) error {
			payload = p
			return nil
		},
	)

	exec := NewExecutor(db, reg, testConfig(), "worker-test")
	exec.Run(claimedTask("task-1", "archive"))
	exec.Wait()

	assert.NotNil(t, payload)
	assert.Equal(t, "", payload.Error)
	assert.Equal(t, []string{"res-1", "res-2"}, payload.CreatedResources)
}

func TestExecutorFailsTask(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))
	reg := runtime.NewRegistry()
	assert.Nil(t, reg.Register("archive", func(ctx context.Context, tc *runtime.TaskContext) error {
		return fmt.Errorf("upstream said no")
	}))

	var payload *database.StatePayload
	db.EXPECT().UpdateState("task-1", "worker-test", structs.RUNNING, structs.FAILED, gomock.Any()).DoAndReturn(
		func(taskID, worker string, from, to structs.State, p *database.StatePayload) error {
			payload = p
			return nil
		},
	)

	exec := NewExecutor(db, reg, testConfig(), "worker-test")
	exec.Run(claimedTask("task-1", "archive"))
	exec.Wait()

	assert.NotNil(t, payload)
	assert.Equal(t, "upstream said no", payload.Error)
}

func TestExecutorContainsPanic(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))
	reg := runtime.NewRegistry()
	assert.Nil(t, reg.Register("archive", func(ctx context.Context, tc *runtime.TaskContext) error {
		panic("secret internal detail")
	}))

	var payload *database.StatePayload
	db.EXPECT().UpdateState("task-1", "worker-test", structs.RUNNING, structs.FAILED, gomock.Any()).DoAndReturn(
		func(taskID, worker string, from, to structs.State, p *database.StatePayload) error {
			payload = p
			return nil
		},
	)

	exec := NewExecutor(db, reg, testConfig(), "worker-test")
	exec.Run(claimedTask("task-1", "archive"))
	exec.Wait()

	// the panic value must never reach the stored error
	assert.NotNil(t, payload)
	assert.Equal(t, "task body panicked", payload.Error)
}

func TestExecutorFailsUnregisteredType(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))

	var payload *database.StatePayload
	db.EXPECT().UpdateState("task-1", "worker-test", structs.RUNNING, structs.FAILED, gomock.Any()).DoAndReturn(
		func(taskID, worker string, from, to structs.State, p *database.StatePayload) error {
			payload = p
			return nil
		},
	)

	exec := NewExecutor(db, runtime.NewRegistry(), testConfig(), "worker-test")
	exec.Run(claimedTask("task-1", "mystery"))
	exec.Wait()

	assert.NotNil(t, payload)
	assert.Equal(t, "no handler registered for type mystery", payload.Error)
}

func TestExecutorCancelsCooperativeTask(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))
	reg := runtime.NewRegistry()
	assert.Nil(t, reg.Register("archive", func(ctx context.Context, tc *runtime.TaskContext) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	cfg := testConfig()
	cfg.PollInterval = 10 * time.Millisecond

	canceling := claimedTask("task-1", "archive")
	canceling.State = structs.CANCELING
	db.EXPECT().Task("task-1").Return(canceling, nil).AnyTimes()
	db.EXPECT().UpdateState("task-1", "worker-test", structs.CANCELING, structs.CANCELED, gomock.Any()).Return(nil)

	exec := NewExecutor(db, reg, cfg, "worker-test")
	exec.Run(claimedTask("task-1", "archive"))
	exec.Wait()
}

func TestExecutorTerminatesAfterGrace(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	db := database_mock.NewMockDatabase(gomock.NewController(t))
	reg := runtime.NewRegistry()
	assert.Nil(t, reg.Register("archive", func(ctx context.Context, tc *runtime.TaskContext) error {
		<-release // ignores its context entirely
		return nil
	}))

	cfg := testConfig()
	cfg.PollInterval = 10 * time.Millisecond
	cfg.GraceInterval = 30 * time.Millisecond

	canceling := claimedTask("task-1", "archive")
	canceling.State = structs.CANCELING
	db.EXPECT().Task("task-1").Return(canceling, nil).AnyTimes()
	db.EXPECT().UpdateState("task-1", "worker-test", structs.CANCELING, structs.CANCELED, gomock.Any()).Return(nil)

	exec := NewExecutor(db, reg, cfg, "worker-test")
	exec.Run(claimedTask("task-1", "archive"))
	exec.Wait()
}

func TestExecutorSettlesCancelRacingCompletion(t *testing.T) {
	db := database_mock.NewMockDatabase(gomock.NewController(t))
	reg := runtime.NewRegistry()
	assert.Nil(t, reg.Register("archive", func(ctx context.Context, tc *runtime.TaskContext) error {
		return nil
	}))

	// a cancel moved the row to canceling between the body returning and
	// the completion write; the worker still owns the row and must settle
	// it as canceled, since nobody else ever will
	db.EXPECT().UpdateState("task-1", "worker-test", structs.RUNNING, structs.COMPLETED, gomock.Any()).Return(errors.ErrInvalidTransition)
	canceling := claimedTask("task-1", "archive")
	canceling.State = structs.CANCELING
	db.EXPECT().Task("task-1").Return(canceling, nil)

	var payload *database.StatePayload
	db.EXPECT().UpdateState("task-1", "worker-test", structs.CANCELING, structs.CANCELED, gomock.Any()).DoAndReturn(
		func(taskID, worker string, from, to structs.State, p *database.StatePayload) error {
			payload = p
			return nil
		},
	)

	exec := NewExecutor(db, reg, testConfig(), "worker-test")
	exec.Run(claimedTask("task-1", "archive"))
	exec.Wait()

	assert.NotNil(t, payload)
}

func TestExecutorInterruptCancelsBody(t *testing.T) {
	started := make(chan struct{}, 1)

	db := database_mock.NewMockDatabase(gomock.NewController(t))
	reg := runtime.NewRegistry()
	assert.Nil(t, reg.Register("archive", func(ctx context.Context, tc *runtime.TaskContext) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}))

	var payload *database.StatePayload
	db.EXPECT().UpdateState("task-1", "worker-test", structs.RUNNING, structs.FAILED, gomock.Any()).DoAndReturn(
		func(taskID, worker string, from, to structs.State, p *database.StatePayload) error {
			payload = p
			return nil
		},
	)

	exec := NewExecutor(db, reg, testConfig(), "worker-test")
	go exec.Run(claimedTask("task-1", "archive"))

	<-started
	exec.Interrupt()

	assert.NotNil(t, payload)
	assert.Equal(t, "context canceled", payload.Error)
}

func TestExecutorInterruptTerminatesAfterGrace(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	defer close(release)

	db := database_mock.NewMockDatabase(gomock.NewController(t))
	reg := runtime.NewRegistry()
	assert.Nil(t, reg.Register("archive", func(ctx context.Context, tc *runtime.TaskContext) error {
		started <- struct{}{}
		<-release // ignores its context entirely
		return nil
	}))

	cfg := testConfig()
	cfg.GraceInterval = 30 * time.Millisecond

	var payload *database.StatePayload
	db.EXPECT().UpdateState("task-1", "worker-test", structs.RUNNING, structs.FAILED, gomock.Any()).DoAndReturn(
		func(taskID, worker string, from, to structs.State, p *database.StatePayload) error {
			payload = p
			return nil
		},
	)

	exec := NewExecutor(db, reg, cfg, "worker-test")
	go exec.Run(claimedTask("task-1", "archive"))

	<-started
	exec.Interrupt()

	assert.NotNil(t, payload)
	assert.Equal(t, "worker interrupted", payload.Error)
}

func TestExecutorAbandonsConvergedTask(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	db := database_mock.NewMockDatabase(gomock.NewController(t))
	reg := runtime.NewRegistry()
	assert.Nil(t, reg.Register("archive", func(ctx context.Context, tc *runtime.TaskContext) error {
		<-release
		return nil
	}))

	cfg := testConfig()
	cfg.PollInterval = 10 * time.Millisecond

	// a liveness monitor already failed this task; no state write must follow
	converged := claimedTask("task-1", "archive")
	converged.State = structs.FAILED
	converged.Worker = ""
	db.EXPECT().Task("task-1").Return(converged, nil).AnyTimes()

	exec := NewExecutor(db, reg, cfg, "worker-test")
	exec.Run(claimedTask("task-1", "archive"))
	exec.Wait()
}

func TestTruncateError(t *testing.T) {
	short := fmt.Errorf("short")
	assert.Equal(t, "short", truncateError(short))

	long := fmt.Errorf("%s", strings.Repeat("x", maxErrorLength*2))
	assert.Len(t, truncateError(long), maxErrorLength)
}
