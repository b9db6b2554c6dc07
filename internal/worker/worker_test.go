package worker

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jvanrooyen/cultivation-tasks/internal/generator"
	"github.com/jvanrooyen/cultivation-tasks/internal/repository"
	"github.com/jvanrooyen/cultivation-tasks/internal/workflow"
	"github.com/jvanrooyen/cultivation-tasks/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWorker struct {
	mu       sync.Mutex
	name     string
	started  bool
	stopped  bool
	stopSeen *[]string
}

func (f *fakeWorker) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}

func (f *fakeWorker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	if f.stopSeen != nil {
		*f.stopSeen = append(*f.stopSeen, f.name)
	}
}

func (f *fakeWorker) Name() string { return f.name }

func TestManager_StartAndStopAll(t *testing.T) {
	logger := zap.NewNop()
	manager := NewManager(logger)

	var stopOrder []string
	first := &fakeWorker{name: "first", stopSeen: &stopOrder}
	second := &fakeWorker{name: "second", stopSeen: &stopOrder}

	manager.Register(first)
	manager.Register(second)

	require.NoError(t, manager.StartAll(context.Background()))
	assert.True(t, first.started)
	assert.True(t, second.started)

	// Shutdown runs in reverse registration order
	manager.StopAll()
	assert.Equal(t, []string{"second", "first"}, stopOrder)
}

func newTestRunner(t *testing.T) *generator.Runner {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.NewInMemory(strings.ReplaceAll(t.Name(), "/", "_"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run())

	taskRepo := repository.NewTaskRepository(db, logger)
	historyRepo := repository.NewHistoryRepository(db, logger)
	batchRepo := repository.NewBatchRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	seqRepo := repository.NewSequenceRepository(db, logger)

	engine := workflow.NewEngine(db, taskRepo, historyRepo, userRepo, seqRepo, logger)
	return generator.NewRunner(engine, batchRepo, taskRepo, logger)
}

func TestJobRunner_StartStop(t *testing.T) {
	runner := newTestRunner(t)
	w := NewJobRunner(runner, generator.DailyMortalityJob(), time.Hour, false, zap.NewNop())

	assert.Equal(t, "JobRunner:daily-mortality", w.Name())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	assert.Error(t, w.Start(ctx), "double start must be rejected")

	w.Stop()
	w.Stop() // idempotent

	require.NoError(t, w.Start(ctx), "restart after stop is allowed")
	w.Stop()
}
