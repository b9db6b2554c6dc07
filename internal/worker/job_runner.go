package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jvanrooyen/cultivation-tasks/internal/generator"
	"go.uber.org/zap"
)

// JobRunner drives one recurring generator job on a fixed tick. Runs are
// stateless invocations; overlapping runs (a slow tick plus an HTTP
// trigger, say) are safe because duplicates are rejected at the store.
type JobRunner struct {
	runner   *generator.Runner
	job      generator.Job
	interval time.Duration
	runOnce  bool // run immediately on start, before the first tick
	logger   *zap.Logger

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewJobRunner creates a worker for one generator job
func NewJobRunner(runner *generator.Runner, job generator.Job, interval time.Duration, runOnStart bool, logger *zap.Logger) *JobRunner {
	return &JobRunner{
		runner:   runner,
		job:      job,
		interval: interval,
		runOnce:  runOnStart,
		logger:   logger,
	}
}

// Start begins the tick loop
func (w *JobRunner) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("job runner %s is already running", w.job.Name)
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true

	w.logger.Info("JobRunner started",
		zap.String("job", w.job.Name),
		zap.Duration("interval", w.interval))

	go w.loop()
	return nil
}

// Stop cancels the tick loop
func (w *JobRunner) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}
	w.isRunning = false
	if w.cancel != nil {
		w.cancel()
	}
}

// Name returns the worker name for identification
func (w *JobRunner) Name() string {
	return "JobRunner:" + w.job.Name
}

func (w *JobRunner) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if w.runOnce {
		w.runJob()
	}

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.runJob()
		}
	}
}

func (w *JobRunner) runJob() {
	ctx, cancel := context.WithTimeout(w.ctx, 5*time.Minute)
	defer cancel()

	if _, err := w.runner.Run(ctx, w.job); err != nil {
		w.logger.Error("Scheduled generator run failed",
			zap.String("job", w.job.Name),
			zap.Error(err))
	}
}
