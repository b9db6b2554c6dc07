package generator

import (
	"context"
	"errors"
	"time"

	"github.com/jvanrooyen/cultivation-tasks/internal/repository"
	"github.com/jvanrooyen/cultivation-tasks/internal/workflow"
	"go.uber.org/zap"
)

// Runner executes recurring jobs against the batch and task stores.
// Runs are at-least-once and overlap-safe: the pre-insert existence check
// reports normal reruns as skips, and the store's unique dedup constraint
// turns a concurrent duplicate insert into a skip as well.
type Runner struct {
	engine    *workflow.Engine
	batchRepo *repository.BatchRepository
	taskRepo  *repository.TaskRepository
	logger    *zap.Logger

	// now is injectable for window tests
	now func() time.Time
}

// NewRunner creates a new generator runner
func NewRunner(
	engine *workflow.Engine,
	batchRepo *repository.BatchRepository,
	taskRepo *repository.TaskRepository,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		engine:    engine,
		batchRepo: batchRepo,
		taskRepo:  taskRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one job invocation. A failure on one batch is logged and
// the run continues; the skipped batch is retried on the next invocation
// since no task was created for it.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	started := r.now()
	periodKey := job.Window.PeriodKey(started)
	due := DueAt(started)

	batches, err := r.batchRepo.ListEligible(ctx, job.Filter)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for _, batch := range batches {
		result.BatchesProcessed++

		for _, tpl := range job.Templates {
			name := tpl.TaskName(batch.BatchNumber)

			exists, err := r.taskRepo.ExistsForWindow(ctx, batch.ID, name, periodKey)
			if err != nil {
				r.logger.Error("Failed duplicate check, skipping batch",
					zap.String("job", job.Name),
					zap.String("batch_number", batch.BatchNumber),
					zap.Error(err))
				continue
			}
			if exists {
				result.TasksSkipped++
				continue
			}

			_, err = r.engine.CreateTask(ctx, workflow.CreateTaskInput{
				Name:            name,
				Description:     tpl.Description,
				Category:        tpl.Category,
				Status:          tpl.Status,
				BatchID:         batch.ID,
				Assignee:        batch.CreatedBy,
				CreatedBy:       batch.CreatedBy,
				DueDate:         &due,
				NameKey:         name,
				PeriodKey:       periodKey,
				ChecklistLabels: tpl.ChecklistLabels,
			})
			if err != nil {
				if errors.Is(err, repository.ErrDuplicateTask) {
					// Lost a race with an overlapping run; the task exists.
					result.TasksSkipped++
					continue
				}
				r.logger.Error("Failed to create task, continuing run",
					zap.String("job", job.Name),
					zap.String("batch_number", batch.BatchNumber),
					zap.String("task_name", name),
					zap.Error(err))
				continue
			}

			result.TasksCreated++
		}
	}

	r.logger.Info("Generator run completed",
		zap.String("job", job.Name),
		zap.String("period", periodKey),
		zap.Int("batches_processed", result.BatchesProcessed),
		zap.Int("tasks_created", result.TasksCreated),
		zap.Int("tasks_skipped", result.TasksSkipped),
		zap.Duration("elapsed", r.now().Sub(started)))

	return result, nil
}
