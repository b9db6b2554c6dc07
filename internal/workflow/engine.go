package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jvanrooyen/cultivation-tasks/internal/domain/entity"
	domain "github.com/jvanrooyen/cultivation-tasks/internal/domain/workflow"
	"github.com/jvanrooyen/cultivation-tasks/internal/repository"
	"github.com/jvanrooyen/cultivation-tasks/pkg/database"
	"github.com/jvanrooyen/cultivation-tasks/pkg/utils"
	"go.uber.org/zap"
)

// Engine drives tasks through the approval lifecycle. Every transition is
// a single transaction: the history append and the status update land
// together or not at all.
type Engine struct {
	db          *database.DB
	taskRepo    *repository.TaskRepository
	historyRepo *repository.HistoryRepository
	userRepo    *repository.UserRepository
	seqRepo     *repository.SequenceRepository
	machine     *domain.Machine
	logger      *zap.Logger
}

// NewEngine creates a new approval engine
func NewEngine(
	db *database.DB,
	taskRepo *repository.TaskRepository,
	historyRepo *repository.HistoryRepository,
	userRepo *repository.UserRepository,
	seqRepo *repository.SequenceRepository,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		db:          db,
		taskRepo:    taskRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		seqRepo:     seqRepo,
		machine:     domain.NewTaskMachine(),
		logger:      logger,
	}
}

// CreateTaskInput carries everything needed to create a task. NameKey and
// PeriodKey are set only by the recurring generators; user-created tasks
// leave them empty and fall outside the dedup constraint.
type CreateTaskInput struct {
	Name            string
	Description     string
	Category        domain.Category
	Status          string
	BatchID         string
	Assignee        string
	CreatedBy       string
	DueDate         *time.Time
	NameKey         string
	PeriodKey       string
	ChecklistLabels []string
}

// CreateTask creates a task in its initial state at approval stage 0.
func (e *Engine) CreateTask(ctx context.Context, input CreateTaskInput) (*entity.Task, error) {
	if err := utils.ValidateTaskName(input.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := utils.ValidateUserID(input.CreatedBy); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if _, err := domain.ApprovalWorkflowFor(input.Category); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = entity.StatusDraft
	}
	if !domain.Status(status).IsValid() || domain.Status(status).IsTerminal() {
		return nil, fmt.Errorf("%w: invalid initial status %q", domain.ErrValidation, status)
	}

	task := &entity.Task{
		ID:             uuid.NewString(),
		Name:           utils.SanitizeString(input.Name),
		Description:    utils.SanitizeString(input.Description),
		Status:         status,
		ApprovalStatus: entity.ApprovalNone,
		CurrentStage:   0,
		Category:       input.Category.String(),
		BatchID:        input.BatchID,
		Assignee:       input.Assignee,
		CreatedBy:      input.CreatedBy,
		NameKey:        input.NameKey,
		PeriodKey:      input.PeriodKey,
		DueDate:        input.DueDate,
	}

	for i, label := range input.ChecklistLabels {
		task.ChecklistItems = append(task.ChecklistItems, &entity.ChecklistItem{
			ID:       uuid.NewString(),
			Position: i,
			Label:    utils.SanitizeString(label),
		})
	}

	err := e.db.WithTransaction(func(tx *sql.Tx) error {
		number, err := e.seqRepo.NextTaskNumber(ctx, tx)
		if err != nil {
			return err
		}
		task.TaskNumber = number
		return e.taskRepo.Create(ctx, tx, task)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Task created",
		zap.String("task_number", task.TaskNumber),
		zap.String("category", task.Category),
		zap.String("status", task.Status))

	return e.taskRepo.GetByID(ctx, task.ID)
}

// Submit routes a task for approval. When targetUserID is empty or equals
// the acting user the task is self-approved: completed in one step,
// bypassing every remaining stage. That shortcut is deliberate and
// distinct from stage-by-stage approval.
func (e *Engine) Submit(ctx context.Context, taskID, actorID, targetUserID, remarks string) (*entity.Task, error) {
	task, err := e.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	selfApproval := targetUserID == "" || targetUserID == actorID

	if selfApproval {
		if err := e.machine.Fire(domain.Status(task.Status), domain.TriggerSelfApprove, domain.StatusCompleted); err != nil {
			return nil, err
		}
		task.Status = entity.StatusCompleted
		task.ApprovalStatus = entity.ApprovalApproved
	} else {
		if err := e.machine.Fire(domain.Status(task.Status), domain.TriggerSubmit, domain.StatusPendingApproval); err != nil {
			return nil, err
		}
		task.Status = entity.StatusPendingApproval
		task.ApprovalStatus = entity.ApprovalPending
		task.Assignee = targetUserID
	}

	entry := &entity.ApprovalHistoryEntry{
		TaskID:  task.ID,
		Stage:   task.CurrentStage,
		ActorID: actorID,
		Reason:  utils.SanitizeString(remarks),
	}
	if selfApproval {
		entry.Action = entity.ActionCompleted
	} else {
		entry.Action = entity.ActionSubmitted
	}

	if err := e.applyTransition(ctx, task, entry); err != nil {
		return nil, err
	}

	e.logger.Info("Task submitted",
		zap.String("task_number", task.TaskNumber),
		zap.Bool("self_approval", selfApproval),
		zap.String("actor", actorID))

	return task, nil
}

// Approve advances a task one approval stage, completing it when the final
// stage signs off. The actor must hold a role allowed at the current stage.
func (e *Engine) Approve(ctx context.Context, taskID, actorID string) (*entity.Task, error) {
	task, err := e.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	roles, err := e.userRepo.GetRoles(ctx, actorID)
	if err != nil {
		return nil, err
	}

	category := domain.Category(task.Category)
	if !domain.CanUserApprove(category, task.CurrentStage, roles) {
		return nil, fmt.Errorf("%w: user %s at stage %d of %s",
			domain.ErrUnauthorized, actorID, task.CurrentStage, task.Category)
	}

	wf, err := domain.ApprovalWorkflowFor(category)
	if err != nil {
		return nil, err
	}

	newStage := task.CurrentStage + 1
	target := domain.StatusPendingApproval
	if newStage >= wf.TotalStages() {
		target = domain.StatusCompleted
	}

	if err := e.machine.Fire(domain.Status(task.Status), domain.TriggerApprove, target); err != nil {
		return nil, err
	}

	// The log records stages 1-indexed: entry N is the Nth sign-off.
	entry := &entity.ApprovalHistoryEntry{
		TaskID:  task.ID,
		Stage:   newStage,
		Action:  entity.ActionApproved,
		ActorID: actorID,
	}

	if target == domain.StatusCompleted {
		task.Status = entity.StatusCompleted
		task.ApprovalStatus = entity.ApprovalApproved
	} else {
		task.Status = entity.StatusPendingApproval
		task.ApprovalStatus = entity.ApprovalPending
		task.CurrentStage = newStage
	}

	if err := e.applyTransition(ctx, task, entry); err != nil {
		return nil, err
	}

	e.logger.Info("Task approved",
		zap.String("task_number", task.TaskNumber),
		zap.Int("stage", newStage),
		zap.String("status", task.Status),
		zap.String("actor", actorID))

	return task, nil
}

// Reject marks a task rejected at its current stage. The stage index is
// not reset: a resubmitted task re-enters at the same stage.
func (e *Engine) Reject(ctx context.Context, taskID, actorID, reason string) (*entity.Task, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}

	task, err := e.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := e.machine.Fire(domain.Status(task.Status), domain.TriggerReject, domain.StatusRejected); err != nil {
		return nil, err
	}

	task.Status = entity.StatusRejected
	task.ApprovalStatus = entity.ApprovalRejected
	task.RejectionReason = utils.SanitizeString(reason)

	entry := &entity.ApprovalHistoryEntry{
		TaskID:  task.ID,
		Stage:   task.CurrentStage,
		Action:  entity.ActionRejected,
		ActorID: actorID,
		Reason:  task.RejectionReason,
	}

	if err := e.applyTransition(ctx, task, entry); err != nil {
		return nil, err
	}

	e.logger.Info("Task rejected",
		zap.String("task_number", task.TaskNumber),
		zap.Int("stage", task.CurrentStage),
		zap.String("actor", actorID))

	return task, nil
}

// Cancel terminates a task administratively from any non-terminal status.
func (e *Engine) Cancel(ctx context.Context, taskID, actorID string) (*entity.Task, error) {
	task, err := e.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := e.machine.Fire(domain.Status(task.Status), domain.TriggerCancel, domain.StatusCancelled); err != nil {
		return nil, err
	}

	task.Status = entity.StatusCancelled

	entry := &entity.ApprovalHistoryEntry{
		TaskID:  task.ID,
		Stage:   task.CurrentStage,
		Action:  entity.ActionCancelled,
		ActorID: actorID,
	}

	if err := e.applyTransition(ctx, task, entry); err != nil {
		return nil, err
	}

	e.logger.Info("Task cancelled",
		zap.String("task_number", task.TaskNumber),
		zap.String("actor", actorID))

	return task, nil
}

// ChecklistPatch carries optional checklist item updates; nil fields are
// left untouched.
type ChecklistPatch struct {
	Completed     *bool
	ResponseValue *string
	Notes         *string
}

// SetChecklistItem updates one checklist item. When the edit brings the
// checklist to fully completed the task auto-completes — but only while
// the task is still in a working status (draft, pending, in_progress).
// Once a task enters the approval flow or a terminal status, approval
// transitions own the status field and checklist edits never touch it.
func (e *Engine) SetChecklistItem(ctx context.Context, taskID, itemID, actorID string, patch ChecklistPatch) (*entity.Task, error) {
	task, err := e.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsTerminal() {
		return nil, fmt.Errorf("%w: task is %s", domain.ErrInvalidTransition, task.Status)
	}

	item, err := e.taskRepo.GetChecklistItem(ctx, taskID, itemID)
	if err != nil {
		return nil, err
	}

	if patch.Completed != nil {
		item.Completed = *patch.Completed
	}
	if patch.ResponseValue != nil {
		item.ResponseValue = utils.SanitizeString(*patch.ResponseValue)
	}
	if patch.Notes != nil {
		item.Notes = utils.SanitizeString(*patch.Notes)
	}

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		if err := e.taskRepo.UpdateChecklistItem(ctx, tx, item); err != nil {
			return err
		}

		for _, existing := range task.ChecklistItems {
			if existing.ID == item.ID {
				*existing = *item
				break
			}
		}

		progress := task.ChecklistProgress()
		autoComplete := progress.Total > 0 &&
			progress.Completed == progress.Total &&
			e.machine.CanFire(domain.Status(task.Status), domain.TriggerChecklistComplete)

		if !autoComplete {
			return nil
		}

		task.Status = entity.StatusCompleted
		if err := e.taskRepo.UpdateTransition(ctx, tx, task); err != nil {
			return err
		}
		return e.historyRepo.Append(ctx, tx, &entity.ApprovalHistoryEntry{
			TaskID:  task.ID,
			Stage:   task.CurrentStage,
			Action:  entity.ActionCompleted,
			ActorID: actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	if task.Status == entity.StatusCompleted {
		e.logger.Info("Task auto-completed by checklist",
			zap.String("task_number", task.TaskNumber),
			zap.String("actor", actorID))
	}

	return task, nil
}

// GetTask returns a task with its checklist items and approval history.
func (e *Engine) GetTask(ctx context.Context, taskID string) (*entity.Task, []*entity.ApprovalHistoryEntry, error) {
	task, err := e.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	history, err := e.historyRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return task, history, nil
}

// applyTransition writes the task's transition fields and the history
// entry in one transaction.
func (e *Engine) applyTransition(ctx context.Context, task *entity.Task, entry *entity.ApprovalHistoryEntry) error {
	return e.db.WithTransaction(func(tx *sql.Tx) error {
		if err := e.taskRepo.UpdateTransition(ctx, tx, task); err != nil {
			return err
		}
		return e.historyRepo.Append(ctx, tx, entry)
	})
}
