package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jvanrooyen/cultivation-tasks/internal/domain/entity"
	"github.com/jvanrooyen/cultivation-tasks/pkg/database"
	"go.uber.org/zap"
)

// TaskRepository handles task and checklist item persistence
type TaskRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

const taskColumns = `id, task_number, name, description, status, approval_status,
	current_approval_stage, rejection_reason, task_category, batch_id,
	assignee, created_by, name_key, period_key, due_date, created_at, updated_at`

// Create inserts a new task and its checklist items. A collision with the
// generator dedup index is reported as ErrDuplicateTask.
func (r *TaskRepository) Create(ctx context.Context, tx *sql.Tx, task *entity.Task) error {
	query := fmt.Sprintf(`INSERT INTO tasks (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, taskColumns)

	var due sql.NullTime
	if task.DueDate != nil {
		due = sql.NullTime{Time: *task.DueDate, Valid: true}
	}

	_, err := pick(r.db.DB, tx).ExecContext(ctx, query,
		task.ID,
		task.TaskNumber,
		task.Name,
		nullable(task.Description),
		task.Status,
		task.ApprovalStatus,
		task.CurrentStage,
		nullable(task.RejectionReason),
		task.Category,
		nullable(task.BatchID),
		nullable(task.Assignee),
		task.CreatedBy,
		nullable(task.NameKey),
		nullable(task.PeriodKey),
		due,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: batch %s name %s period %s", ErrDuplicateTask, task.BatchID, task.NameKey, task.PeriodKey)
		}
		r.logger.Error("Failed to create task",
			zap.String("task_number", task.TaskNumber),
			zap.String("category", task.Category),
			zap.Error(err))
		return fmt.Errorf("failed to create task: %w", err)
	}

	for _, item := range task.ChecklistItems {
		item.TaskID = task.ID
		if err := r.createChecklistItem(ctx, tx, item); err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a task with its checklist items
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = ?`, taskColumns)

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get task", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	items, err := r.ListChecklistItems(ctx, id)
	if err != nil {
		return nil, err
	}
	task.ChecklistItems = items

	return task, nil
}

// GetByNumber retrieves a task by its human-readable number
func (r *TaskRepository) GetByNumber(ctx context.Context, taskNumber string) (*entity.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE task_number = ?`, taskColumns)

	task, err := scanTask(r.db.QueryRowContext(ctx, query, taskNumber))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskNumber)
	}
	if err != nil {
		r.logger.Error("Failed to get task by number", zap.String("task_number", taskNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	items, err := r.ListChecklistItems(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	task.ChecklistItems = items

	return task, nil
}

// UpdateTransition writes the transition-owned fields of a task in a
// single statement. Called inside the engine's transaction so the history
// append and the status change land together.
func (r *TaskRepository) UpdateTransition(ctx context.Context, tx *sql.Tx, task *entity.Task) error {
	query := `
		UPDATE tasks
		SET status = ?, approval_status = ?, current_approval_stage = ?,
			rejection_reason = ?, assignee = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := pick(r.db.DB, tx).ExecContext(ctx, query,
		task.Status,
		task.ApprovalStatus,
		task.CurrentStage,
		nullable(task.RejectionReason),
		nullable(task.Assignee),
		task.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task transition fields",
			zap.String("id", task.ID),
			zap.String("status", task.Status),
			zap.Error(err))
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Count returns the total number of tasks in the store
func (r *TaskRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// ExistsForWindow reports whether a generator task with the given dedup
// key already exists. The unique index remains the authoritative guard;
// this pre-check lets a rerun report skips without provoking conflicts.
func (r *TaskRepository) ExistsForWindow(ctx context.Context, batchID, nameKey, periodKey string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE batch_id = ? AND name_key = ? AND period_key = ?",
		batchID, nameKey, periodKey,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing task: %w", err)
	}
	return count > 0, nil
}

// List retrieves tasks ordered by creation time, newest first
func (r *TaskRepository) List(ctx context.Context, limit, offset int) ([]*entity.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks ORDER BY created_at DESC, task_number DESC LIMIT ? OFFSET ?`, taskColumns)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*entity.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// ListChecklistItems retrieves a task's checklist items in order
func (r *TaskRepository) ListChecklistItems(ctx context.Context, taskID string) ([]*entity.ChecklistItem, error) {
	query := `
		SELECT id, task_id, position, label, completed, response_value, notes, created_at, updated_at
		FROM checklist_items
		WHERE task_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to list checklist items", zap.String("task_id", taskID), zap.Error(err))
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	var items []*entity.ChecklistItem
	for rows.Next() {
		var item entity.ChecklistItem
		var response, notes sql.NullString
		err := rows.Scan(
			&item.ID,
			&item.TaskID,
			&item.Position,
			&item.Label,
			&item.Completed,
			&response,
			&notes,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		item.ResponseValue = response.String
		item.Notes = notes.String
		items = append(items, &item)
	}
	return items, rows.Err()
}

// GetChecklistItem retrieves a single checklist item of a task
func (r *TaskRepository) GetChecklistItem(ctx context.Context, taskID, itemID string) (*entity.ChecklistItem, error) {
	query := `
		SELECT id, task_id, position, label, completed, response_value, notes, created_at, updated_at
		FROM checklist_items
		WHERE task_id = ? AND id = ?
	`

	var item entity.ChecklistItem
	var response, notes sql.NullString
	err := r.db.QueryRowContext(ctx, query, taskID, itemID).Scan(
		&item.ID,
		&item.TaskID,
		&item.Position,
		&item.Label,
		&item.Completed,
		&response,
		&notes,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	item.ResponseValue = response.String
	item.Notes = notes.String

	return &item, nil
}

// UpdateChecklistItem writes a checklist item's mutable fields
func (r *TaskRepository) UpdateChecklistItem(ctx context.Context, tx *sql.Tx, item *entity.ChecklistItem) error {
	query := `
		UPDATE checklist_items
		SET completed = ?, response_value = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := pick(r.db.DB, tx).ExecContext(ctx, query,
		item.Completed,
		nullable(item.ResponseValue),
		nullable(item.Notes),
		item.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update checklist item",
			zap.String("id", item.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update checklist item: %w", err)
	}
	return nil
}

func (r *TaskRepository) createChecklistItem(ctx context.Context, tx *sql.Tx, item *entity.ChecklistItem) error {
	query := `
		INSERT INTO checklist_items (id, task_id, position, label, completed, response_value, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pick(r.db.DB, tx).ExecContext(ctx, query,
		item.ID,
		item.TaskID,
		item.Position,
		item.Label,
		item.Completed,
		nullable(item.ResponseValue),
		nullable(item.Notes),
	)
	if err != nil {
		r.logger.Error("Failed to create checklist item",
			zap.String("task_id", item.TaskID),
			zap.Error(err))
		return fmt.Errorf("failed to create checklist item: %w", err)
	}
	return nil
}

// rowScanner lets scanTask work over both sql.Row and sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*entity.Task, error) {
	var task entity.Task
	var description, rejectionReason, batchID, assignee, nameKey, periodKey sql.NullString
	var due sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.TaskNumber,
		&task.Name,
		&description,
		&task.Status,
		&task.ApprovalStatus,
		&task.CurrentStage,
		&rejectionReason,
		&task.Category,
		&batchID,
		&assignee,
		&task.CreatedBy,
		&nameKey,
		&periodKey,
		&due,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.RejectionReason = rejectionReason.String
	task.BatchID = batchID.String
	task.Assignee = assignee.String
	task.NameKey = nameKey.String
	task.PeriodKey = periodKey.String
	if due.Valid {
		d := due.Time.UTC()
		task.DueDate = &d
	}

	return &task, nil
}
