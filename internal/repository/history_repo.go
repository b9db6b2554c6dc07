package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jvanrooyen/cultivation-tasks/internal/domain/entity"
	"github.com/jvanrooyen/cultivation-tasks/pkg/database"
	"go.uber.org/zap"
)

// HistoryRepository handles the append-only approval history log.
// Entries are single-row inserts, so appends are atomic at the store and
// concurrent transitions cannot lose each other's entries.
type HistoryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts a new history entry. Entries are never edited afterwards.
func (r *HistoryRepository) Append(ctx context.Context, tx *sql.Tx, entry *entity.ApprovalHistoryEntry) error {
	query := `
		INSERT INTO approval_history (task_id, stage, action, actor_id, reason)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := pick(r.db.DB, tx).ExecContext(ctx, query,
		entry.TaskID,
		entry.Stage,
		entry.Action,
		entry.ActorID,
		nullable(entry.Reason),
	)
	if err != nil {
		r.logger.Error("Failed to append approval history entry",
			zap.String("task_id", entry.TaskID),
			zap.String("action", entry.Action),
			zap.Error(err))
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id

	return nil
}

// ListByTask retrieves all history entries for a task in append order
func (r *HistoryRepository) ListByTask(ctx context.Context, taskID string) ([]*entity.ApprovalHistoryEntry, error) {
	query := `
		SELECT id, task_id, stage, action, actor_id, reason, created_at
		FROM approval_history
		WHERE task_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to list approval history",
			zap.String("task_id", taskID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ApprovalHistoryEntry
	for rows.Next() {
		var entry entity.ApprovalHistoryEntry
		var reason sql.NullString
		err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&entry.Stage,
			&entry.Action,
			&entry.ActorID,
			&reason,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Reason = reason.String
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
