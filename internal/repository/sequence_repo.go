package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jvanrooyen/cultivation-tasks/pkg/database"
	"go.uber.org/zap"
)

// SequenceRepository issues task numbers from a store-native AUTOINCREMENT
// sequence. Two concurrent creates get distinct numbers, unlike a
// count-and-format scheme.
type SequenceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *database.DB, logger *zap.Logger) *SequenceRepository {
	return &SequenceRepository{
		db:     db,
		logger: logger,
	}
}

// NextTaskNumber allocates the next task number, formatted T-%04d.
func (r *SequenceRepository) NextTaskNumber(ctx context.Context, tx *sql.Tx) (string, error) {
	result, err := pick(r.db.DB, tx).ExecContext(ctx, "INSERT INTO task_number_seq DEFAULT VALUES")
	if err != nil {
		r.logger.Error("Failed to allocate task number", zap.Error(err))
		return "", fmt.Errorf("failed to allocate task number: %w", err)
	}

	n, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to get allocated sequence value: %w", err)
	}

	return fmt.Sprintf("T-%04d", n), nil
}
