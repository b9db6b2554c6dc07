package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jvanrooyen/cultivation-tasks/internal/domain/entity"
	"github.com/jvanrooyen/cultivation-tasks/pkg/database"
	"go.uber.org/zap"
)

// BatchFilter selects eligible batches for a generator run. Zero-value
// fields are not applied.
type BatchFilter struct {
	Status       string
	CurrentStage string
	ExcludeStage string
}

// BatchRepository reads batch lifecycle records. The batches table is
// owned by the surrounding system; this core never writes it.
type BatchRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB, logger *zap.Logger) *BatchRepository {
	return &BatchRepository{
		db:     db,
		logger: logger,
	}
}

// ListEligible returns batches matching the filter. Batches without a
// creator are excluded: generated tasks are assigned to the batch creator,
// so a missing creator means nothing to assign.
func (r *BatchRepository) ListEligible(ctx context.Context, filter BatchFilter) ([]*entity.BatchLifecycleRecord, error) {
	query := `
		SELECT id, batch_number, created_by, current_stage, status, created_at
		FROM batches
		WHERE created_by IS NOT NULL AND created_by != ''
	`
	var args []interface{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.CurrentStage != "" {
		query += " AND current_stage = ?"
		args = append(args, filter.CurrentStage)
	}
	if filter.ExcludeStage != "" {
		query += " AND current_stage != ?"
		args = append(args, filter.ExcludeStage)
	}
	query += " ORDER BY batch_number"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list eligible batches", zap.Error(err))
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []*entity.BatchLifecycleRecord
	for rows.Next() {
		var b entity.BatchLifecycleRecord
		var createdBy sql.NullString
		err := rows.Scan(
			&b.ID,
			&b.BatchNumber,
			&createdBy,
			&b.CurrentStage,
			&b.Status,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		b.CreatedBy = createdBy.String
		batches = append(batches, &b)
	}
	return batches, rows.Err()
}
