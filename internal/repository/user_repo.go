package repository

import (
	"context"
	"fmt"

	"github.com/jvanrooyen/cultivation-tasks/internal/domain/workflow"
	"github.com/jvanrooyen/cultivation-tasks/pkg/database"
	"go.uber.org/zap"
)

// UserRepository reads user role assignments. Role management itself is an
// administrative concern outside this core.
type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetRoles returns the role set held by a user. A user without rows gets
// an empty set, which authorizes nothing.
func (r *UserRepository) GetRoles(ctx context.Context, userID string) (workflow.RoleSet, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT role FROM user_roles WHERE user_id = ?", userID)
	if err != nil {
		r.logger.Error("Failed to get user roles", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	defer rows.Close()

	roles := make(workflow.RoleSet)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles[role] = true
	}
	return roles, rows.Err()
}
