package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
	"github.com/garyjia/tkdn-compliance/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a decision log entry
func (r *HistoryRepository) Create(ctx context.Context, h *entity.History) error {
	query := `
		INSERT INTO review_history (
			submission_id, actor, action, previous_status, new_status, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		h.SubmissionID,
		h.Actor,
		h.Action,
		h.PreviousStatus,
		h.NewStatus,
		h.Notes,
		h.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry",
			zap.String("submission_id", h.SubmissionID),
			zap.String("action", h.Action),
			zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	h.ID = id

	return nil
}

// GetBySubmissionID returns the log oldest first
func (r *HistoryRepository) GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.History, error) {
	query := `
		SELECT id, submission_id, actor, action, previous_status, new_status, notes, created_at
		FROM review_history
		WHERE submission_id = ?
		ORDER BY id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.History
	for rows.Next() {
		var h entity.History
		if err := rows.Scan(
			&h.ID,
			&h.SubmissionID,
			&h.Actor,
			&h.Action,
			&h.PreviousStatus,
			&h.NewStatus,
			&h.Notes,
			&h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entries = append(entries, &h)
	}

	return entries, rows.Err()
}

func (r *HistoryRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
