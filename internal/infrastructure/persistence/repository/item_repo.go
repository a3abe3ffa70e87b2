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

// ItemRepository implements port.ItemRepository
type ItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sql.DB, logger *zap.Logger) port.ItemRepository {
	return &ItemRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts items with their computed figures and thresholds
func (r *ItemRepository) CreateBatch(ctx context.Context, submissionID string, items []*entity.Item) error {
	query := `
		INSERT INTO submission_items (
			submission_id, position, name, quantity, unit, brand, model, specification,
			category, final_price, foreign_price, domestic_value_percent,
			local_content_percent, total_percent, is_compliant,
			min_local_content_percent, min_domestic_value_percent, min_total_percent,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := r.getExecutor(ctx)
	for _, item := range items {
		result, err := exec.ExecContext(ctx, query,
			submissionID,
			item.Position,
			item.Name,
			item.Quantity,
			item.Unit,
			item.Brand,
			item.Model,
			item.Specification,
			item.Category,
			item.FinalPrice,
			item.ForeignPrice,
			item.DomesticValuePercent,
			item.LocalContentPercent,
			item.TotalPercent,
			item.IsCompliant,
			item.MinLocalContentPercent,
			item.MinDomesticValuePercent,
			item.MinTotalPercent,
			item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create item",
				zap.String("submission_id", submissionID),
				zap.Int("position", item.Position),
				zap.Error(err))
			return fmt.Errorf("failed to create item %d: %w", item.Position, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		item.ID = id
		item.SubmissionID = submissionID
	}

	return nil
}

// GetBySubmissionID returns items in submission order
func (r *ItemRepository) GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.Item, error) {
	query := `
		SELECT id, submission_id, position, name, quantity, unit, brand, model, specification,
			category, final_price, foreign_price, domestic_value_percent,
			local_content_percent, total_percent, is_compliant,
			min_local_content_percent, min_domestic_value_percent, min_total_percent,
			created_at
		FROM submission_items
		WHERE submission_id = ?
		ORDER BY position ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to get items", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []*entity.Item
	for rows.Next() {
		var item entity.Item
		if err := rows.Scan(
			&item.ID,
			&item.SubmissionID,
			&item.Position,
			&item.Name,
			&item.Quantity,
			&item.Unit,
			&item.Brand,
			&item.Model,
			&item.Specification,
			&item.Category,
			&item.FinalPrice,
			&item.ForeignPrice,
			&item.DomesticValuePercent,
			&item.LocalContentPercent,
			&item.TotalPercent,
			&item.IsCompliant,
			&item.MinLocalContentPercent,
			&item.MinDomesticValuePercent,
			&item.MinTotalPercent,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *ItemRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.ItemRepository = (*ItemRepository)(nil)
