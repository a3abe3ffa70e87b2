package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
	"github.com/garyjia/tkdn-compliance/internal/infrastructure/persistence/sqlite"
)

// SubmissionRepository implements port.SubmissionRepository
type SubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) port.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// NextID bumps the per-year sequence and formats the identifier
func (r *SubmissionRepository) NextID(ctx context.Context, year int) (string, error) {
	query := `
		INSERT INTO submission_sequences (year, last_seq) VALUES (?, 1)
		ON CONFLICT(year) DO UPDATE SET last_seq = last_seq + 1
		RETURNING last_seq
	`

	var seq int
	if err := r.getExecutor(ctx).QueryRowContext(ctx, query, year).Scan(&seq); err != nil {
		r.logger.Error("Failed to allocate submission sequence", zap.Int("year", year), zap.Error(err))
		return "", fmt.Errorf("failed to allocate sequence: %w", err)
	}

	return fmt.Sprintf("TKDN-%d-%04d", year, seq), nil
}

// Create inserts the submission header
func (r *SubmissionRepository) Create(ctx context.Context, s *entity.Submission) error {
	query := `
		INSERT INTO submissions (
			id, owner_id, status,
			ppk_name, ppk_national_id, ppk_email, ppk_phone, ppk_work_unit, ppk_position,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		s.ID,
		s.OwnerID,
		s.Status,
		s.PPK.Name,
		s.PPK.NationalID,
		s.PPK.Email,
		s.PPK.Phone,
		s.PPK.WorkUnit,
		s.PPK.Position,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create submission", zap.String("id", s.ID), zap.Error(err))
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// GetByID retrieves a submission header by ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*entity.Submission, error) {
	query := `
		SELECT id, owner_id, status,
			ppk_name, ppk_national_id, ppk_email, ppk_phone, ppk_work_unit, ppk_position,
			review_notes, rejection_reason, presentation_date, reviewed_at, reviewed_by,
			created_at, updated_at
		FROM submissions
		WHERE id = ?
	`

	var (
		s                entity.Submission
		presentationDate sql.NullTime
		reviewedAt       sql.NullTime
	)
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.OwnerID,
		&s.Status,
		&s.PPK.Name,
		&s.PPK.NationalID,
		&s.PPK.Email,
		&s.PPK.Phone,
		&s.PPK.WorkUnit,
		&s.PPK.Position,
		&s.ReviewNotes,
		&s.RejectionReason,
		&presentationDate,
		&reviewedAt,
		&s.ReviewedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get submission", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	s.PresentationDate = timePtr(presentationDate)
	s.ReviewedAt = timePtr(reviewedAt)
	return &s, nil
}

// List returns summaries, newest first, restricted by the filter
func (r *SubmissionRepository) List(ctx context.Context, filter port.SubmissionFilter) ([]*entity.SubmissionSummary, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.OwnerID != "" {
		where = append(where, "s.owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		where = append(where, "s.status = ?")
		args = append(args, filter.Status)
	}

	query := `
		SELECT s.id, s.owner_id, s.status, s.ppk_name, s.ppk_work_unit,
			s.presentation_date, s.reviewed_at, s.created_at,
			(SELECT COUNT(*) FROM submission_items i WHERE i.submission_id = s.id),
			(SELECT COUNT(*) FROM submission_items i WHERE i.submission_id = s.id AND i.is_compliant = 1),
			COALESCE((SELECT d.justification_status FROM submission_documents d
				WHERE d.submission_id = s.id AND d.document_type = 'justification'), '')
		FROM submissions s
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.created_at DESC, s.id DESC"

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list submissions", zap.String("owner_id", filter.OwnerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var summaries []*entity.SubmissionSummary
	for rows.Next() {
		var (
			sum              entity.SubmissionSummary
			presentationDate sql.NullTime
			reviewedAt       sql.NullTime
		)
		if err := rows.Scan(
			&sum.ID,
			&sum.OwnerID,
			&sum.Status,
			&sum.PPKName,
			&sum.WorkUnit,
			&presentationDate,
			&reviewedAt,
			&sum.CreatedAt,
			&sum.ItemCount,
			&sum.CompliantItemCount,
			&sum.JustificationStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission summary: %w", err)
		}
		sum.PresentationDate = timePtr(presentationDate)
		sum.ReviewedAt = timePtr(reviewedAt)
		summaries = append(summaries, &sum)
	}

	return summaries, rows.Err()
}

// UpdateReview writes the review outcome if the stored status still equals expected
func (r *SubmissionRepository) UpdateReview(ctx context.Context, s *entity.Submission, expected entity.SubmissionStatus) (bool, error) {
	query := `
		UPDATE submissions
		SET status = ?, review_notes = ?, rejection_reason = ?, presentation_date = ?,
			reviewed_at = ?, reviewed_by = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		s.Status,
		s.ReviewNotes,
		s.RejectionReason,
		s.PresentationDate,
		s.ReviewedAt,
		s.ReviewedBy,
		s.UpdatedAt,
		s.ID,
		expected,
	)
	if err != nil {
		r.logger.Error("Failed to update submission review", zap.String("id", s.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update submission: %w", err)
	}

	return affectedOne(result)
}

// Delete removes the submission; items, documents and history cascade
func (r *SubmissionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.getExecutor(ctx).ExecContext(ctx, "DELETE FROM submissions WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete submission", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete submission: %w", err)
	}

	return affectedOne(result)
}

func (r *SubmissionRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)
