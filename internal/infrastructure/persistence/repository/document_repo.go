package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
	"github.com/garyjia/tkdn-compliance/internal/infrastructure/persistence/sqlite"
)

const documentColumns = `id, submission_id, document_type, file_name, file_size, mime_type, uploaded_at,
	justification_status, justification_reviewed_at, justification_reviewed_by, justification_rejection_reason`

// DocumentRepository implements port.DocumentRepository.
// Content lives in the same row as a BLOB and is only read by GetByID.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a document and sets its ID
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO submission_documents (
			submission_id, document_type, file_name, file_size, mime_type, content, uploaded_at,
			justification_status, justification_reviewed_at, justification_reviewed_by, justification_rejection_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	content := doc.Content
	if content == nil {
		content = []byte{}
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		doc.SubmissionID,
		doc.Type,
		doc.FileName,
		doc.FileSize,
		doc.MimeType,
		content,
		doc.UploadedAt,
		doc.JustificationStatus,
		doc.JustificationReviewedAt,
		doc.JustificationReviewedBy,
		doc.JustificationRejectionReason,
	)
	if err != nil {
		r.logger.Error("Failed to create document",
			zap.String("submission_id", doc.SubmissionID),
			zap.String("type", string(doc.Type)),
			zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	doc.ID = id

	return nil
}

// GetByID loads one document of a submission including its content
func (r *DocumentRepository) GetByID(ctx context.Context, submissionID string, id int64) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + `, content
		FROM submission_documents
		WHERE submission_id = ? AND id = ?`

	row := r.getExecutor(ctx).QueryRowContext(ctx, query, submissionID, id)

	var content []byte
	doc, err := scanDocument(row, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document",
			zap.String("submission_id", submissionID),
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc.Content = content

	return doc, nil
}

// ListBySubmissionID returns document metadata in upload order
func (r *DocumentRepository) ListBySubmissionID(ctx context.Context, submissionID string) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM submission_documents
		WHERE submission_id = ?
		ORDER BY id ASC`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// GetJustification returns the live justification metadata of a submission
func (r *DocumentRepository) GetJustification(ctx context.Context, submissionID string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM submission_documents
		WHERE submission_id = ? AND document_type = ?`

	doc, err := scanDocument(r.getExecutor(ctx).QueryRowContext(ctx, query, submissionID, entity.DocJustification))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get justification", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get justification: %w", err)
	}

	return doc, nil
}

// Delete removes a document by ID
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.getExecutor(ctx).ExecContext(ctx, "DELETE FROM submission_documents WHERE id = ?", id); err != nil {
		r.logger.Error("Failed to delete document", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// UpdateJustificationReview records the decision while the justification is still pending
func (r *DocumentRepository) UpdateJustificationReview(ctx context.Context, doc *entity.Document) (bool, error) {
	query := `
		UPDATE submission_documents
		SET justification_status = ?, justification_reviewed_at = ?,
			justification_reviewed_by = ?, justification_rejection_reason = ?
		WHERE id = ? AND justification_status = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		doc.JustificationStatus,
		doc.JustificationReviewedAt,
		doc.JustificationReviewedBy,
		doc.JustificationRejectionReason,
		doc.ID,
		entity.JustificationPending,
	)
	if err != nil {
		r.logger.Error("Failed to update justification review", zap.Int64("id", doc.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update justification review: %w", err)
	}

	return affectedOne(result)
}

func (r *DocumentRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner, extra ...interface{}) (*entity.Document, error) {
	var (
		doc        entity.Document
		reviewedAt sql.NullTime
	)
	dest := []interface{}{
		&doc.ID,
		&doc.SubmissionID,
		&doc.Type,
		&doc.FileName,
		&doc.FileSize,
		&doc.MimeType,
		&doc.UploadedAt,
		&doc.JustificationStatus,
		&reviewedAt,
		&doc.JustificationReviewedBy,
		&doc.JustificationRejectionReason,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	doc.JustificationReviewedAt = timePtr(reviewedAt)
	return &doc, nil
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
