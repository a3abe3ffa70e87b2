package port

import (
	"context"

	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// SubmissionFilter narrows a submission listing. An empty OwnerID lists every owner.
type SubmissionFilter struct {
	OwnerID string
	Status  entity.SubmissionStatus
}

// SubmissionRepository defines persistence operations for Submission headers.
// Items, documents and history are loaded through their own repositories.
type SubmissionRepository interface {
	// NextID allocates the next TKDN-<year>-<seq> identifier; call inside a transaction
	NextID(ctx context.Context, year int) (string, error)

	Create(ctx context.Context, s *entity.Submission) error

	// GetByID returns nil, nil when the submission does not exist
	GetByID(ctx context.Context, id string) (*entity.Submission, error)

	List(ctx context.Context, filter SubmissionFilter) ([]*entity.SubmissionSummary, error)

	// UpdateReview writes the review fields only if the stored status still equals expected
	UpdateReview(ctx context.Context, s *entity.Submission, expected entity.SubmissionStatus) (bool, error)

	// Delete removes the submission and cascades to its items, documents and history
	Delete(ctx context.Context, id string) (bool, error)
}

// ItemRepository defines persistence operations for Item
type ItemRepository interface {
	CreateBatch(ctx context.Context, submissionID string, items []*entity.Item) error
	GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.Item, error)
}

// DocumentRepository defines persistence operations for Document
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error

	// GetByID loads the document including its content; nil, nil when missing
	GetByID(ctx context.Context, submissionID string, id int64) (*entity.Document, error)

	// ListBySubmissionID returns document metadata without content
	ListBySubmissionID(ctx context.Context, submissionID string) ([]*entity.Document, error)

	// GetJustification returns the live justification metadata; nil, nil when absent
	GetJustification(ctx context.Context, submissionID string) (*entity.Document, error)

	Delete(ctx context.Context, id int64) error

	// UpdateJustificationReview records a decision only while the document is pending
	UpdateJustificationReview(ctx context.Context, doc *entity.Document) (bool, error)
}

// HistoryRepository defines persistence operations for the submission decision log
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.History) error
	GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.History, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
