package http

import (
	"context"

	"github.com/garyjia/tkdn-compliance/internal/application/service"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

type mockSubmissionService struct {
	createFunc      func(ctx context.Context, caller entity.Caller, in service.CreateSubmissionInput) (*entity.Submission, error)
	listFunc        func(ctx context.Context, caller entity.Caller, status entity.SubmissionStatus) ([]*entity.SubmissionSummary, error)
	getFunc         func(ctx context.Context, caller entity.Caller, id string) (*entity.Submission, error)
	getDocumentFunc func(ctx context.Context, caller entity.Caller, submissionID string, documentID int64) (*entity.Document, error)
	purgeFunc       func(ctx context.Context, caller entity.Caller, id string) error
}

func (m *mockSubmissionService) Create(ctx context.Context, caller entity.Caller, in service.CreateSubmissionInput) (*entity.Submission, error) {
	return m.createFunc(ctx, caller, in)
}

func (m *mockSubmissionService) List(ctx context.Context, caller entity.Caller, status entity.SubmissionStatus) ([]*entity.SubmissionSummary, error) {
	return m.listFunc(ctx, caller, status)
}

func (m *mockSubmissionService) Get(ctx context.Context, caller entity.Caller, id string) (*entity.Submission, error) {
	return m.getFunc(ctx, caller, id)
}

func (m *mockSubmissionService) GetDocument(ctx context.Context, caller entity.Caller, submissionID string, documentID int64) (*entity.Document, error) {
	return m.getDocumentFunc(ctx, caller, submissionID, documentID)
}

func (m *mockSubmissionService) Purge(ctx context.Context, caller entity.Caller, id string) error {
	return m.purgeFunc(ctx, caller, id)
}

type mockReviewService struct {
	reviewFunc func(ctx context.Context, caller entity.Caller, id string, in service.ReviewInput) (*entity.Submission, error)
}

func (m *mockReviewService) Review(ctx context.Context, caller entity.Caller, id string, in service.ReviewInput) (*entity.Submission, error) {
	return m.reviewFunc(ctx, caller, id, in)
}

type mockJustificationService struct {
	uploadFunc func(ctx context.Context, caller entity.Caller, submissionID string, file service.FileUpload) (*entity.Document, error)
	reviewFunc func(ctx context.Context, caller entity.Caller, submissionID string, decision entity.JustificationStatus, reason string) (*entity.Document, error)
}

func (m *mockJustificationService) Upload(ctx context.Context, caller entity.Caller, submissionID string, file service.FileUpload) (*entity.Document, error) {
	return m.uploadFunc(ctx, caller, submissionID, file)
}

func (m *mockJustificationService) Review(ctx context.Context, caller entity.Caller, submissionID string, decision entity.JustificationStatus, reason string) (*entity.Document, error) {
	return m.reviewFunc(ctx, caller, submissionID, decision, reason)
}

type mockReportService struct {
	exportFunc func(ctx context.Context, caller entity.Caller) (*service.Report, error)
}

func (m *mockReportService) Export(ctx context.Context, caller entity.Caller) (*service.Report, error) {
	return m.exportFunc(ctx, caller)
}

type mockHealth struct {
	components map[string]error
}

func (m *mockHealth) Health(ctx context.Context) map[string]error {
	return m.components
}

type mockLogger struct {
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.errors = append(m.errors, msg)
}
