package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garyjia/tkdn-compliance/internal/application/policy"
	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/application/workflow"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// Mock repositories

type mockSubmissionRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Submission, error)
	listFunc    func(ctx context.Context, filter port.SubmissionFilter) ([]*entity.SubmissionSummary, error)
}

func (m *mockSubmissionRepo) NextID(ctx context.Context, year int) (string, error) {
	return "TKDN-2025-0001", nil
}

func (m *mockSubmissionRepo) Create(ctx context.Context, s *entity.Submission) error { return nil }

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id string) (*entity.Submission, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Submission{ID: id, OwnerID: "officer-1", Status: entity.StatusPending}, nil
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter port.SubmissionFilter) ([]*entity.SubmissionSummary, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockSubmissionRepo) UpdateReview(ctx context.Context, s *entity.Submission, expected entity.SubmissionStatus) (bool, error) {
	return true, nil
}

func (m *mockSubmissionRepo) Delete(ctx context.Context, id string) (bool, error) { return true, nil }

type mockItemRepo struct {
	getFunc func(ctx context.Context, submissionID string) ([]*entity.Item, error)
}

func (m *mockItemRepo) CreateBatch(ctx context.Context, submissionID string, items []*entity.Item) error {
	return nil
}

func (m *mockItemRepo) GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.Item, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, submissionID)
	}
	return nil, nil
}

type mockDocumentRepo struct {
	getByIDFunc func(ctx context.Context, submissionID string, id int64) (*entity.Document, error)
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *entity.Document) error { return nil }

func (m *mockDocumentRepo) GetByID(ctx context.Context, submissionID string, id int64) (*entity.Document, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, submissionID, id)
	}
	return nil, nil
}

func (m *mockDocumentRepo) ListBySubmissionID(ctx context.Context, submissionID string) ([]*entity.Document, error) {
	return nil, nil
}

func (m *mockDocumentRepo) GetJustification(ctx context.Context, submissionID string) (*entity.Document, error) {
	return nil, nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id int64) error { return nil }

func (m *mockDocumentRepo) UpdateJustificationReview(ctx context.Context, doc *entity.Document) (bool, error) {
	return true, nil
}

type mockHistoryRepo struct{}

func (m *mockHistoryRepo) Create(ctx context.Context, h *entity.History) error { return nil }

func (m *mockHistoryRepo) GetBySubmissionID(ctx context.Context, submissionID string) ([]*entity.History, error) {
	return nil, nil
}

// mockEngine records the commands it receives
type mockEngine struct {
	createFunc     func(ctx context.Context, s *entity.Submission) (*entity.Submission, error)
	reviewFunc     func(ctx context.Context, cmd workflow.ReviewCommand) (*entity.Submission, error)
	uploadFunc     func(ctx context.Context, cmd workflow.UploadCommand) (*entity.Document, error)
	reviewJustFunc func(ctx context.Context, cmd workflow.JustificationDecision) (*entity.Document, error)
	purgeFunc      func(ctx context.Context, id, actor string) error
	calls          int
}

func (m *mockEngine) CreateSubmission(ctx context.Context, s *entity.Submission) (*entity.Submission, error) {
	m.calls++
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	s.ID = "TKDN-2025-0001"
	s.Status = entity.StatusPending
	return s, nil
}

func (m *mockEngine) ReviewSubmission(ctx context.Context, cmd workflow.ReviewCommand) (*entity.Submission, error) {
	m.calls++
	if m.reviewFunc != nil {
		return m.reviewFunc(ctx, cmd)
	}
	return &entity.Submission{ID: cmd.SubmissionID, Status: cmd.Target, ReviewedBy: cmd.Reviewer}, nil
}

func (m *mockEngine) UploadJustification(ctx context.Context, cmd workflow.UploadCommand) (*entity.Document, error) {
	m.calls++
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, cmd)
	}
	return &entity.Document{ID: 7, SubmissionID: cmd.SubmissionID, FileSize: int64(len(cmd.Content)), JustificationStatus: entity.JustificationPending}, nil
}

func (m *mockEngine) ReviewJustification(ctx context.Context, cmd workflow.JustificationDecision) (*entity.Document, error) {
	m.calls++
	if m.reviewJustFunc != nil {
		return m.reviewJustFunc(ctx, cmd)
	}
	return &entity.Document{ID: 7, SubmissionID: cmd.SubmissionID, JustificationStatus: cmd.Decision}, nil
}

func (m *mockEngine) PurgeSubmission(ctx context.Context, id, actor string) error {
	m.calls++
	if m.purgeFunc != nil {
		return m.purgeFunc(ctx, id, actor)
	}
	return nil
}

// mockCache passes listings straight through and counts invalidations
type mockCache struct {
	invalidations int
	lastFilter    port.SubmissionFilter
}

func (m *mockCache) List(ctx context.Context, filter port.SubmissionFilter, load func(context.Context, port.SubmissionFilter) ([]*entity.SubmissionSummary, error)) ([]*entity.SubmissionSummary, error) {
	m.lastFilter = filter
	return load(ctx, filter)
}

func (m *mockCache) Invalidate() { m.invalidations++ }

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

var (
	officer  = entity.Caller{ID: "officer-1", Role: entity.RoleOfficer}
	stranger = entity.Caller{ID: "officer-2", Role: entity.RoleOfficer}
	reviewer = entity.Caller{ID: "reviewer-1", Role: entity.RoleReviewer}
)

type harness struct {
	subs   *mockSubmissionRepo
	items  *mockItemRepo
	docs   *mockDocumentRepo
	engine *mockEngine
	cache  *mockCache
	stores Stores
	access *policy.Authorizer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	access, err := policy.New("")
	require.NoError(t, err)

	h := &harness{
		subs:   &mockSubmissionRepo{},
		items:  &mockItemRepo{},
		docs:   &mockDocumentRepo{},
		engine: &mockEngine{},
		cache:  &mockCache{},
		access: access,
	}
	h.stores = Stores{
		Submissions: h.subs,
		Items:       h.items,
		Documents:   h.docs,
		History:     &mockHistoryRepo{},
	}
	return h
}
