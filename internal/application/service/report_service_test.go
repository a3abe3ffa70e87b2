package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

type mockRenderer struct {
	rows    []port.ReportRow
	summary port.ReportSummary
	err     error
}

func (m *mockRenderer) Render(ctx context.Context, rows []port.ReportRow, summary port.ReportSummary) ([]byte, error) {
	m.rows = rows
	m.summary = summary
	if m.err != nil {
		return nil, m.err
	}
	return []byte("xlsx"), nil
}

func (m *mockRenderer) ContentType() string { return "application/vnd.ms-excel" }
func (m *mockRenderer) Extension() string   { return ".xlsx" }

type mockStorage struct {
	saved map[string][]byte
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	m.saved[path] = content
	return nil
}

func (m *mockStorage) Location(path string) string {
	return "/data/" + path
}

func TestReportServiceExport(t *testing.T) {
	h := newHarness(t)
	h.subs.listFunc = func(ctx context.Context, filter port.SubmissionFilter) ([]*entity.SubmissionSummary, error) {
		return []*entity.SubmissionSummary{
			{ID: "TKDN-2025-0001", Status: entity.StatusAccepted, WorkUnit: "Dinkes"},
			{ID: "TKDN-2025-0002", Status: entity.StatusPending, WorkUnit: "Distan"},
		}, nil
	}
	h.items.getFunc = func(ctx context.Context, submissionID string) ([]*entity.Item, error) {
		if submissionID == "TKDN-2025-0001" {
			return []*entity.Item{
				{Category: "elektronik", FinalPrice: 15000000, ForeignPrice: 5000000, IsCompliant: true},
				{Category: "elektronik", FinalPrice: 10000000, ForeignPrice: 9000000},
			}, nil
		}
		return []*entity.Item{{Category: "umum", FinalPrice: 1000, ForeignPrice: 0, IsCompliant: true}}, nil
	}

	renderer := &mockRenderer{}
	storage := &mockStorage{saved: make(map[string][]byte)}
	svc := NewReportService(h.stores, renderer, storage, h.access, &mockLogger{}).(*reportServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 6, 30, 17, 0, 0, 0, time.UTC) }

	report, err := svc.Export(context.Background(), reviewer)
	require.NoError(t, err)

	assert.Equal(t, "tkdn-compliance-20250630-170000.xlsx", report.FileName)
	assert.Equal(t, "reports/tkdn-compliance-20250630-170000.xlsx", report.Path)
	assert.Equal(t, []byte("xlsx"), storage.saved[report.Path])
	assert.Len(t, renderer.rows, 3)

	s := report.Summary
	assert.Equal(t, 2, s.SubmissionCount)
	assert.Equal(t, 3, s.ItemCount)
	assert.Equal(t, 2, s.CompliantItemCount)
	assert.Equal(t, 1, s.CountByStatus[entity.StatusAccepted])
	// (25001000 - 14000000) / 25001000 * 100
	assert.InDelta(t, 44.0, s.WeightedLocalContent, 0.01)
	assert.InDelta(t, 44.0, s.WeightedLocalByCategory["elektronik"], 0.01)
	assert.Equal(t, 100.0, s.WeightedLocalByCategory["umum"])
}

func TestReportServiceExportForbidden(t *testing.T) {
	h := newHarness(t)
	svc := NewReportService(h.stores, &mockRenderer{}, &mockStorage{saved: map[string][]byte{}}, h.access, &mockLogger{})

	_, err := svc.Export(context.Background(), officer)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestReportServiceRenderFailure(t *testing.T) {
	h := newHarness(t)
	storage := &mockStorage{saved: make(map[string][]byte)}
	svc := NewReportService(h.stores, &mockRenderer{err: errors.New("sheet limit")}, storage, h.access, &mockLogger{})

	_, err := svc.Export(context.Background(), reviewer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheet limit")
	assert.Empty(t, storage.saved)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil, time.Now())
	assert.Zero(t, s.WeightedLocalContent)
	assert.Empty(t, s.WeightedLocalByCategory)
}
