package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/tkdn-compliance/internal/application/policy"
	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/domain/compliance"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// Report is a rendered compliance export
type Report struct {
	FileName    string
	Path        string
	ContentType string
	Content     []byte
	Summary     port.ReportSummary
}

// ReportService exports the compliance register
type ReportService interface {
	Export(ctx context.Context, caller entity.Caller) (*Report, error)
}

type reportServiceImpl struct {
	stores   Stores
	renderer port.ReportRenderer
	storage  port.ReportStore
	policy   AccessPolicy
	logger   Logger
	now      func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(stores Stores, renderer port.ReportRenderer, storage port.ReportStore, access AccessPolicy, logger Logger) ReportService {
	return &reportServiceImpl{
		stores:   stores,
		renderer: renderer,
		storage:  storage,
		policy:   access,
		logger:   logger,
		now:      time.Now,
	}
}

// Export renders one row per stored item with aggregates computed from stored prices
func (s *reportServiceImpl) Export(ctx context.Context, caller entity.Caller) (*Report, error) {
	if err := s.policy.Authorize(caller, policy.OpReportExport, ""); err != nil {
		return nil, err
	}

	summaries, err := s.stores.Submissions.List(ctx, port.SubmissionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	var rows []port.ReportRow
	for _, sum := range summaries {
		items, err := s.stores.Items.GetBySubmissionID(ctx, sum.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load items of %s: %w", sum.ID, err)
		}
		for _, item := range items {
			rows = append(rows, port.ReportRow{
				SubmissionID: sum.ID,
				Status:       sum.Status,
				WorkUnit:     sum.WorkUnit,
				Item:         item,
			})
		}
	}

	generatedAt := s.now()
	summary := Summarize(summaries, rows, generatedAt)

	content, err := s.renderer.Render(ctx, rows, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	fileName := fmt.Sprintf("tkdn-compliance-%s%s", generatedAt.Format("20060102-150405"), s.renderer.Extension())
	relPath := path.Join("reports", fileName)
	if err := s.storage.Save(ctx, relPath, content); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	s.logger.Info("Compliance report exported",
		"path", relPath,
		"location", s.storage.Location(relPath),
		"submissions", summary.SubmissionCount,
		"items", summary.ItemCount,
		"requested_by", caller.ID,
	)

	return &Report{
		FileName:    fileName,
		Path:        relPath,
		ContentType: s.renderer.ContentType(),
		Content:     content,
		Summary:     summary,
	}, nil
}

// Summarize computes report aggregates. Weighted local content is
// sum(final - foreign) / sum(final) * 100, accumulated in full precision.
func Summarize(summaries []*entity.SubmissionSummary, rows []port.ReportRow, generatedAt time.Time) port.ReportSummary {
	out := port.ReportSummary{
		GeneratedAt:             generatedAt,
		SubmissionCount:         len(summaries),
		ItemCount:               len(rows),
		CountByStatus:           make(map[entity.SubmissionStatus]int),
		WeightedLocalByCategory: make(map[string]float64),
	}

	for _, sum := range summaries {
		out.CountByStatus[sum.Status]++
	}

	totalFinal := decimal.Zero
	totalForeign := decimal.Zero
	catFinal := make(map[string]decimal.Decimal)
	catForeign := make(map[string]decimal.Decimal)

	for _, row := range rows {
		final := decimal.NewFromFloat(row.Item.FinalPrice)
		foreign := decimal.NewFromFloat(row.Item.ForeignPrice)

		totalFinal = totalFinal.Add(final)
		totalForeign = totalForeign.Add(foreign)
		catFinal[row.Item.Category] = catFinal[row.Item.Category].Add(final)
		catForeign[row.Item.Category] = catForeign[row.Item.Category].Add(foreign)

		if row.Item.IsCompliant {
			out.CompliantItemCount++
		}
	}

	out.TotalFinalPrice = totalFinal.InexactFloat64()
	out.TotalForeignPrice = totalForeign.InexactFloat64()
	if totalFinal.IsPositive() {
		out.WeightedLocalContent = compliance.LocalContent(totalFinal, totalForeign).Round(2).InexactFloat64()
	}
	for cat, final := range catFinal {
		if final.IsPositive() {
			out.WeightedLocalByCategory[cat] = compliance.LocalContent(final, catForeign[cat]).Round(2).InexactFloat64()
		}
	}

	return out
}
