package port

import (
	"context"
	"time"

	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// ReportRow is one item line of the compliance report
type ReportRow struct {
	SubmissionID string
	Status       entity.SubmissionStatus
	WorkUnit     string
	Item         *entity.Item
}

// ReportSummary carries the aggregate figures of the compliance report
type ReportSummary struct {
	GeneratedAt             time.Time
	SubmissionCount         int
	ItemCount               int
	CompliantItemCount      int
	TotalFinalPrice         float64
	TotalForeignPrice       float64
	WeightedLocalContent    float64
	CountByStatus           map[entity.SubmissionStatus]int
	WeightedLocalByCategory map[string]float64
}

// ReportRenderer turns report data into a downloadable workbook
type ReportRenderer interface {
	Render(ctx context.Context, rows []ReportRow, summary ReportSummary) ([]byte, error)
	ContentType() string
	Extension() string
}
