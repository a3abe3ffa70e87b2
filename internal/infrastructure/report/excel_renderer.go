package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

const (
	itemsSheet   = "Items"
	summarySheet = "Summary"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var itemHeader = []interface{}{
	"Submission", "Status", "Work Unit", "Item", "Category", "Quantity", "Unit",
	"Final Price", "Foreign Price", "Local Content %", "BMP %", "Total %", "Compliant",
	"Min Local Content %", "Min BMP %", "Min Total %",
}

// ExcelRenderer writes the compliance register as an .xlsx workbook
type ExcelRenderer struct {
	logger *zap.Logger
}

// NewExcelRenderer creates a new ExcelRenderer
func NewExcelRenderer(logger *zap.Logger) port.ReportRenderer {
	return &ExcelRenderer{logger: logger}
}

// ContentType returns the MIME type of the workbook
func (r *ExcelRenderer) ContentType() string { return xlsxContentType }

// Extension returns the file extension of the workbook
func (r *ExcelRenderer) Extension() string { return ".xlsx" }

// Render builds an item sheet and a summary sheet in memory
func (r *ExcelRenderer) Render(ctx context.Context, rows []port.ReportRow, summary port.ReportSummary) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", itemsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := file.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := r.fillItems(ctx, file, rows); err != nil {
		return nil, err
	}
	if err := r.fillSummary(file, summary); err != nil {
		return nil, err
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	r.logger.Debug("Compliance workbook rendered",
		zap.Int("rows", len(rows)),
		zap.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func (r *ExcelRenderer) fillItems(ctx context.Context, file *excelize.File, rows []port.ReportRow) error {
	if err := file.SetSheetRow(itemsSheet, "A1", &itemHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(itemHeader))
	if err := file.SetCellStyle(itemsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := file.SetPanes(itemsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := row.Item
		values := []interface{}{
			row.SubmissionID,
			string(row.Status),
			row.WorkUnit,
			item.Name,
			item.Category,
			item.Quantity,
			item.Unit,
			item.FinalPrice,
			item.ForeignPrice,
			item.LocalContentPercent,
			item.DomesticValuePercent,
			item.TotalPercent,
			yesNo(item.IsCompliant),
			item.MinLocalContentPercent,
			item.MinDomesticValuePercent,
			item.MinTotalPercent,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(itemsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return nil
}

func (r *ExcelRenderer) fillSummary(file *excelize.File, summary port.ReportSummary) error {
	lines := [][]interface{}{
		{"Generated At", summary.GeneratedAt.Format(time.RFC3339)},
		{"Submissions", summary.SubmissionCount},
		{"Items", summary.ItemCount},
		{"Compliant Items", summary.CompliantItemCount},
		{"Total Final Price", summary.TotalFinalPrice},
		{"Total Foreign Price", summary.TotalForeignPrice},
		{"Weighted Local Content %", summary.WeightedLocalContent},
		{},
		{"Status", "Submissions"},
	}
	for _, status := range []entity.SubmissionStatus{
		entity.StatusPending, entity.StatusUnderReview, entity.StatusAccepted, entity.StatusRejected,
	} {
		lines = append(lines, []interface{}{string(status), summary.CountByStatus[status]})
	}

	lines = append(lines, []interface{}{}, []interface{}{"Category", "Weighted Local Content %"})
	categories := make([]string, 0, len(summary.WeightedLocalByCategory))
	for c := range summary.WeightedLocalByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		lines = append(lines, []interface{}{c, summary.WeightedLocalByCategory[c]})
	}

	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(summarySheet, cell, &line); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	return file.SetColWidth(summarySheet, "A", "A", 28)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Verify interface compliance
var _ port.ReportRenderer = (*ExcelRenderer)(nil)
