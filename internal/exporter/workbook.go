package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apierrors "ecomdash/internal/errors"
	"ecomdash/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetSummary         = "Summary"
	SheetDailyOrders     = "Daily Orders"
	SheetBestPerforming  = "Best Performing"
	SheetWorstPerforming = "Worst Performing"
	SheetRecommendation  = "Best Recommendation"
)

// WorkbookWriter renders a dashboard as an XLSX workbook with one sheet per
// view and a native chart next to each table.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "xlsx_exporter"))}
}

// Write renders d and streams the workbook to w.
func (ww *WorkbookWriter) Write(w io.Writer, d *domain.Dashboard) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			ww.logger.Warn("failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	b, err := newWorkbookBuilder(f)
	if err != nil {
		return err
	}

	steps := []func(*domain.Dashboard) error{
		b.summary,
		b.daily,
		func(d *domain.Dashboard) error {
			return b.categories(SheetBestPerforming, "Best Performing Product Categories", d.BestCategories)
		},
		func(d *domain.Dashboard) error {
			return b.categories(SheetWorstPerforming, "Worst Performing Product Categories", d.WorstCategories)
		},
		b.reviews,
	}
	for _, step := range steps {
		if err := step(d); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return apierrors.NewExportError("failed to write workbook", err).WithContext("format", "xlsx")
	}

	ww.logger.Debug("Wrote workbook",
		slog.String("range", d.Range.String()),
		slog.Int("daily_rows", len(d.DailyOrders)))
	return nil
}

type workbookBuilder struct {
	f           *excelize.File
	headerStyle int
	dateStyle   int
	moneyStyle  int
}

func newWorkbookBuilder(f *excelize.File) (*workbookBuilder, error) {
	b := &workbookBuilder{f: f}

	var err error
	if b.headerStyle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	}); err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	dateFmt := "yyyy-mm-dd"
	if b.dateStyle, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return nil, fmt.Errorf("failed to create date style: %w", err)
	}

	moneyFmt := "#,##0.00"
	if b.moneyStyle, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	return b, nil
}

func (b *workbookBuilder) summary(d *domain.Dashboard) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Start date", formatDay(d.Range.Start)},
		{"End date", formatDay(d.Range.End)},
		{"Total orders", d.Metrics.TotalOrders},
		{"Total revenue", d.Metrics.TotalRevenue},
		{"Formatted revenue", d.Metrics.FormattedRevenue},
		{"Currency", d.Metrics.Currency},
		{"Rows", d.Rows},
		{"Generated at", d.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	if err := b.table(SheetSummary, rows); err != nil {
		return err
	}
	if err := b.f.SetCellStyle(SheetSummary, "B5", "B5", b.moneyStyle); err != nil {
		return err
	}
	return b.f.SetColWidth(SheetSummary, "A", "B", 22)
}

func (b *workbookBuilder) daily(d *domain.Dashboard) error {
	if _, err := b.f.NewSheet(SheetDailyOrders); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetDailyOrders, err)
	}

	rows := make([][]interface{}, 0, len(d.DailyOrders)+1)
	rows = append(rows, []interface{}{"Day", "Orders", "Revenue"})
	for _, r := range d.DailyOrders {
		rows = append(rows, []interface{}{r.Day, r.OrderCount, r.Revenue})
	}
	if err := b.table(SheetDailyOrders, rows); err != nil {
		return err
	}

	last := len(rows)
	if last > 1 {
		if err := b.f.SetCellStyle(SheetDailyOrders, "A2", cell("A", last), b.dateStyle); err != nil {
			return err
		}
		if err := b.f.SetCellStyle(SheetDailyOrders, "C2", cell("C", last), b.moneyStyle); err != nil {
			return err
		}
	}
	if err := b.f.SetColWidth(SheetDailyOrders, "A", "C", 14); err != nil {
		return err
	}

	return b.chart(SheetDailyOrders, excelize.Line, "Daily Orders", last, []excelize.ChartSeries{{
		Name:       quoteRef(SheetDailyOrders, "$B$1"),
		Categories: rangeRef(SheetDailyOrders, "A", last),
		Values:     rangeRef(SheetDailyOrders, "B", last),
	}})
}

func (b *workbookBuilder) categories(sheet, title string, cats []domain.CategoryFrequency) error {
	if _, err := b.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := make([][]interface{}, 0, len(cats)+1)
	rows = append(rows, []interface{}{"Product Category", "Frequency"})
	for _, c := range cats {
		rows = append(rows, []interface{}{c.Category, c.Frequency})
	}
	if err := b.table(sheet, rows); err != nil {
		return err
	}
	if err := b.f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return err
	}

	last := len(rows)
	return b.chart(sheet, excelize.Bar, title, last, []excelize.ChartSeries{{
		Name:       quoteRef(sheet, "$B$1"),
		Categories: rangeRef(sheet, "A", last),
		Values:     rangeRef(sheet, "B", last),
	}})
}

func (b *workbookBuilder) reviews(d *domain.Dashboard) error {
	if _, err := b.f.NewSheet(SheetRecommendation); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetRecommendation, err)
	}

	rows := make([][]interface{}, 0, len(d.BestRecommended)+1)
	rows = append(rows, []interface{}{"Review Score", "Product Category", "Review Count", "Label"})
	for _, r := range d.BestRecommended {
		rows = append(rows, []interface{}{r.ReviewScore, r.Category, r.ReviewCount, fmt.Sprintf("%s (%d)", r.Category, r.ReviewScore)})
	}
	if err := b.table(SheetRecommendation, rows); err != nil {
		return err
	}
	if err := b.f.SetColWidth(SheetRecommendation, "B", "B", 32); err != nil {
		return err
	}
	if err := b.f.SetColWidth(SheetRecommendation, "D", "D", 36); err != nil {
		return err
	}

	last := len(rows)
	return b.chart(SheetRecommendation, excelize.Bar, "Best Recommended Categories", last, []excelize.ChartSeries{{
		Name:       quoteRef(SheetRecommendation, "$C$1"),
		Categories: rangeRef(SheetRecommendation, "D", last),
		Values:     rangeRef(SheetRecommendation, "C", last),
	}})
}

// table writes rows from A1 and styles the header row.
func (b *workbookBuilder) table(sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		row := row
		if err := b.f.SetSheetRow(sheet, cell("A", i+1), &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	return b.f.SetCellStyle(sheet, "A1", cell(lastCol, 1), b.headerStyle)
}

// chart places a chart right of the table. Tables without data rows get none.
func (b *workbookBuilder) chart(sheet string, chartType excelize.ChartType, title string, lastRow int, series []excelize.ChartSeries) error {
	if lastRow < 2 {
		return nil
	}
	err := b.f.AddChart(sheet, "F2", &excelize.Chart{
		Type:   chartType,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{
			Width:  640,
			Height: 360,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add chart to %s: %w", sheet, err)
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func quoteRef(sheet, ref string) string {
	return fmt.Sprintf("'%s'!%s", sheet, ref)
}

func rangeRef(sheet, col string, lastRow int) string {
	return fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, lastRow)
}
