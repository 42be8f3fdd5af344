package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apierrors "ecomdash/internal/errors"
	"ecomdash/pkg/contracts/domain"
)

// ErrUnknownView is returned for a view name outside domain.Views.
var ErrUnknownView = errors.New("unknown view")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Column headers per view
var (
	DailyHeaders    = []string{"day", "order_count", "revenue"}
	CategoryHeaders = []string{"ranking", "product_category_name", "frequency"}
	ReviewHeaders   = []string{"review_score", "product_category_name", "review_counts"}
)

// CSVWriter writes dashboard views as CSV
type CSVWriter struct {
	bom    bool
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer. With bom set every output starts with a
// UTF-8 BOM so Excel detects the encoding.
func NewCSVWriter(bom bool, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{bom: bom, logger: logger.With(slog.String("component", "csv_exporter"))}
}

// ViewTable returns the header and text records of one view of d. CSV and
// Google Sheets output share it.
func ViewTable(view string, d *domain.Dashboard) ([]string, [][]string, error) {
	switch view {
	case domain.ViewDaily:
		return DailyHeaders, dailyRecords(d.DailyOrders), nil
	case domain.ViewCategories:
		return CategoryHeaders, categoryRecords(d.BestCategories, d.WorstCategories), nil
	case domain.ViewReviews:
		return ReviewHeaders, reviewRecords(d.BestRecommended), nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
}

// WriteView writes one view of d to w.
func (c *CSVWriter) WriteView(w io.Writer, view string, d *domain.Dashboard) error {
	headers, records, err := ViewTable(view, d)
	if err != nil {
		return err
	}
	return c.write(w, headers, records)
}

// WriteDir writes every view of d into dir, one file per view, and returns
// the paths written.
func (c *CSVWriter) WriteDir(dir, prefix string, d *domain.Dashboard) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, 3)
	for _, view := range domain.Views {
		path := filepath.Join(dir, Filename(prefix, view, d.Range, "csv"))
		if err := c.writeFile(path, view, d); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (c *CSVWriter) writeFile(path, view string, d *domain.Dashboard) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return apierrors.NewExportError("failed to open file "+path, err).WithContext("format", "csv")
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	if err := c.WriteView(file, view, d); err != nil {
		return apierrors.NewExportError("failed to write "+path, err).WithContext("format", "csv")
	}

	c.logger.Info("Wrote CSV file",
		slog.String("file_path", path),
		slog.String("view", view))
	return nil
}

func (c *CSVWriter) write(w io.Writer, headers []string, records [][]string) error {
	if c.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func dailyRecords(rows []domain.DailyOrders) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{formatDay(r.Day), formatInt(int64(r.OrderCount)), formatFloat(r.Revenue)})
	}
	return records
}

func categoryRecords(best, worst []domain.CategoryFrequency) [][]string {
	records := make([][]string, 0, len(best)+len(worst))
	for _, r := range best {
		records = append(records, []string{"best", r.Category, formatInt(r.Frequency)})
	}
	for _, r := range worst {
		records = append(records, []string{"worst", r.Category, formatInt(r.Frequency)})
	}
	return records
}

func reviewRecords(rows []domain.ReviewPreference) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{formatInt(int64(r.ReviewScore)), r.Category, formatInt(r.ReviewCount)})
	}
	return records
}
