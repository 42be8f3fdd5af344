package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ecomdash/pkg/contracts/domain"
)

// Dataset is the order table loaded once at startup together with its
// provenance. It is safe for concurrent readers.
type Dataset struct {
	table    *Table
	source   string
	loadedAt time.Time
	bounds   domain.DateRange
}

// NewDataset wraps an already loaded table.
func NewDataset(table *Table, source string) *Dataset {
	if table == nil {
		table = NewTable(nil)
	}
	return &Dataset{
		table:    table,
		source:   source,
		loadedAt: time.Now().UTC(),
		bounds:   FullRange(table),
	}
}

// OpenDataset loads the file at path.
func OpenDataset(ctx context.Context, path string, opts LoadOptions) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	started := time.Now()

	table, err := LoadFile(ctx, path, opts)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	ds := NewDataset(table, path)

	logger.Info("dataset loaded",
		slog.String("source", path),
		slog.Int("rows", table.Len()),
		slog.String("range", ds.bounds.String()),
		slog.Duration("duration", time.Since(started)))
	return ds, nil
}

// Table returns the full order table.
func (d *Dataset) Table() *Table {
	return d.table
}

// Range returns [min date, max date] of the dataset.
func (d *Dataset) Range() domain.DateRange {
	return d.bounds
}

// Info describes the dataset for health and range endpoints.
func (d *Dataset) Info() domain.DatasetInfo {
	return domain.DatasetInfo{
		Source:   d.source,
		Rows:     d.table.Len(),
		Range:    d.bounds,
		LoadedAt: d.loadedAt,
	}
}
