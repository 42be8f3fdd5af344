package dataprocessing

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"ecomdash/pkg/contracts/domain"
)

// Column names of the joined order dataset.
const (
	ColOrderID      = "order_id"
	ColProductID    = "product_id"
	ColPrice        = "price"
	ColReviewScore  = "review_score"
	ColReviewCounts = "review_counts"
	ColCustomerID   = "customer_id_y"
	ColPurchasedAt  = "order_purchase_timestamp_y"
	ColDeliveredAt  = "order_delivered_customer_date_y"
	ColDeliveryTime = "delivery_time_y"
	ColCategory     = "product_category_name_y"
	ColFrequency    = "frequency_y"
)

// RequiredColumns lists the columns selected from the input file, in output order.
var RequiredColumns = []string{
	ColOrderID,
	ColProductID,
	ColPrice,
	ColReviewScore,
	ColReviewCounts,
	ColCustomerID,
	ColPurchasedAt,
	ColDeliveredAt,
	ColDeliveryTime,
	ColCategory,
	ColFrequency,
}

// Load errors.
var (
	ErrFileNotFound       = errors.New("dataset file not found")
	ErrSchemaMismatch     = errors.New("dataset schema mismatch")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrMalformedNumber    = errors.New("malformed number")
	ErrMalformedRow       = errors.New("malformed row")
)

// LoadError carries the location of a load failure. Err is one of the
// sentinel errors above.
type LoadError struct {
	Err     error
	Path    string
	Line    int
	Column  string
	Value   string
	Missing []string
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Path != "" {
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing columns [%s]", strings.Join(e.Missing, ", "))
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", column %s", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, ", value %q", e.Value)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadOptions configures how the dataset file is read.
type LoadOptions struct {
	Delimiter rune
	Logger    *slog.Logger
}

// DefaultLoadOptions returns comma-delimited options with the default logger.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Delimiter: ',',
		Logger:    slog.Default(),
	}
}

// timestampLayouts are tried in order. Fractional seconds are accepted by
// time.Parse after the seconds field.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	domain.DateLayout,
}

const utf8BOM = "\xef\xbb\xbf"

// ctxCheckInterval is how many rows are parsed between context checks.
const ctxCheckInterval = 4096

// LoadFile opens path and loads it as an order table.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Err: ErrFileNotFound, Path: path}
		}
		return nil, fmt.Errorf("stat dataset %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, &LoadError{Err: ErrFileNotFound, Path: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	table, err := Load(ctx, f, opts)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Path == "" {
			loadErr.Path = path
		}
		return nil, err
	}
	return table, nil
}

// Load reads a delimited order dataset from r. Only the required columns are
// kept; rows come back sorted ascending by purchase timestamp with a dense
// index.
func Load(ctx context.Context, r io.Reader, opts LoadOptions) (*Table, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()

	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && string(bom) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = opts.Delimiter
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Err: ErrSchemaMismatch, Missing: append([]string(nil), RequiredColumns...)}
	}
	if err != nil {
		return nil, &LoadError{Err: ErrMalformedRow, Line: 1, Value: err.Error()}
	}

	idx, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.OrderRecord
	for n := 1; ; n++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &LoadError{Err: ErrMalformedRow, Line: parseErr.Line, Value: parseErr.Err.Error()}
			}
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isBlankRecord(record) {
			continue
		}

		rec, err := parseRecord(record, idx, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PurchasedAt.Before(records[j].PurchasedAt)
	})
	for i := range records {
		records[i].Index = i
	}

	table := NewTable(records)
	logger.Debug("dataset parsed",
		slog.Int("rows", table.Len()),
		slog.Duration("duration", time.Since(started)))
	return table, nil
}

// columnIndex maps each required column to its position in a record.
type columnIndex map[string]int

func resolveColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	idx := make(columnIndex, len(RequiredColumns))
	var missing []string
	for _, col := range RequiredColumns {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = pos
	}
	if len(missing) > 0 {
		return nil, &LoadError{Err: ErrSchemaMismatch, Missing: missing}
	}
	return idx, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRecord(record []string, idx columnIndex, line int) (domain.OrderRecord, error) {
	cell := func(col string) string {
		pos := idx[col]
		if pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	var (
		rec domain.OrderRecord
		err error
	)
	rec.OrderID = cell(ColOrderID)
	rec.ProductID = cell(ColProductID)
	rec.CustomerID = cell(ColCustomerID)
	rec.Category = cell(ColCategory)

	if rec.Price, err = parseFloatCell(cell(ColPrice), ColPrice, line); err != nil {
		return rec, err
	}
	if rec.DeliveryTime, err = parseFloatCell(cell(ColDeliveryTime), ColDeliveryTime, line); err != nil {
		return rec, err
	}
	rec.ReviewScore = domain.MissingReviewScore
	if s := cell(ColReviewScore); !isMissing(s) {
		score, err := parseIntCell(s, ColReviewScore, line)
		if err != nil {
			return rec, err
		}
		if score < math.MinInt32 || score > math.MaxInt32 || score == domain.MissingReviewScore {
			return rec, &LoadError{Err: ErrMalformedNumber, Line: line, Column: ColReviewScore, Value: s}
		}
		rec.ReviewScore = int(score)
	}
	if rec.ReviewCount, err = parseIntCell(cell(ColReviewCounts), ColReviewCounts, line); err != nil {
		return rec, err
	}
	if rec.Frequency, err = parseIntCell(cell(ColFrequency), ColFrequency, line); err != nil {
		return rec, err
	}

	purchased := cell(ColPurchasedAt)
	if purchased == "" {
		return rec, &LoadError{Err: ErrMalformedTimestamp, Line: line, Column: ColPurchasedAt}
	}
	if rec.PurchasedAt, err = ParseTimestamp(purchased); err != nil {
		return rec, &LoadError{Err: ErrMalformedTimestamp, Line: line, Column: ColPurchasedAt, Value: purchased}
	}

	if delivered := cell(ColDeliveredAt); delivered != "" {
		if rec.DeliveredAt, err = ParseTimestamp(delivered); err != nil {
			return rec, &LoadError{Err: ErrMalformedTimestamp, Line: line, Column: ColDeliveredAt, Value: delivered}
		}
	}
	return rec, nil
}

// ParseTimestamp parses a naive dataset timestamp. Offsets in RFC 3339 input
// are discarded and the wall clock is kept.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Location() != time.UTC {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

func isMissing(s string) bool {
	return s == "" || strings.EqualFold(s, "nan")
}

func parseFloatCell(s, col string, line int) (float64, error) {
	if isMissing(s) {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, &LoadError{Err: ErrMalformedNumber, Line: line, Column: col, Value: s}
	}
	return f, nil
}

func parseIntCell(s, col string, line int) (int64, error) {
	if isMissing(s) {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	// pandas writes integer columns holding NaN as floats ("4.0")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, &LoadError{Err: ErrMalformedNumber, Line: line, Column: col, Value: s}
	}
	return int64(f), nil
}
