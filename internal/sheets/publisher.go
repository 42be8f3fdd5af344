// Package sheets publishes dashboard views to a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apierrors "ecomdash/internal/errors"
	"ecomdash/internal/exporter"
	"ecomdash/pkg/contracts/domain"
)

// Tab titles, one per view plus the summary
const (
	TabSummary    = "Summary"
	TabDaily      = "Daily Orders"
	TabCategories = "Categories"
	TabReviews    = "Best Recommendation"
)

// viewTabs maps each view to its tab
var viewTabs = map[string]string{
	domain.ViewDaily:      TabDaily,
	domain.ViewCategories: TabCategories,
	domain.ViewReviews:    TabReviews,
}

// Publisher overwrites one tab per view of a spreadsheet
type Publisher struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *slog.Logger
}

// PublishResult describes a completed publish.
type PublishResult struct {
	SpreadsheetID string   `json:"spreadsheet_id"`
	Tabs          []string `json:"tabs"`
	UpdatedCells  int64    `json:"updated_cells"`
}

// NewPublisher creates a publisher for spreadsheetID. When credentialsFile is
// set it must hold service account JSON; otherwise opts must supply
// credentials or an HTTP client.
func NewPublisher(ctx context.Context, spreadsheetID, credentialsFile string, logger *slog.Logger, opts ...option.ClientOption) (*Publisher, error) {
	if spreadsheetID == "" {
		return nil, apierrors.NewConfigError("spreadsheet ID is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	if credentialsFile != "" {
		credentialsJSON, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, apierrors.NewConfigError("failed to read sheets credentials", err)
		}
		opts = append([]option.ClientOption{
			option.WithCredentialsJSON(credentialsJSON),
			option.WithScopes(sheets.SpreadsheetsScope),
		}, opts...)
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to create sheets service", err)
	}

	return &Publisher{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger: logger.With(
			slog.String("component", "sheets_publisher"),
			slog.String("spreadsheet_id", spreadsheetID),
		),
	}, nil
}

// Publish replaces the contents of the summary and view tabs with d. Missing
// tabs are created.
func (p *Publisher) Publish(ctx context.Context, d *domain.Dashboard) (*PublishResult, error) {
	started := time.Now()

	tabs, data, err := p.valueRanges(d)
	if err != nil {
		return nil, err
	}
	clearRanges := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		clearRanges = append(clearRanges, quoteTab(tab))
	}

	if err := p.ensureTabs(ctx, tabs); err != nil {
		return nil, err
	}

	if _, err := p.service.Spreadsheets.Values.BatchClear(p.spreadsheetID, &sheets.BatchClearValuesRequest{
		Ranges: clearRanges,
	}).Context(ctx).Do(); err != nil {
		return nil, apierrors.NewNetworkError("failed to clear sheet tabs", err)
	}

	resp, err := p.service.Spreadsheets.Values.BatchUpdate(p.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return nil, apierrors.NewNetworkError("failed to write sheet values", err)
	}

	p.logger.InfoContext(ctx, "dashboard published to sheets",
		slog.String("range", d.Range.String()),
		slog.Int64("updated_cells", resp.TotalUpdatedCells),
		slog.Duration("duration", time.Since(started)))

	return &PublishResult{
		SpreadsheetID: p.spreadsheetID,
		Tabs:          tabs,
		UpdatedCells:  resp.TotalUpdatedCells,
	}, nil
}

// ensureTabs adds the tabs that the spreadsheet does not have yet.
func (p *Publisher) ensureTabs(ctx context.Context, tabs []string) error {
	spreadsheet, err := p.service.Spreadsheets.Get(p.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return apierrors.NewNetworkError("failed to read spreadsheet", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	var requests []*sheets.Request
	for _, tab := range tabs {
		if existing[tab] {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		})
	}
	if len(requests) == 0 {
		return nil
	}

	if _, err := p.service.Spreadsheets.BatchUpdate(p.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do(); err != nil {
		return apierrors.NewNetworkError("failed to add sheet tabs", err)
	}

	p.logger.DebugContext(ctx, "added sheet tabs", slog.Int("count", len(requests)))
	return nil
}

// valueRanges returns the tab titles and their contents, summary first.
func (p *Publisher) valueRanges(d *domain.Dashboard) ([]string, []*sheets.ValueRange, error) {
	tabs := []string{TabSummary}
	ranges := []*sheets.ValueRange{{
		Range:  quoteTab(TabSummary) + "!A1",
		Values: summaryValues(d),
	}}

	for _, view := range domain.Views {
		headers, records, err := exporter.ViewTable(view, d)
		if err != nil {
			return nil, nil, err
		}
		values := make([][]interface{}, 0, len(records)+1)
		values = append(values, row(headers))
		for _, r := range records {
			values = append(values, row(r))
		}
		tabs = append(tabs, viewTabs[view])
		ranges = append(ranges, &sheets.ValueRange{
			Range:  quoteTab(viewTabs[view]) + "!A1",
			Values: values,
		})
	}
	return tabs, ranges, nil
}

func summaryValues(d *domain.Dashboard) [][]interface{} {
	return [][]interface{}{
		{"metric", "value"},
		{"start", d.Range.Start.Format(domain.DateLayout)},
		{"end", d.Range.End.Format(domain.DateLayout)},
		{"rows", d.Rows},
		{"total_orders", d.Metrics.TotalOrders},
		{"total_revenue", d.Metrics.TotalRevenue},
		{"formatted_revenue", d.Metrics.FormattedRevenue},
		{"generated_at", d.GeneratedAt.Format(time.RFC3339)},
	}
}

func row(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// quoteTab quotes a tab title for A1 notation
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// String implements fmt.Stringer
func (r PublishResult) String() string {
	return fmt.Sprintf("%s: %d cells in %s", r.SpreadsheetID, r.UpdatedCells, strings.Join(r.Tabs, ", "))
}
