package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apierrors "ecomdash/internal/errors"
	"ecomdash/pkg/contracts/domain"
)

const testSpreadsheet = "sheet-1"

// fakeSheets records the calls made against the Sheets REST API
type fakeSheets struct {
	mu       sync.Mutex
	existing []string
	added    []string
	cleared  []string
	updates  []*sheets.ValueRange
	failGet  bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := "/v4/spreadsheets/" + testSpreadsheet
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == base:
		if f.failGet {
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"error":{"code":403,"message":"The caller does not have permission"}}`)
			return
		}
		resp := sheets.Spreadsheet{SpreadsheetId: testSpreadsheet}
		for _, title := range f.existing {
			resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title}})
		}
		json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPost && r.URL.Path == base+":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.added = append(f.added, rq.AddSheet.Properties.Title)
		}
		io.WriteString(w, `{"spreadsheetId":"`+testSpreadsheet+`"}`)

	case r.Method == http.MethodPost && r.URL.Path == base+"/values:batchClear":
		var req sheets.BatchClearValuesRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.cleared = append(f.cleared, req.Ranges...)
		io.WriteString(w, `{}`)

	case r.Method == http.MethodPost && r.URL.Path == base+"/values:batchUpdate":
		var req sheets.BatchUpdateValuesRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.updates = append(f.updates, req.Data...)
		cells := 0
		for _, vr := range req.Data {
			for _, row := range vr.Values {
				cells += len(row)
			}
		}
		json.NewEncoder(w).Encode(map[string]int{"totalUpdatedCells": cells})

	default:
		http.Error(w, r.Method+" "+r.URL.Path, http.StatusNotFound)
	}
}

func newTestPublisher(t *testing.T, fake *fakeSheets) *Publisher {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	p, err := NewPublisher(context.Background(), testSpreadsheet, "",
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return p
}

func testDashboard() *domain.Dashboard {
	day := func(d int) time.Time { return time.Date(2018, 1, d, 0, 0, 0, 0, time.UTC) }
	return &domain.Dashboard{
		Range: domain.DateRange{Start: day(1), End: day(2)},
		Rows:  3,
		Metrics: domain.DashboardMetrics{
			TotalOrders:      2,
			TotalRevenue:     35,
			FormattedRevenue: "$ 35.00",
		},
		DailyOrders: []domain.DailyOrders{
			{Day: day(1), OrderCount: 1, Revenue: 15},
			{Day: day(2), OrderCount: 1, Revenue: 20},
		},
		BestCategories:  []domain.CategoryFrequency{{Category: "moveis", Frequency: 6}},
		WorstCategories: []domain.CategoryFrequency{{Category: "perfumaria", Frequency: 2}},
		BestRecommended: []domain.ReviewPreference{{ReviewScore: 1, Category: "moveis", ReviewCount: 7}},
		GeneratedAt:     day(3),
	}
}

func TestPublisher_Publish(t *testing.T) {
	fake := &fakeSheets{existing: []string{TabSummary, TabDaily}}
	p := newTestPublisher(t, fake)

	result, err := p.Publish(context.Background(), testDashboard())
	require.NoError(t, err)

	assert.Equal(t, testSpreadsheet, result.SpreadsheetID)
	assert.Equal(t, []string{TabSummary, TabDaily, TabCategories, TabReviews}, result.Tabs)
	assert.Equal(t, []string{TabCategories, TabReviews}, fake.added)
	assert.Equal(t, []string{"'Summary'", "'Daily Orders'", "'Categories'", "'Best Recommendation'"}, fake.cleared)

	require.Len(t, fake.updates, 4)
	assert.Equal(t, "'Daily Orders'!A1", fake.updates[1].Range)
	assert.Equal(t, []interface{}{"day", "order_count", "revenue"}, fake.updates[1].Values[0])
	assert.Equal(t, []interface{}{"2018-01-02", "1", "20.00"}, fake.updates[1].Values[2])
	assert.Equal(t, []interface{}{"worst", "perfumaria", "2"}, fake.updates[2].Values[2])
	assert.Equal(t, []interface{}{"1", "moveis", "7"}, fake.updates[3].Values[1])

	// Summary(8x2) + daily(3x3) + categories(3x3) + reviews(2x3)
	assert.Equal(t, int64(16+9+9+6), result.UpdatedCells)
	assert.Contains(t, result.String(), "sheet-1: 40 cells")
}

func TestPublisher_NoMissingTabs(t *testing.T) {
	fake := &fakeSheets{existing: []string{TabSummary, TabDaily, TabCategories, TabReviews}}
	p := newTestPublisher(t, fake)

	_, err := p.Publish(context.Background(), testDashboard())
	require.NoError(t, err)
	assert.Empty(t, fake.added)
}

func TestPublisher_APIError(t *testing.T) {
	fake := &fakeSheets{failGet: true}
	p := newTestPublisher(t, fake)

	_, err := p.Publish(context.Background(), testDashboard())
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeNetwork, appErr.Type)

	var gErr *googleapi.Error
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, http.StatusForbidden, gErr.Code)
	assert.Empty(t, fake.updates)
}

func TestNewPublisher_Config(t *testing.T) {
	ctx := context.Background()

	_, err := NewPublisher(ctx, "", "", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "spreadsheet ID is required"))

	_, err = NewPublisher(ctx, testSpreadsheet, filepath.Join(t.TempDir(), "missing.json"), nil)
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestQuoteTab(t *testing.T) {
	assert.Equal(t, "'Daily Orders'", quoteTab("Daily Orders"))
	assert.Equal(t, "'Bob''s'", quoteTab("Bob's"))
}
