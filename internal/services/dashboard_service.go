package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ecomdash/internal/config"
	"ecomdash/internal/dataprocessing"
	"ecomdash/internal/infrastructure"
	"ecomdash/pkg/contracts/domain"
)

// DashboardQuery selects the date range and list length of a dashboard.
// Empty dates default to the dataset bounds; a zero Top uses the configured N.
type DashboardQuery struct {
	Start string `json:"start" query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" query:"end" validate:"omitempty,datetime=2006-01-02"`
	Top   int    `json:"top" query:"top" validate:"omitempty,min=1,max=50"`
}

// CategoryRanking holds the best and worst selling categories.
type CategoryRanking struct {
	Range domain.DateRange          `json:"range"`
	Best  []domain.CategoryFrequency `json:"best"`
	Worst []domain.CategoryFrequency `json:"worst"`
}

// DashboardOptions configures a DashboardService.
type DashboardOptions struct {
	Currency string
	Locale   string
	TopN     int
	Metrics  *infrastructure.DashboardMetrics
}

// OptionsFromConfig derives service options from the dataset section.
func OptionsFromConfig(cfg config.DatasetConfig, metrics *infrastructure.DashboardMetrics) DashboardOptions {
	return DashboardOptions{
		Currency: cfg.Currency,
		Locale:   cfg.Locale,
		TopN:     cfg.TopN,
		Metrics:  metrics,
	}
}

// DashboardService filters the dataset and runs the aggregators for one
// request at a time. It holds no per-request state.
type DashboardService struct {
	dataset   *dataprocessing.Dataset
	formatter *RevenueFormatter
	topN      int
	metrics   *infrastructure.DashboardMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewDashboardService creates the service. dataset may be nil, in which case
// every view reports ErrDatasetUnavailable.
func NewDashboardService(dataset *dataprocessing.Dataset, opts DashboardOptions, logger *slog.Logger) (*DashboardService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Currency == "" {
		opts.Currency = config.DefaultCurrency
	}
	if opts.Locale == "" {
		opts.Locale = config.DefaultLocale
	}
	if opts.TopN == 0 {
		opts.TopN = config.DefaultTopN
	}
	if opts.TopN < 1 || opts.TopN > config.MaxTopN {
		return nil, fmt.Errorf("top n must be between 1 and %d: %d", config.MaxTopN, opts.TopN)
	}

	formatter, err := NewRevenueFormatter(opts.Currency, opts.Locale)
	if err != nil {
		return nil, err
	}

	if dataset != nil && opts.Metrics != nil {
		opts.Metrics.DatasetRows.Record(context.Background(), int64(dataset.Table().Len()))
	}

	return &DashboardService{
		dataset:   dataset,
		formatter: formatter,
		topN:      opts.TopN,
		metrics:   opts.Metrics,
		tracer:    otel.Tracer(infrastructure.MeterName),
		logger:    logger.With(slog.String("component", "dashboard_service")),
	}, nil
}

// Range returns the loaded dataset and its bounds, the default picker range.
func (s *DashboardService) Range(ctx context.Context) (domain.DatasetInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.DatasetInfo{}, err
	}
	if s.dataset == nil {
		return domain.DatasetInfo{}, ErrDatasetUnavailable
	}
	return s.dataset.Info(), nil
}

// Dashboard computes every view for the query's range.
func (s *DashboardService) Dashboard(ctx context.Context, q DashboardQuery) (*domain.Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.build")
	defer span.End()

	started := time.Now()
	r, top, err := s.resolve(ctx, q)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("dashboard.range", r.String()), attribute.Int("dashboard.top", top))

	filtered := dataprocessing.FilterRange(s.dataset.Table(), r)

	var (
		daily   []domain.DailyOrders
		cats    []domain.CategoryFrequency
		reviews []domain.ReviewPreference
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		daily = dataprocessing.FillDailyGaps(dataprocessing.AggregateDaily(filtered))
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		cats = dataprocessing.AggregateCategoryFrequency(filtered)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		reviews = dataprocessing.AggregateReviewPreference(filtered)
		return nil
	})
	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("aggregate dashboard: %w", err)
	}

	revenue := filtered.TotalRevenue()
	dashboard := &domain.Dashboard{
		Range: r,
		Rows:  filtered.Len(),
		Empty: filtered.Empty(),
		Metrics: domain.DashboardMetrics{
			TotalOrders:      filtered.DistinctOrders(),
			TotalRevenue:     revenue,
			FormattedRevenue: s.formatter.Format(revenue),
			Currency:         s.formatter.Currency(),
			Locale:           s.formatter.Locale(),
		},
		DailyOrders:     daily,
		BestCategories:  dataprocessing.TopCategories(cats, top),
		WorstCategories: dataprocessing.BottomCategories(cats, top),
		BestRecommended: dataprocessing.TopReviewPreferences(reviews, top),
		GeneratedAt:     time.Now().UTC(),
	}

	s.record(ctx, "dashboard", started, dashboard.Empty)
	s.logger.DebugContext(ctx, "dashboard built",
		slog.String("range", r.String()),
		slog.Int("rows", dashboard.Rows),
		slog.Int("total_orders", dashboard.Metrics.TotalOrders),
		slog.Bool("empty", dashboard.Empty),
		slog.Duration("duration", time.Since(started)))

	return dashboard, nil
}

// Daily returns the gap-filled daily series for the query's range.
func (s *DashboardService) Daily(ctx context.Context, q DashboardQuery) ([]domain.DailyOrders, error) {
	started := time.Now()
	r, _, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	filtered := dataprocessing.FilterRange(s.dataset.Table(), r)
	rows := dataprocessing.FillDailyGaps(dataprocessing.AggregateDaily(filtered))

	s.record(ctx, domain.ViewDaily, started, filtered.Empty())
	return rows, nil
}

// Categories returns the top and bottom N categories for the query's range.
func (s *DashboardService) Categories(ctx context.Context, q DashboardQuery) (*CategoryRanking, error) {
	started := time.Now()
	r, top, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	filtered := dataprocessing.FilterRange(s.dataset.Table(), r)
	cats := dataprocessing.AggregateCategoryFrequency(filtered)

	s.record(ctx, domain.ViewCategories, started, filtered.Empty())
	return &CategoryRanking{
		Range: r,
		Best:  dataprocessing.TopCategories(cats, top),
		Worst: dataprocessing.BottomCategories(cats, top),
	}, nil
}

// Reviews returns the top N (score, category) pairs for the query's range.
func (s *DashboardService) Reviews(ctx context.Context, q DashboardQuery) ([]domain.ReviewPreference, error) {
	started := time.Now()
	r, top, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	filtered := dataprocessing.FilterRange(s.dataset.Table(), r)
	rows := dataprocessing.TopReviewPreferences(dataprocessing.AggregateReviewPreference(filtered), top)

	s.record(ctx, domain.ViewReviews, started, filtered.Empty())
	return rows, nil
}

// resolve applies defaults to q and validates it against the dataset.
func (s *DashboardService) resolve(ctx context.Context, q DashboardQuery) (domain.DateRange, int, error) {
	if err := ctx.Err(); err != nil {
		return domain.DateRange{}, 0, err
	}
	if s.dataset == nil {
		return domain.DateRange{}, 0, ErrDatasetUnavailable
	}

	bounds := s.dataset.Range()
	start, err := parseDay("start", q.Start, bounds.Start)
	if err != nil {
		return domain.DateRange{}, 0, err
	}
	end, err := parseDay("end", q.End, bounds.End)
	if err != nil {
		return domain.DateRange{}, 0, err
	}

	r := dataprocessing.NewDateRange(start, end)
	if r.Validate() != nil {
		return domain.DateRange{}, 0, &RangeError{
			Start: r.Start.Format(domain.DateLayout),
			End:   r.End.Format(domain.DateLayout),
		}
	}

	top := q.Top
	switch {
	case top == 0:
		top = s.topN
	case top < 1 || top > config.MaxTopN:
		return domain.DateRange{}, 0, &QueryError{
			Field:   "top",
			Value:   fmt.Sprint(q.Top),
			Message: fmt.Sprintf("top must be between 1 and %d", config.MaxTopN),
		}
	}

	return r, top, nil
}

func (s *DashboardService) record(ctx context.Context, view string, started time.Time, empty bool) {
	infrastructure.RecordDashboardBuild(ctx, s.metrics, view, time.Since(started), empty)
}

func parseDay(field, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	day, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, &QueryError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", field),
		}
	}
	return day, nil
}
