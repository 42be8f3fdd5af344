package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"ecomdash/internal/config"
	"ecomdash/internal/dataprocessing"
	"ecomdash/internal/exporter"
	"ecomdash/internal/infrastructure"
	"ecomdash/internal/services"
	"ecomdash/internal/sheets"
	"ecomdash/internal/validation"
	"ecomdash/pkg/contracts"
	"ecomdash/pkg/contracts/domain"
)

// options are the command line flags
type options struct {
	data              string
	start             string
	end               string
	top               int
	xlsx              string
	csvDir            string
	sheetsID          string
	sheetsCredentials string
	currency          string
	locale            string
	timeout           time.Duration
	version           bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts, err := parseFlags(os.Args[1:], cfg, os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	if opts.version {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	logger := infrastructure.NewLogger(cfg.Logging, os.Stdout)
	if err := run(context.Background(), opts, cfg, logger); err != nil {
		logger.Error("Report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// parseFlags reads the flags, defaulting to the configured dataset, currency,
// locale and Sheets target.
func parseFlags(args []string, cfg *config.Config, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("dashboard-report", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.data, "data", cfg.Dataset.Path, "path to the joined order dataset CSV")
	fs.StringVar(&opts.start, "start", "", "first day of the range, YYYY-MM-DD (defaults to the dataset start)")
	fs.StringVar(&opts.end, "end", "", "last day of the range, YYYY-MM-DD (defaults to the dataset end)")
	fs.IntVar(&opts.top, "top", cfg.Dataset.TopN, "number of categories per ranking (1-50)")
	fs.StringVar(&opts.xlsx, "xlsx", "", "write the Excel workbook to this file")
	fs.StringVar(&opts.csvDir, "csv-dir", "", "write one CSV per view into this directory")
	fs.StringVar(&opts.sheetsID, "sheets-id", cfg.Sheets.SpreadsheetID, "publish the views to this Google Sheets spreadsheet")
	fs.StringVar(&opts.sheetsCredentials, "sheets-credentials", cfg.Sheets.CredentialsFile, "service account JSON for -sheets-id")
	fs.StringVar(&opts.currency, "currency", cfg.Dataset.Currency, "ISO 4217 currency of the revenue")
	fs.StringVar(&opts.locale, "locale", cfg.Dataset.Locale, "BCP 47 locale for number formatting")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall time limit")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func run(ctx context.Context, opts options, cfg *config.Config, logger *slog.Logger) error {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	validator := validation.NewPathValidator(logger)
	if err := validator.ValidateDatasetFile(opts.data); err != nil {
		return err
	}
	if opts.xlsx != "" {
		if err := validator.ValidateWorkbookPath(opts.xlsx); err != nil {
			return err
		}
	}
	if opts.csvDir != "" {
		if err := validator.ValidateOutputDirectory(opts.csvDir); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "Loading dataset",
		slog.String("path", opts.data),
		slog.String("version", contracts.GetVersionString()))

	dataset, err := dataprocessing.OpenDataset(ctx, opts.data, dataprocessing.LoadOptions{
		Delimiter: cfg.Dataset.DelimiterRune(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	service, err := services.NewDashboardService(dataset, services.DashboardOptions{
		Currency: opts.currency,
		Locale:   opts.locale,
		TopN:     opts.top,
	}, logger)
	if err != nil {
		return err
	}

	dashboard, err := service.Dashboard(ctx, services.DashboardQuery{
		Start: opts.start,
		End:   opts.end,
		Top:   opts.top,
	})
	if err != nil {
		return err
	}

	logViews(ctx, logger, dashboard)

	if opts.xlsx != "" {
		if err := writeWorkbook(opts.xlsx, dashboard, logger); err != nil {
			return err
		}
	}

	if opts.csvDir != "" {
		paths, err := exporter.NewCSVWriter(cfg.Export.CSVBOM, logger).WriteDir(opts.csvDir, cfg.Export.FilenamePrefix, dashboard)
		if err != nil {
			return fmt.Errorf("failed to write csv files: %w", err)
		}
		logger.InfoContext(ctx, "CSV files written", slog.Any("paths", paths))
	}

	if opts.sheetsID != "" {
		publisher, err := sheets.NewPublisher(ctx, opts.sheetsID, opts.sheetsCredentials, logger)
		if err != nil {
			return err
		}
		result, err := publisher.Publish(ctx, dashboard)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Published to Google Sheets", slog.String("result", result.String()))
	}

	return nil
}

// logViews prints every view as structured log records.
func logViews(ctx context.Context, logger *slog.Logger, d *domain.Dashboard) {
	logger.InfoContext(ctx, "Dashboard metrics",
		slog.String("range", d.Range.String()),
		slog.Bool("empty", d.Empty),
		slog.Int("total_orders", d.Metrics.TotalOrders),
		slog.Float64("total_revenue", d.Metrics.TotalRevenue),
		slog.String("formatted_revenue", d.Metrics.FormattedRevenue))
	logger.InfoContext(ctx, "Daily orders", slog.Any("rows", d.DailyOrders))
	logger.InfoContext(ctx, "Best performing categories", slog.Any("rows", d.BestCategories))
	logger.InfoContext(ctx, "Worst performing categories", slog.Any("rows", d.WorstCategories))
	logger.InfoContext(ctx, "Best recommended categories", slog.Any("rows", d.BestRecommended))
}

func writeWorkbook(path string, d *domain.Dashboard, logger *slog.Logger) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close workbook file: %w", cerr)
		}
	}()

	if err := exporter.NewWorkbookWriter(logger).Write(file, d); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	logger.Info("Workbook written", slog.String("path", path))
	return nil
}
