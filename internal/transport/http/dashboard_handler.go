package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ecomdash/internal/config"
	apierrors "ecomdash/internal/errors"
	"ecomdash/internal/exporter"
	"ecomdash/internal/infrastructure"
	mw "ecomdash/internal/middleware"
	"ecomdash/internal/services"
	"ecomdash/pkg/contracts/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves the dashboard views and exports
type DashboardHandler struct {
	service        DashboardServiceInterface
	validator      *mw.Validator
	queryValidator *mw.QueryParamValidator
	workbook       *exporter.WorkbookWriter
	csv            *exporter.CSVWriter
	filePrefix     string
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// DashboardHandlerOptions configures the export side of the handler.
type DashboardHandlerOptions struct {
	CSVBOM         bool
	FilenamePrefix string
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, opts DashboardHandlerOptions, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:        service,
		validator:      mw.NewValidator(),
		queryValidator: mw.NewQueryParamValidator(logger, errorHandler),
		workbook:       exporter.NewWorkbookWriter(logger),
		csv:            exporter.NewCSVWriter(opts.CSVBOM, logger),
		filePrefix:     opts.FilenamePrefix,
		logger:         logger.With(slog.String("component", "dashboard_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", h.GetDashboard)
		r.Get("/range", h.GetRange)
		r.Get("/daily", h.GetDaily)
		r.Get("/categories", h.GetCategories)
		r.Get("/reviews", h.GetReviews)
	})

	r.Get("/export.xlsx", h.ExportXLSX)
	r.Get("/export.csv", h.ExportCSV)

	return r
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), q)
	if err != nil {
		h.fail(w, r, "failed to build dashboard", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   dashboard,
	})
}

// GetRange handles GET /api/dashboard/range
func (h *DashboardHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Range(r.Context())
	if err != nil {
		h.fail(w, r, "failed to get dataset range", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"start":     info.Range.Start.Format(domain.DateLayout),
			"end":       info.Range.End.Format(domain.DateLayout),
			"rows":      info.Rows,
			"source":    info.Source,
			"loaded_at": info.LoadedAt,
		},
	})
}

// GetDaily handles GET /api/dashboard/daily
func (h *DashboardHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	rows, err := h.service.Daily(r.Context(), q)
	if err != nil {
		h.fail(w, r, "failed to get daily orders", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"count":  len(rows),
		"data":   rows,
	})
}

// GetCategories handles GET /api/dashboard/categories
func (h *DashboardHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	ranking, err := h.service.Categories(r.Context(), q)
	if err != nil {
		h.fail(w, r, "failed to get category ranking", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   ranking,
	})
}

// GetReviews handles GET /api/dashboard/reviews
func (h *DashboardHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	rows, err := h.service.Reviews(r.Context(), q)
	if err != nil {
		h.fail(w, r, "failed to get review preferences", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"count":  len(rows),
		"data":   rows,
	})
}

// ExportXLSX handles GET /api/dashboard/export.xlsx
func (h *DashboardHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), q)
	if err != nil {
		h.fail(w, r, "failed to build dashboard for export", err)
		return
	}

	var buf bytes.Buffer
	if err := h.workbook.Write(&buf, dashboard); err != nil {
		h.fail(w, r, "failed to write workbook", apierrors.ExportError("xlsx", err))
		return
	}

	filename := exporter.Filename(h.filePrefix, "report", dashboard.Range, "xlsx")
	h.sendFile(w, r, "xlsx", xlsxContentType, filename, buf.Bytes())
}

// ExportCSV handles GET /api/dashboard/export.csv?view=daily|categories|reviews
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	view, ok := h.queryValidator.ValidateEnum(w, r, "view", domain.Views, domain.ViewDaily)
	if !ok {
		return
	}
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), q)
	if err != nil {
		h.fail(w, r, "failed to build dashboard for export", err)
		return
	}

	var buf bytes.Buffer
	if err := h.csv.WriteView(&buf, view, dashboard); err != nil {
		h.fail(w, r, "failed to write csv", apierrors.ExportError("csv", err))
		return
	}

	filename := exporter.Filename(h.filePrefix, view, dashboard.Range, "csv")
	h.sendFile(w, r, "csv", "text/csv; charset=utf-8", filename, buf.Bytes())
}

// parseQuery reads start, end and top and validates them. On failure the
// problem response has been written.
func (h *DashboardHandler) parseQuery(w http.ResponseWriter, r *http.Request) (services.DashboardQuery, bool) {
	values := r.URL.Query()
	q := services.DashboardQuery{
		Start: values.Get("start"),
		End:   values.Get("end"),
	}

	top, ok := h.queryValidator.ValidateInt(w, r, "top", 1, config.MaxTopN, 0)
	if !ok {
		return q, false
	}
	q.Top = top

	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	return q, true
}

func (h *DashboardHandler) sendFile(w http.ResponseWriter, r *http.Request, format, contentType, filename string, data []byte) {
	infrastructure.RecordExport(r.Context(), mw.GetDashboardMetrics(r.Context()), format)

	h.logger.InfoContext(r.Context(), "dashboard exported",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("format", format),
		slog.String("filename", filename),
		slog.Int("bytes", len(data)),
	)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to send export", slog.String("error", err.Error()))
	}
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.DebugContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, services.MapError(err))
}
