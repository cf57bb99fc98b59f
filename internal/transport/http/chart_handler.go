package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "bikepulse/internal/errors"
	appmw "bikepulse/internal/middleware"
	"bikepulse/internal/report"
	"bikepulse/internal/services"
	"bikepulse/pkg/contracts/domain"
)

// ChartHandler serves the bar chart data behind the report's dropdowns
type ChartHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *appmw.QueryParamValidator
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	logger = logger.With(slog.String("component", "chart_handler"))
	return &ChartHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		validator:    appmw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/{chart}", func(r chi.Router) {
		r.Use(h.ChartCtx)
		r.Get("/", h.GetChart)
		r.Get("/options", h.GetOptions)
	})
	return r
}

type chartSpecKey struct{}

// ChartCtx middleware resolves the {chart} parameter
func (h *ChartHandler) ChartCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spec, err := report.LookupChart(domain.ChartKind(chi.URLParam(r, "chart")))
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withChartSpec(r, spec)))
	})
}

// GetChart handles GET /api/charts/{chart}?metric=
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	spec := chartSpecFrom(r)

	allowed := make([]string, len(spec.Options))
	for i, m := range spec.Options {
		allowed[i] = string(m)
	}
	metric, ok := h.validator.ValidateEnum(w, r, "metric", allowed, string(spec.Default))
	if !ok {
		return
	}

	chart, err := h.service.Chart(r.Context(), spec.Kind, domain.Metric(metric))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute chart",
			slog.String("error", err.Error()),
			slog.String("chart", string(spec.Kind)),
			slog.String("metric", metric),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, chart)
}

// GetOptions handles GET /api/charts/{chart}/options
func (h *ChartHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.ChartOptions(r.Context(), chartSpecFrom(r).Kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// mapServiceError turns service sentinels into API errors
func mapServiceError(err error) error {
	if errors.Is(err, services.ErrNotLoaded) {
		return apierrors.ErrServiceUnavailable
	}
	return err
}
