package http

import (
	"bytes"
	"log/slog"
	"net/http"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/report"
)

// PageHandler renders the report page and its two map views
type PageHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler creates a new page handler
func NewPageHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PageHandler {
	return &PageHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
	}
}

// ServeReport handles GET /
func (h *PageHandler) ServeReport(w http.ResponseWriter, r *http.Request) {
	stations, err := h.service.Stations(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	var buf bytes.Buffer
	if err := report.RenderPage(&buf, report.NewPageData(len(stations))); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	serveHTML(w, buf.Bytes())
}

// ServeStationMap handles GET /maps/stations
func (h *PageHandler) ServeStationMap(w http.ResponseWriter, r *http.Request) {
	stations, err := h.service.Stations(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	h.renderMap(w, r, report.StationMap(stations))
}

// ServeExpansionMap handles GET /maps/expansion
func (h *PageHandler) ServeExpansionMap(w http.ResponseWriter, r *http.Request) {
	stations, err := h.service.Stations(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	sites, err := h.service.Sites(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	h.renderMap(w, r, report.ExpansionMap(stations, sites))
}

func (h *PageHandler) renderMap(w http.ResponseWriter, r *http.Request, data report.MapData) {
	var buf bytes.Buffer
	if err := report.RenderMap(&buf, data); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	serveHTML(w, buf.Bytes())
}

// serveHTML writes a rendered page; rendering into a buffer first keeps a
// template failure from producing half a page with a 200
func serveHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
