package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "bikepulse/internal/errors"
	apiv1 "bikepulse/pkg/contracts/api/v1"
)

// DataHandler exposes the loaded combined table
type DataHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/profiles", h.GetProfiles)
	r.Get("/download/model_data.csv", h.DownloadModelData)

	return r
}

// GetProfiles handles GET /api/data/profiles
func (h *DataHandler) GetProfiles(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching profiles",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	profiles, err := h.service.Profiles(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, apiv1.ProfilesResponse{
		Count:    len(profiles),
		Profiles: profiles,
	})
}

// DownloadModelData handles GET /api/data/download/model_data.csv
func (h *DataHandler) DownloadModelData(w http.ResponseWriter, r *http.Request) {
	path := h.service.ModelDataPath()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("model_data.csv"))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("open", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("stat", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="model_data.csv"`)
	http.ServeContent(w, r, "model_data.csv", info.ModTime(), f)
}
