package http

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salescli/internal/dataprocessing"
	apierrors "salescli/internal/errors"
	"salescli/internal/infrastructure"
	customMiddleware "salescli/internal/middleware"
	"salescli/internal/services"
)

// loadContentTypes are the media types accepted by POST /load
var loadContentTypes = []string{
	"text/csv",
	"text/plain",
	"application/csv",
	"application/octet-stream",
	"multipart/form-data",
}

// uploadForm carries the multipart filename through struct validation
type uploadForm struct {
	Filename string `json:"filename" validate:"required,filename"`
}

// DatasetHandler handles territory dataset lifecycle requests
type DatasetHandler struct {
	territory    *services.TerritoryService
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *customMiddleware.ValidationMiddleware
}

// NewDatasetHandler creates a new dataset lifecycle handler
func NewDatasetHandler(territory *services.TerritoryService, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		territory:    territory,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("handler", "dataset")),
		errorHandler: errorHandler,
		validation:   customMiddleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// Routes returns the dataset lifecycle routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(customMiddleware.ContentTypeValidator(loadContentTypes...)).Post("/load", h.Load)
	r.Post("/reload", h.Reload)
	r.Delete("/", h.Clear)
	r.Get("/status", h.Status)

	return r
}

// Load handles POST /api/territory/load. The body is either raw CSV text
// or a multipart form with a "file" part carrying a CSV or XLSX export.
func (h *DatasetHandler) Load(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)

	if h.territory.Loading() {
		render.Render(w, r, apierrors.MapDatasetError(apierrors.ErrLoadAlreadyBusy, traceID))
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.loadMultipart(w, r, traceID)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxUpload+1))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if int64(len(body)) > h.maxUpload {
		render.Render(w, r, apierrors.MapDatasetError(apierrors.ErrFileTooLarge, traceID))
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"EMPTY_BODY",
			"Request body must contain CSV text or a file upload",
		))
		return
	}

	parsed, err := h.territory.Load(ctx, string(body))
	if err != nil {
		render.Render(w, r, apierrors.MapDatasetError(err, traceID))
		return
	}

	h.renderLoadResult(w, r, "body", len(parsed.Data), len(parsed.Errors))
}

// loadMultipart ingests the uploaded file part, dispatching on extension
func (h *DatasetHandler) loadMultipart(w http.ResponseWriter, r *http.Request, traceID string) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"MISSING_FILE",
			"Multipart form must include a \"file\" part",
		))
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		render.Render(w, r, apierrors.MapDatasetError(apierrors.ErrFileTooLarge, traceID))
		return
	}

	if err := h.validation.ValidateStruct(uploadForm{Filename: header.Filename}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "ingesting uploaded territory file",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	var parsed *dataprocessing.ParseResult
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		parsed, err = h.territory.LoadReader(ctx, file)
	case ".xlsx":
		parsed, err = h.territory.LoadWorkbookReader(ctx, file)
	default:
		render.Render(w, r, apierrors.MapDatasetError(
			fmt.Errorf("%w: %s", apierrors.ErrFileFormat, header.Filename), traceID))
		return
	}
	if err != nil {
		render.Render(w, r, apierrors.MapDatasetError(err, traceID))
		return
	}

	h.renderLoadResult(w, r, header.Filename, len(parsed.Data), len(parsed.Errors))
}

func (h *DatasetHandler) renderLoadResult(w http.ResponseWriter, r *http.Request, source string, customers, diagnostics int) {
	render.JSON(w, r, map[string]interface{}{
		"status":      "success",
		"source":      source,
		"customers":   customers,
		"diagnostics": diagnostics,
		"version":     h.territory.Version(),
	})
}

// Reload handles POST /api/territory/reload, restoring the saved snapshot
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)

	restored, err := h.territory.LoadFromStorage(ctx)
	if err != nil {
		render.Render(w, r, apierrors.MapDatasetError(err, traceID))
		return
	}
	if !restored {
		render.Render(w, r, apierrors.MapDatasetError(apierrors.ErrSnapshotMissing, traceID))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"customers": len(h.territory.Customers()),
		"version":   h.territory.Version(),
	})
}

// Clear handles DELETE /api/territory
func (h *DatasetHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.territory.Clear(ctx); err != nil {
		render.Render(w, r, apierrors.MapDatasetError(err, infrastructure.GetTraceID(ctx)))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"version": h.territory.Version(),
	})
}

// Status handles GET /api/territory/status
func (h *DatasetHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"loaded":    h.territory.Loaded(),
		"loading":   h.territory.Loading(),
		"version":   h.territory.Version(),
		"customers": len(h.territory.Customers()),
	}
	if err := h.territory.LastError(); err != nil {
		status["last_error"] = err.Error()
	}

	render.JSON(w, r, status)
}
