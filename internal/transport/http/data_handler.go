package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apierrors "salescli/internal/errors"
	"salescli/internal/exporter"
	"salescli/internal/infrastructure"
	customMiddleware "salescli/internal/middleware"
	"salescli/internal/services"
	"salescli/pkg/contracts/domain"
)

// searchFilterKeys are the query parameters forwarded to the search layer
var searchFilterKeys = []string{
	services.FilterTerritory,
	services.FilterSalesRep,
	services.FilterMinSales,
	services.FilterMaxSales,
	services.FilterQ3PromoTarget,
}

// territoryNames are the allowed values for the territory query parameter
var territoryNames = func() []string {
	names := make([]string, len(domain.Territories))
	for i, t := range domain.Territories {
		names[i] = string(t)
	}
	return names
}()

// customerLookup carries the URL parameter through struct validation
type customerLookup struct {
	CustomerNumber string `json:"customerNumber" validate:"required,customer_number"`
}

// DataHandler handles read-side requests over the loaded dataset
type DataHandler struct {
	territory    *services.TerritoryService
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *customMiddleware.ValidationMiddleware
	queryParams  *customMiddleware.QueryParamValidator
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(territory *services.TerritoryService, metrics *infrastructure.BusinessMetrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		territory:    territory,
		metrics:      metrics,
		logger:       logger.With(slog.String("handler", "data")),
		errorHandler: errorHandler,
		validation:   customMiddleware.NewValidationMiddleware(logger, errorHandler),
		queryParams:  customMiddleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the data routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/customers", h.GetCustomers)
	r.Route("/customers/{customerNumber}", func(r chi.Router) {
		r.Use(h.CustomerCtx)
		r.Get("/", h.GetCustomer)
	})

	r.Get("/analytics/territories", h.GetTerritoryAnalytics)
	r.Get("/analytics/representatives", h.GetRepresentativeAnalytics)

	r.Get("/search", h.Search)

	r.Get("/export/customers.csv", h.ExportCustomers)
	r.Get("/export/territories.csv", h.ExportTerritoryStats)

	return r
}

// CustomerCtx middleware validates the customerNumber parameter
func (h *DataHandler) CustomerCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookup := customerLookup{CustomerNumber: chi.URLParam(r, "customerNumber")}
		if err := h.validation.ValidateStruct(lookup); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetCustomers handles GET /api/customers, optionally filtered by territory
func (h *DataHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	territoryParam, ok := h.queryParams.ValidateEnum(w, r, "territory", territoryNames, "")
	if !ok {
		return
	}

	var customers []domain.Customer
	if territoryParam != "" {
		customers = h.territory.CustomersInTerritory(domain.Territory(territoryParam))
	} else {
		customers = h.territory.Customers()
	}

	h.logger.InfoContext(r.Context(), "listing customers",
		slog.String("request_id", reqID),
		slog.Int("count", len(customers)),
	)

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"data":    customers,
		"count":   len(customers),
		"version": h.territory.Version(),
	})
}

// GetCustomer handles GET /api/customers/{customerNumber}
func (h *DataHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "customerNumber")

	customer, err := h.territory.Customer(number)
	if err != nil {
		render.Render(w, r, apierrors.MapDatasetError(err, infrastructure.GetTraceID(r.Context())))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   customer,
	})
}

// GetTerritoryAnalytics handles GET /api/analytics/territories
func (h *DataHandler) GetTerritoryAnalytics(w http.ResponseWriter, r *http.Request) {
	stats := h.territory.TerritoryAnalytics()

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"data":    stats,
		"count":   len(stats),
		"version": h.territory.Version(),
	})
}

// GetRepresentativeAnalytics handles GET /api/analytics/representatives
func (h *DataHandler) GetRepresentativeAnalytics(w http.ResponseWriter, r *http.Request) {
	reps := h.territory.RepresentativeAnalytics()

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"data":    reps,
		"count":   len(reps),
		"version": h.territory.Version(),
	})
}

// Search handles GET /api/search. The free-text query arrives as "q" and
// the structured filters under their filter key names.
func (h *DataHandler) Search(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	params := r.URL.Query()

	search := services.NewSearchService(h.territory, h.metrics)
	search.SetQuery(params.Get("q"))
	for _, key := range searchFilterKeys {
		if err := search.SetFilter(key, params.Get(key)); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(key, err.Error()))
			return
		}
	}

	results := search.Results(r.Context())

	h.logger.InfoContext(r.Context(), "search executed",
		slog.String("request_id", reqID),
		slog.String("query", search.Query()),
		slog.Bool("has_filters", search.Filters().Active()),
		slog.Int("results", len(results)),
	)

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"data":    results,
		"count":   len(results),
		"query":   search.Query(),
		"filters": search.Filters(),
	})
}

// ExportCustomers handles GET /api/export/customers.csv
func (h *DataHandler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	customers := h.territory.Customers()

	filename := fmt.Sprintf("customers_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.WriteCustomers(w, customers); err != nil {
		// Headers are already out; log and drop the connection
		h.logger.ErrorContext(r.Context(), "customer export failed",
			slog.String("error", err.Error()))
		return
	}

	h.recordExport(r, "customers", len(customers))
}

// ExportTerritoryStats handles GET /api/export/territories.csv
func (h *DataHandler) ExportTerritoryStats(w http.ResponseWriter, r *http.Request) {
	stats := h.territory.TerritoryAnalytics()

	filename := fmt.Sprintf("territories_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.WriteTerritoryStats(w, stats); err != nil {
		h.logger.ErrorContext(r.Context(), "territory stats export failed",
			slog.String("error", err.Error()))
		return
	}

	h.recordExport(r, "territories", len(stats))
}

func (h *DataHandler) recordExport(r *http.Request, kind string, rows int) {
	if h.metrics == nil {
		return
	}
	h.metrics.ExportDownloads.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("export.kind", kind),
		attribute.Int("export.rows", rows),
	))
}
