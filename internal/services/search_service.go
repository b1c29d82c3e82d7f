package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"salescli/internal/dataprocessing"
	apperrors "salescli/internal/errors"
	"salescli/internal/infrastructure"
	"salescli/pkg/contracts/domain"
)

// Filter keys accepted by SearchService.SetFilter.
const (
	FilterTerritory     = "territory"
	FilterSalesRep      = "salesRep"
	FilterMinSales      = "minSales"
	FilterMaxSales      = "maxSales"
	FilterQ3PromoTarget = "isQ3PromoTarget"
)

// SearchService holds the current query and filter state and recomputes
// results from the live collection on every read, so results never go stale
// against a reload.
type SearchService struct {
	territory *TerritoryService
	metrics   *infrastructure.BusinessMetrics

	mu      sync.RWMutex
	query   string
	filters dataprocessing.SearchFilters
}

// NewSearchService constructs a search service over the given collection.
func NewSearchService(territory *TerritoryService, metrics *infrastructure.BusinessMetrics) *SearchService {
	return &SearchService{territory: territory, metrics: metrics}
}

// SetQuery replaces the free-text query. Whitespace-only input clears it.
func (s *SearchService) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = strings.TrimSpace(query)
}

// SetFilter sets one structured filter by key. An empty value clears that
// filter; an unknown key or an unparseable value is a validation error and
// leaves the state unchanged.
func (s *SearchService) SetFilter(key, value string) error {
	value = strings.TrimSpace(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch key {
	case FilterTerritory:
		if value == "" {
			s.filters.Territory = ""
			return nil
		}
		territory := domain.Territory(value)
		if !territory.IsValid() {
			return apperrors.NewAppValidationError(fmt.Sprintf("unknown territory %q", value))
		}
		s.filters.Territory = territory

	case FilterSalesRep:
		s.filters.SalesRep = value

	case FilterMinSales:
		ptr, err := parseSalesBound(key, value)
		if err != nil {
			return err
		}
		s.filters.MinSales = ptr

	case FilterMaxSales:
		ptr, err := parseSalesBound(key, value)
		if err != nil {
			return err
		}
		s.filters.MaxSales = ptr

	case FilterQ3PromoTarget:
		if value == "" {
			s.filters.IsQ3PromoTarget = nil
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return apperrors.NewAppValidationError(fmt.Sprintf("invalid boolean %q for %s", value, key))
		}
		s.filters.IsQ3PromoTarget = &b

	default:
		return apperrors.NewAppValidationError(fmt.Sprintf("unknown filter %q", key))
	}
	return nil
}

// ClearFilters removes all structured filters, keeping the text query.
func (s *SearchService) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = dataprocessing.SearchFilters{}
}

// ClearAll resets the query and all filters.
func (s *SearchService) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
	s.filters = dataprocessing.SearchFilters{}
}

// Query returns the current free-text query.
func (s *SearchService) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Filters returns the current structured filter state.
func (s *SearchService) Filters() dataprocessing.SearchFilters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// HasActiveSearch reports whether any query or filter is set.
func (s *SearchService) HasActiveSearch() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query != "" || s.filters.Active()
}

// Results evaluates the current query and filters over the live collection,
// preserving collection order. With nothing active it returns the whole
// collection.
func (s *SearchService) Results(ctx context.Context) []domain.Customer {
	s.mu.RLock()
	query := s.query
	filters := s.filters
	s.mu.RUnlock()

	results := dataprocessing.Search(s.territory.Customers(), query, filters)

	if s.metrics != nil {
		s.metrics.SearchQueries.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("search.has_query", query != ""),
			attribute.Bool("search.has_filters", filters.Active()),
			attribute.Int("search.results", len(results)),
		))
	}
	return results
}

func parseSalesBound(key, value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("invalid number %q for %s", value, key))
	}
	return &f, nil
}
