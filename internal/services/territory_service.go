package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salescli/internal/dataprocessing"
	apperrors "salescli/internal/errors"
	"salescli/internal/files"
	"salescli/internal/infrastructure"
	"salescli/pkg/contracts/domain"
)

// Broadcaster pushes dataset change notifications to connected clients.
type Broadcaster interface {
	BroadcastUpdate(updateType, subtype, action string, data interface{})
}

// SnapshotStore persists the aggregated customer collection between runs.
type SnapshotStore interface {
	Save(customers []domain.Customer) error
	Load() (*files.Snapshot, error)
	Delete() error
}

// TerritoryService owns the in-memory customer collection. Loads replace the
// collection wholesale; there is no incremental mutation path. All writes to
// the collection, the loading flag and the last error happen on the load
// completion path under one mutex, and when loads overlap the last one to
// complete wins.
type TerritoryService struct {
	parser  *dataprocessing.Parser
	store   SnapshotStore
	hub     Broadcaster
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	mu        sync.RWMutex
	customers []domain.Customer
	byNumber  map[string]int
	loaded    bool
	inFlight  int
	lastErr   error
	version   uint64

	// Analytics are memoized against the collection version, so a stale
	// cache is impossible and no manual invalidation exists.
	analyticsMu      sync.Mutex
	territoryVersion uint64
	territoryStats   map[domain.Territory]domain.TerritoryStats
	repVersion       uint64
	reps             []domain.SalesRepresentative
}

// NewTerritoryService constructs the service. Store, hub and metrics may be
// nil; persistence, notifications and instrumentation are then skipped.
func NewTerritoryService(parser *dataprocessing.Parser, store SnapshotStore, hub Broadcaster, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *TerritoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TerritoryService{
		parser:  parser,
		store:   store,
		hub:     hub,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "territory_service")),
	}
}

// Load ingests raw CSV text and replaces the collection on success. A run
// that yields zero customers is terminal: the collection is left untouched
// and the returned error summarizes the diagnostics. The parse result is
// returned in both cases so callers can surface row-level diagnostics.
func (s *TerritoryService) Load(ctx context.Context, csvText string) (*dataprocessing.ParseResult, error) {
	return s.load(ctx, "csv", func(ctx context.Context) (*dataprocessing.ParseResult, error) {
		return s.parser.Parse(ctx, csvText), nil
	})
}

// LoadReader ingests delimited text from a stream, same completion path as
// Load.
func (s *TerritoryService) LoadReader(ctx context.Context, r io.Reader) (*dataprocessing.ParseResult, error) {
	return s.load(ctx, "csv", func(ctx context.Context) (*dataprocessing.ParseResult, error) {
		return s.parser.ParseReader(ctx, r)
	})
}

// LoadWorkbook ingests an XLSX workbook from disk, same completion path as
// Load.
func (s *TerritoryService) LoadWorkbook(ctx context.Context, path string) (*dataprocessing.ParseResult, error) {
	return s.load(ctx, "workbook", func(ctx context.Context) (*dataprocessing.ParseResult, error) {
		return s.parser.ParseWorkbook(ctx, path)
	})
}

// LoadWorkbookReader ingests an XLSX workbook from a stream.
func (s *TerritoryService) LoadWorkbookReader(ctx context.Context, r io.Reader) (*dataprocessing.ParseResult, error) {
	return s.load(ctx, "workbook", func(ctx context.Context) (*dataprocessing.ParseResult, error) {
		return s.parser.ParseWorkbookReader(ctx, r)
	})
}

func (s *TerritoryService) load(ctx context.Context, source string, parse func(context.Context) (*dataprocessing.ParseResult, error)) (*dataprocessing.ParseResult, error) {
	tracer := otel.Tracer("salescli/services")
	ctx, span := tracer.Start(ctx, "territory.load",
		trace.WithAttributes(attribute.String("load.source", source)))
	defer span.End()

	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	start := time.Now()
	result, err := parse(ctx)
	if err != nil {
		s.completeLoad(ctx, source, start, nil, err)
		return nil, err
	}
	if len(result.Data) == 0 {
		err = fmt.Errorf("%w: %s", apperrors.ErrNoCustomers, result.ErrorSummary())
		s.completeLoad(ctx, source, start, result, err)
		return result, err
	}

	s.completeLoad(ctx, source, start, result, nil)
	return result, nil
}

// completeLoad is the single write path for collection state. On success it
// replaces the collection, bumps the version, persists the snapshot and
// notifies clients; on failure it records the error and leaves the previous
// dataset in place.
func (s *TerritoryService) completeLoad(ctx context.Context, source string, start time.Time, result *dataprocessing.ParseResult, err error) {
	rows, diagnostics, customers := 0, 0, 0
	if result != nil {
		rows = result.Meta.TotalRows
		diagnostics = len(result.Errors)
		customers = len(result.Data)
	}

	s.mu.Lock()
	s.inFlight--
	if err != nil {
		s.lastErr = err
	} else {
		s.customers = result.Data
		s.byNumber = indexByNumber(result.Data)
		s.loaded = true
		s.lastErr = nil
		s.version++
	}
	version := s.version
	s.mu.Unlock()

	infrastructure.RecordLoadMetrics(ctx, s.metrics, source, time.Since(start), rows, customers, diagnostics, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return
	}

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", source),
		slog.Int("customers", customers),
		slog.Int("rows", rows),
		slog.Int("diagnostics", diagnostics),
		slog.Uint64("version", version),
		slog.Duration("elapsed", time.Since(start)))

	if s.store != nil {
		if saveErr := s.store.Save(result.Data); saveErr != nil {
			// The in-memory dataset is already live; a failed snapshot only
			// costs the next restart a re-ingest.
			s.logger.WarnContext(ctx, "snapshot save failed",
				slog.String("error", saveErr.Error()))
		} else if s.metrics != nil {
			s.metrics.SnapshotSaves.Add(ctx, 1)
		}
	}

	s.broadcast("replaced", map[string]interface{}{
		"customers": customers,
		"version":   version,
	})
}

// LoadFromStorage restores the last persisted dataset. A missing or corrupt
// snapshot is "nothing to restore", not an error: the storage boundary
// reports (false, nil) and the caller proceeds with an empty collection.
func (s *TerritoryService) LoadFromStorage(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}

	snapshot, err := s.store.Load()
	if err != nil {
		if apperrors.IsSnapshotUnavailable(err) {
			s.logger.InfoContext(ctx, "no snapshot to restore",
				slog.String("reason", err.Error()))
			return false, nil
		}
		return false, err
	}

	s.mu.Lock()
	s.customers = snapshot.Customers
	s.byNumber = indexByNumber(snapshot.Customers)
	s.loaded = true
	s.lastErr = nil
	s.version++
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SnapshotLoads.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "dataset restored from snapshot",
		slog.Int("customers", len(snapshot.Customers)),
		slog.Time("saved_at", snapshot.SavedAt))

	return true, nil
}

// Clear empties the collection and removes the persisted snapshot.
func (s *TerritoryService) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.customers = nil
	s.byNumber = nil
	s.loaded = false
	s.lastErr = nil
	s.version++
	version := s.version
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(); err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "dataset cleared", slog.Uint64("version", version))
	s.broadcast("cleared", map[string]interface{}{"version": version})
	return nil
}

// Customers returns a snapshot copy of the collection in load order.
func (s *TerritoryService) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Customer(nil), s.customers...)
}

// CustomerCount returns the number of customers in the loaded dataset.
func (s *TerritoryService) CustomerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers)
}

// Customer returns the customer with the given number. It reports
// ErrNoDataset when nothing has been loaded and ErrCustomerUnknown when the
// number is absent from the loaded collection.
func (s *TerritoryService) Customer(number string) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return domain.Customer{}, apperrors.ErrNoDataset
	}
	idx, ok := s.byNumber[number]
	if !ok {
		return domain.Customer{}, fmt.Errorf("%w: %s", apperrors.ErrCustomerUnknown, number)
	}
	return s.customers[idx], nil
}

// CustomersInTerritory returns the loaded customers assigned to one
// territory, preserving load order.
func (s *TerritoryService) CustomersInTerritory(territory domain.Territory) []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Customer
	for _, c := range s.customers {
		if c.Territory == territory {
			out = append(out, c)
		}
	}
	return out
}

// Loaded reports whether a dataset is currently held in memory.
func (s *TerritoryService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Loading reports whether at least one load is in flight.
func (s *TerritoryService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// LastError returns the error from the most recent failed load, or nil after
// a successful load or clear.
func (s *TerritoryService) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Version returns the collection version. It increments on every replace,
// restore and clear.
func (s *TerritoryService) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// TerritoryAnalytics returns per-territory rollups, recomputed only when the
// collection version has moved since the last call.
func (s *TerritoryService) TerritoryAnalytics() map[domain.Territory]domain.TerritoryStats {
	s.analyticsMu.Lock()
	defer s.analyticsMu.Unlock()

	version := s.Version()
	if s.territoryStats == nil || s.territoryVersion != version {
		s.territoryStats = dataprocessing.TerritoryStats(s.Customers())
		s.territoryVersion = version
	}
	return s.territoryStats
}

// RepresentativeAnalytics returns per-representative rollups, memoized the
// same way as TerritoryAnalytics.
func (s *TerritoryService) RepresentativeAnalytics() []domain.SalesRepresentative {
	s.analyticsMu.Lock()
	defer s.analyticsMu.Unlock()

	version := s.Version()
	if s.reps == nil || s.repVersion != version {
		s.reps = dataprocessing.SalesRepresentatives(s.Customers())
		s.repVersion = version
	}
	return s.reps
}

func (s *TerritoryService) broadcast(action string, data interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastUpdate("dataset", "collection", action, data)
}

func indexByNumber(customers []domain.Customer) map[string]int {
	idx := make(map[string]int, len(customers))
	for i, c := range customers {
		idx[c.CustomerNumber] = i
	}
	return idx
}
