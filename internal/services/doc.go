// Package services implements the business logic layer between the HTTP
// handlers and the data processing pipeline.
//
// TerritoryService owns the in-memory customer collection: loads replace it
// wholesale, a snapshot persists it across restarts, and analytics are
// memoized against a version counter that moves on every replace, restore
// and clear. SearchService layers query and filter state on top and
// recomputes results from the live collection on every read. HealthService
// answers probes.
//
// Services are constructed explicitly with their dependencies injected:
//
//	parser := dataprocessing.NewParser(logger)
//	store := files.NewSnapshotStore(cfg.GetSnapshotPath(), logger)
//	territory := services.NewTerritoryService(parser, store, hub, metrics, logger)
//	search := services.NewSearchService(territory, metrics)
//
// All service methods that can block accept a context.Context; reads return
// snapshots and never block behind an in-flight load.
package services
