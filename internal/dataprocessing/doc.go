// Package dataprocessing implements the ingestion pipeline for territory
// sales exports: header classification, row grouping, customer aggregation,
// and the derived analytics and search views.
//
// # Architecture
//
// Data flows one way through four stages:
//
//	raw text → classified rows → grouped rows → aggregated customers → (analytics, search)
//
// 1. Headers: NormalizeHeader canonicalizes column names; DetectQuarterColumns
// recognizes quarterly-period columns in four formats.
//
// 2. Parser: tokenizes the export, validates required columns, skips
// summary rows, and groups data rows by the customer number extracted from
// the account name.
//
// 3. Aggregator: merges each group into one Customer. Brand-keyed quarterly
// sales merge additively, notes merge last-write-wins, and the territory is
// inferred from the business address.
//
// 4. Analytics and Search are pure functions over whatever customer slice
// the caller holds; they keep no state and recompute on every call.
//
// # Error Handling
//
// Row- and group-level problems are diagnostics inside ParseResult, not Go
// errors: a bad row or a failing customer group never aborts the rest of
// the run. Only a missing required column or a tokenizer failure is fatal,
// and even those are reported through the result contract as a single
// error with an empty dataset.
//
// Dynamic, string-indexed row access is confined to this package; everything
// downstream works with the typed domain.Customer record.
package dataprocessing
