// Package exporter renders the aggregated territory dataset as CSV, either
// streamed straight to an HTTP response or written under the exports
// directory. File exports carry a UTF-8 BOM so Excel opens them with the
// right encoding.
package exporter
