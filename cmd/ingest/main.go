package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"salescli/internal/config"
	"salescli/internal/dataprocessing"
	"salescli/internal/exporter"
	"salescli/internal/files"
	"salescli/internal/infrastructure"
	"salescli/internal/validation"
)

func main() {
	file := flag.String("file", "", "territory sales file to ingest (.csv or .xlsx); defaults to the newest file in the uploads directory")
	dir := flag.String("dir", "", "directory to scan for territory files when -file is not set (defaults to data/uploads)")
	out := flag.String("out", "", "output csv file path (defaults to data/exports/customers.csv)")
	stats := flag.Bool("stats", false, "also write per-territory statistics next to the customer export")
	save := flag.Bool("save", false, "save the parsed dataset as the server snapshot")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if *dir == "" {
		*dir = paths.UploadsDir
	}
	if *out == "" {
		*out = paths.GetExportPath("customers.csv")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.Output = "console"
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	validator := validation.NewFileValidator(logger)

	if *file == "" {
		if err := validator.ValidateInputDirectory(*dir, ""); err != nil {
			logger.Error("Input directory validation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		found, err := pickLatestFile(*dir)
		if err != nil {
			logger.Error("No territory file to ingest",
				slog.String("dir", *dir),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		*file = found
	}

	logger.Info("Starting territory ingestion",
		slog.String("input_file", *file),
		slog.String("output_file", *out),
		slog.Bool("save_snapshot", *save))

	if err := validator.ValidateDatasetFile(*file); err != nil {
		logger.Error("Input file validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(filepath.Dir(*out)); err != nil {
		logger.Error("Output directory validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := infrastructure.ContextWithTraceID(context.Background())
	parser := dataprocessing.NewParser(logger)

	var result *dataprocessing.ParseResult
	switch strings.ToLower(filepath.Ext(*file)) {
	case ".xlsx":
		result, err = parser.ParseWorkbook(ctx, *file)
	default:
		var f *os.File
		f, err = os.Open(*file)
		if err == nil {
			result, err = parser.ParseReader(ctx, f)
			f.Close()
		}
	}
	if err != nil {
		logger.Error("Failed to parse input file",
			slog.String("file", *file),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	if reason, failed := ingestFailure(result); failed {
		logger.Error("Input file rejected", slog.String("reason", reason))
		fmt.Fprintf(os.Stderr, "ingest failed: %s\n", reason)
		os.Exit(1)
	}

	for _, diag := range result.Errors {
		logger.Warn("Row diagnostic",
			slog.String("code", diag.Code),
			slog.String("message", diag.Message))
	}

	writer := exporter.NewCSVWriter(paths)
	if err := writer.ExportCustomers(*out, result.Data); err != nil {
		logger.Error("Failed to write customer export",
			slog.String("path", *out),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *stats {
		statsPath := filepath.Join(filepath.Dir(*out), "territories.csv")
		territoryStats := dataprocessing.TerritoryStats(result.Data)
		if err := writer.ExportTerritoryStats(statsPath, territoryStats); err != nil {
			logger.Error("Failed to write territory stats",
				slog.String("path", statsPath),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Territory statistics written",
			slog.String("path", statsPath),
			slog.Int("territories", len(territoryStats)))
	}

	if *save {
		store := files.NewSnapshotStore(cfg.GetSnapshotPath(), logger)
		if err := store.Save(result.Data); err != nil {
			logger.Error("Failed to save snapshot", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Snapshot saved", slog.String("path", store.Path()))
	}

	logger.Info("Territory ingestion completed",
		slog.Int("customers", len(result.Data)),
		slog.Int("diagnostics", len(result.Errors)),
		slog.String("output_path", *out))

	fmt.Printf("Ingested %d customers (%d diagnostics) from %s\n",
		len(result.Data), len(result.Errors), filepath.Base(*file))
}

// ingestFailure reports the terminal failure reason for a parse run. A fatal
// diagnostic is terminal, and so is a run that produced no customers at all,
// even when every row was dropped with only warning-level diagnostics: an
// empty export is never written.
func ingestFailure(result *dataprocessing.ParseResult) (string, bool) {
	if result.HasFatalError() {
		return result.ErrorSummary(), true
	}
	if len(result.Data) == 0 {
		reason := result.ErrorSummary()
		if reason == "" {
			reason = "file contains no data rows"
		}
		return "no valid customers: " + reason, true
	}
	return "", false
}

// pickLatestFile returns the most recently modified territory file in dir.
func pickLatestFile(dir string) (string, error) {
	discovery := files.NewDiscovery(dir)
	found, err := discovery.FindTerritoryFiles(dir)
	if err != nil {
		return "", err
	}
	latest, ok := files.GetLatestFile(found)
	if !ok {
		return "", fmt.Errorf("no territory files found in %s", dir)
	}
	return latest.Path, nil
}
