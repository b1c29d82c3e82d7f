package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook ingests an XLSX territory export. Territory files are
// spreadsheet exports first and CSV second, so the workbook path feeds the
// same classification and aggregation core as Parse.
func (p *Parser) ParseWorkbook(ctx context.Context, path string) (*ParseResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return p.parseWorkbookFile(ctx, f)
}

// ParseWorkbookReader is the streamed variant of ParseWorkbook, used by the
// HTTP upload path.
func (p *Parser) ParseWorkbookReader(ctx context.Context, r io.Reader) (*ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return p.parseWorkbookFile(ctx, f)
}

func (p *Parser) parseWorkbookFile(ctx context.Context, f *excelize.File) (*ParseResult, error) {
	header, records, sheetName, err := findDataSheet(f)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "found territory data sheet",
		slog.String("sheet_name", sheetName),
		slog.Int("total_rows", len(records)))

	return p.parseRows(ctx, header, records), nil
}

// findDataSheet probes the workbook's sheets for one whose first non-empty
// row carries the required columns. Exports occasionally carry title or
// legend sheets ahead of the data, so every sheet is tried in order. When
// no sheet qualifies, the first non-empty sheet is returned so the parse
// core reports MISSING_COLUMNS through the normal result contract.
func findDataSheet(f *excelize.File) (header []string, records [][]string, sheetName string, err error) {
	var fallbackHeader []string
	var fallbackRecords [][]string
	var fallbackName string

	for _, name := range f.GetSheetList() {
		rows, rowsErr := f.GetRows(name)
		if rowsErr != nil || len(rows) == 0 {
			continue
		}

		// Skip leading blank rows before the header.
		start := 0
		for start < len(rows) && isEmptyRow(rows[start]) {
			start++
		}
		if start >= len(rows) {
			continue
		}

		if len(missingRequiredColumns(rows[start])) == 0 {
			return rows[start], rows[start+1:], name, nil
		}
		if fallbackName == "" {
			fallbackHeader, fallbackRecords, fallbackName = rows[start], rows[start+1:], name
		}
	}

	if fallbackName != "" {
		return fallbackHeader, fallbackRecords, fallbackName, nil
	}
	return nil, nil, "", fmt.Errorf("workbook contains no data sheets")
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
