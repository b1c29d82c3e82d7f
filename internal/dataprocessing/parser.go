package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"salescli/pkg/contracts/domain"
)

// Diagnostic codes reported in ParseResult.Errors. MISSING_COLUMNS and
// PARSE_ERROR are fatal: the result carries an empty dataset and exactly one
// error. The remaining codes are warnings and processing continues.
const (
	CodeMissingColumns          = "MISSING_COLUMNS"
	CodeInvalidSalesRep         = "INVALID_SALES_REP"
	CodeInvalidCustomerNumber   = "INVALID_CUSTOMER_NUMBER"
	CodeCustomerProcessingError = "CUSTOMER_PROCESSING_ERROR"
	CodeParseError              = "PARSE_ERROR"
)

// knownSalesReps is the fixed list of recognized territory representatives.
// A rep outside this list produces an INVALID_SALES_REP warning; the row is
// still aggregated.
var knownSalesReps = map[string]bool{
	"Bobbie Koon":           true,
	"Brooklynne Woolslayer": true,
	"Heather McGlory":       true,
	"Kaiti Green":           true,
	"Kaleigh Humphrey":      true,
	"Kim Coates":            true,
	"Kimberly McMurray":     true,
	"Victoria Greene":       true,
	"Wendy Shepherd":        true,
}

// ParseError is a single ingestion diagnostic. Row is the 1-based source
// line (header included), 0 for file-level errors.
type ParseError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ParseMeta describes an ingestion run.
type ParseMeta struct {
	TotalRows      int             `json:"totalRows"`
	ValidRows      int             `json:"validRows"`
	QuarterColumns []QuarterColumn `json:"quarterColumns"`
}

// ParseResult is the complete outcome of one ingestion run. Fatal failures
// are represented as an empty Data slice plus a single error; diagnostics
// are part of the result contract, not Go errors.
type ParseResult struct {
	Data   []domain.Customer `json:"data"`
	Errors []ParseError      `json:"errors"`
	Meta   ParseMeta         `json:"meta"`
}

// HasFatalError reports whether the run aborted before aggregation.
func (r *ParseResult) HasFatalError() bool {
	for _, e := range r.Errors {
		if e.Code == CodeMissingColumns || e.Code == CodeParseError {
			return true
		}
	}
	return false
}

// ErrorSummary joins all diagnostic messages for terminal reporting.
func (r *ParseResult) ErrorSummary() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, ", ")
}

// row is a single source record confined to the ingestion boundary: values
// keyed by normalized header. Beyond the parser only the strongly-shaped
// Customer record travels.
type row struct {
	values map[string]string
	// num is the 1-based source line the row came from.
	num int
}

func (r row) get(col string) string {
	return r.values[col]
}

// customerGroup preserves first-seen order of customer keys; row order
// within the group is source order.
type customerGroup struct {
	key  string
	rows []row
}

// Parser ingests delimited territory exports into aggregated customers.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger falls back to slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "parser"))}
}

// Parse ingests raw CSV text with a header row and returns the complete
// result. Parsing identical input twice yields a structurally identical
// result.
func (p *Parser) Parse(ctx context.Context, csvText string) *ParseResult {
	reader := csv.NewReader(strings.NewReader(csvText))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return p.fatal(ctx, CodeParseError, fmt.Sprintf("failed to read header row: %v", err))
	}

	records, err := reader.ReadAll()
	if err != nil {
		return p.fatal(ctx, CodeParseError, fmt.Sprintf("failed to tokenize input: %v", err))
	}

	return p.parseRows(ctx, header, records)
}

// ParseReader is a convenience wrapper over Parse for streamed inputs.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return p.Parse(ctx, string(data)), nil
}

// parseRows runs classification, grouping and aggregation over pre-split
// rows. The workbook front-end feeds this directly.
func (p *Parser) parseRows(ctx context.Context, header []string, records [][]string) *ParseResult {
	quarterColumns := DetectQuarterColumns(header)

	if missing := missingRequiredColumns(header); len(missing) > 0 {
		p.logger.WarnContext(ctx, "required columns absent",
			slog.Any("missing", missing))
		result := p.fatal(ctx, CodeMissingColumns,
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")))
		result.Meta.QuarterColumns = quarterColumns
		return result
	}

	result := &ParseResult{
		Data:   []domain.Customer{},
		Errors: []ParseError{},
		Meta: ParseMeta{
			TotalRows:      len(records),
			QuarterColumns: quarterColumns,
		},
	}

	groups := p.groupRows(header, records, result)

	aggregator := newAggregator(p.logger)
	for _, group := range groups {
		customer, err := aggregator.processGroup(group.key, group.rows, quarterColumns)
		if err != nil {
			// One bad group never aborts the others.
			result.Errors = append(result.Errors, ParseError{
				Row:     group.rows[0].num,
				Message: fmt.Sprintf("Failed to process customer: %v", err),
				Code:    CodeCustomerProcessingError,
			})
			continue
		}
		result.Data = append(result.Data, customer)
	}

	result.Meta.ValidRows = len(result.Data)

	p.logger.InfoContext(ctx, "ingestion complete",
		slog.Int("total_rows", result.Meta.TotalRows),
		slog.Int("customers", len(result.Data)),
		slog.Int("diagnostics", len(result.Errors)),
		slog.Int("quarter_columns", len(quarterColumns)))

	return result
}

// groupRows partitions the data rows into per-customer groups, recording
// row-level diagnostics on the result as it goes.
func (p *Parser) groupRows(header []string, records [][]string, result *ParseResult) []customerGroup {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = NormalizeHeader(h)
	}

	grouped := make(map[string]int)
	var groups []customerGroup

	for i, record := range records {
		r := row{values: make(map[string]string, len(record)), num: i + 2}
		for j, value := range record {
			if j < len(normalized) {
				r.values[normalized[j]] = strings.TrimSpace(value)
			}
		}

		accountName := r.get(colAccountName)
		salesRep := r.get(colSalesRep)

		// Summary/footer rows and rows without an identity are skipped
		// silently.
		if isTotalRow(accountName) || salesRep == "" || accountName == "" {
			continue
		}

		if !knownSalesReps[salesRep] {
			result.Errors = append(result.Errors, ParseError{
				Row:     r.num,
				Field:   colSalesRep,
				Message: fmt.Sprintf("Unknown sales representative: %s", salesRep),
				Code:    CodeInvalidSalesRep,
			})
		}

		key, ok := extractCustomerKey(accountName)
		if !ok {
			result.Errors = append(result.Errors, ParseError{
				Row:     r.num,
				Field:   colAccountName,
				Message: fmt.Sprintf("Could not extract customer number from: %s", accountName),
				Code:    CodeInvalidCustomerNumber,
			})
			continue
		}

		idx, seen := grouped[key]
		if !seen {
			idx = len(groups)
			grouped[key] = idx
			groups = append(groups, customerGroup{key: key})
		}
		groups[idx].rows = append(groups[idx].rows, r)
	}

	return groups
}

func (p *Parser) fatal(ctx context.Context, code, message string) *ParseResult {
	p.logger.ErrorContext(ctx, "ingestion aborted",
		slog.String("code", code),
		slog.String("message", message))
	return &ParseResult{
		Data: []domain.Customer{},
		Errors: []ParseError{{
			Row:     0,
			Message: message,
			Code:    code,
		}},
		Meta: ParseMeta{QuarterColumns: []QuarterColumn{}},
	}
}

// isTotalRow identifies summary/footer rows by the substring "total" in the
// account-name field.
func isTotalRow(accountName string) bool {
	return strings.Contains(strings.ToLower(accountName), "total")
}
