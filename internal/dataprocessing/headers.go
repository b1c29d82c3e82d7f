package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"

	"salescli/pkg/contracts/domain"
)

// Canonical column names after header normalization. Everything beyond the
// named columns is scanned for quarter-period patterns.
const (
	colSalesRep    = "pac"
	colAccountName = "account_name"
	colAddress     = "address"
	colBrand       = "brand"
	colGeneralNote = "notes"
	colContactName = "contact"
	colNextSteps   = "next_steps"
	colProductNote = "skinpen_notes"
)

// requiredColumns must all be present after normalization or the parse is
// fatal. The display names are what the MISSING_COLUMNS message reports.
var requiredColumns = []struct {
	normalized string
	display    string
}{
	{colSalesRep, "PAC"},
	{colBrand, "Brand"},
}

// headerAliases maps normalized source spellings onto canonical names.
// The account-name column has appeared as "I", "Account Name (CN)" and
// "Account Name CN" across territory exports.
var headerAliases = map[string]string{
	"i":               colAccountName,
	"account_name_cn": colAccountName,
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader canonicalizes a column header: lowercase, runs of
// non-alphanumerics collapsed to a single underscore, separators trimmed
// from both ends, then known aliases applied.
func NormalizeHeader(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	normalized = nonAlnumRe.ReplaceAllString(normalized, "_")
	normalized = strings.Trim(normalized, "_")
	if canonical, ok := headerAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// missingRequiredColumns returns the display names of required columns not
// present in the normalized header set.
func missingRequiredColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[NormalizeHeader(h)] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col.normalized] {
			missing = append(missing, col.display)
		}
	}
	return missing
}

// QuarterColumn pairs a source header with its canonical period key.
type QuarterColumn struct {
	Original     string `json:"original"`
	Standardized string `json:"standardized"`

	// normalized is the row lookup key for this column.
	normalized string
}

// quarterPatterns are tried in order against each header; first match wins.
// Index 0 is the two-digit-year form ("2Q24"), index 1 the quarter-first
// form ("Q2 2024"), the rest are year-first ("2024-Q2", "2024Q2").
var quarterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d)[Qq](\d{2})$`),
	regexp.MustCompile(`^[Qq](\d)\s*(\d{4})$`),
	regexp.MustCompile(`^(\d{4})-[Qq](\d)$`),
	regexp.MustCompile(`^(\d{4})[Qq](\d)$`),
}

// ParseQuarterHeader classifies a single header as a quarter column,
// returning the canonical "YYYY-Qn" key. A candidate is accepted only when
// the quarter is 1-4 and the year falls in [2020,2030].
func ParseQuarterHeader(header string) (string, bool) {
	trimmed := strings.TrimSpace(header)

	for i, pattern := range quarterPatterns {
		m := pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		var year, quarter int
		switch i {
		case 0:
			quarter, _ = strconv.Atoi(m[1])
			yy, _ := strconv.Atoi(m[2])
			year = 2000 + yy
		case 1:
			quarter, _ = strconv.Atoi(m[1])
			year, _ = strconv.Atoi(m[2])
		default:
			year, _ = strconv.Atoi(m[1])
			quarter, _ = strconv.Atoi(m[2])
		}

		if quarter < 1 || quarter > 4 || year < 2020 || year > 2030 {
			return "", false
		}
		key, err := domain.PeriodKey(year, quarter)
		if err != nil {
			return "", false
		}
		return key, true
	}

	return "", false
}

// DetectQuarterColumns scans headers in appearance order and returns the
// recognized quarter columns. The output order is header order, not sorted.
func DetectQuarterColumns(headers []string) []QuarterColumn {
	var columns []QuarterColumn
	for _, header := range headers {
		if key, ok := ParseQuarterHeader(header); ok {
			columns = append(columns, QuarterColumn{
				Original:     strings.TrimSpace(header),
				Standardized: key,
				normalized:   NormalizeHeader(header),
			})
		}
	}
	return columns
}
