package dataprocessing

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"salescli/pkg/contracts/domain"
)

var (
	customerKeyRe     = regexp.MustCompile(`\(CN(\d{6})\)`)
	accountSuffixRe   = regexp.MustCompile(`\s*\(CN\d{6}\)\s*$`)
	moneyCharFilterRe = regexp.MustCompile(`[^0-9.\-]`)
)

// extractCustomerKey pulls the canonical "CN" + 6-digit identifier from the
// parenthetical suffix in a raw account name.
func extractCustomerKey(accountName string) (string, bool) {
	m := customerKeyRe.FindStringSubmatch(accountName)
	if m == nil {
		return "", false
	}
	return "CN" + m[1], true
}

// cleanAccountName strips the "(CNxxxxxx)" suffix from an account name.
func cleanAccountName(accountName string) string {
	return strings.TrimSpace(accountSuffixRe.ReplaceAllString(accountName, ""))
}

// normalizeBrand matches a raw brand value against the three known product
// lines, case-insensitively. Unrecognized brands return ok=false and the
// caller skips that row's monetary columns without a diagnostic.
func normalizeBrand(raw string) (domain.Brand, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DAXXIFY":
		return domain.BrandDaxxify, true
	case "RHA":
		return domain.BrandRHA, true
	case "SKINPEN":
		return domain.BrandSkinPen, true
	}
	return "", false
}

// parseAmount strips everything except digits, '.' and '-' and parses the
// remainder. Non-numeric or empty input yields 0.
func parseAmount(value string) float64 {
	cleaned := moneyCharFilterRe.ReplaceAllString(value, "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}

// aggregator merges per-customer row groups into canonical Customer records.
type aggregator struct {
	logger *slog.Logger
}

func newAggregator(logger *slog.Logger) *aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &aggregator{logger: logger.With(slog.String("component", "aggregator"))}
}

// processGroup merges one customer's rows. Identity comes from the first
// row; sales merge additively across rows. A panic while merging is
// converted to an error so a malformed group never takes down the run.
func (a *aggregator) processGroup(key string, rows []row, quarterColumns []QuarterColumn) (customer domain.Customer, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("aggregation panic for %s: %v", key, rec)
		}
	}()

	if len(rows) == 0 {
		return domain.Customer{}, fmt.Errorf("empty row group for %s", key)
	}

	first := rows[0]
	accountName := cleanAccountName(first.get(colAccountName))

	salesByBrand := map[domain.Brand]domain.QuarterlySales{}
	for _, r := range rows {
		brand, ok := normalizeBrand(r.get(colBrand))
		if !ok {
			continue
		}

		sales, exists := salesByBrand[brand]
		if !exists {
			sales = domain.NewQuarterlySales()
		}
		for _, qc := range quarterColumns {
			value := r.get(qc.normalized)
			if value == "" {
				continue
			}
			// Only strictly positive amounts are stored; a zero or a
			// parse failure leaves the period key absent.
			if amount := parseAmount(value); amount > 0 {
				sales.SalesByPeriod[qc.Standardized] += amount
			}
		}
		salesByBrand[brand] = sales
	}

	salesData := domain.NewSalesData()
	if s, ok := salesByBrand[domain.BrandDaxxify]; ok {
		salesData.Daxxify = s
	}
	if s, ok := salesByBrand[domain.BrandRHA]; ok {
		salesData.RHA = s
	}
	if s, ok := salesByBrand[domain.BrandSkinPen]; ok {
		salesData.SkinPen = s
	}

	address := first.get(colAddress)
	businessAddress := address
	if businessAddress == "" {
		// No geocoding: synthesize a documented placeholder from the
		// account name.
		businessAddress = accountName + ", Colorado"
	}

	customer = domain.Customer{
		ID:              strings.ToLower(key),
		CustomerNumber:  key,
		AccountName:     accountName,
		BusinessAddress: businessAddress,
		SalesRep:        first.get(colSalesRep),
		Territory:       inferTerritory(accountName, address),
		Notes:           extractNotes(rows),
		SalesData:       salesData,
		IsQ3PromoTarget: determineQ3PromoTarget(rows),
	}
	customer.RecomputeTotal()

	return customer, nil
}

// extractNotes merges the note fields across a group's rows, last write
// wins per field. The contact note composes the next-steps and contact-name
// values when a row carries both.
func extractNotes(rows []row) domain.CustomerNotes {
	var notes domain.CustomerNotes
	for _, r := range rows {
		if general := r.get(colGeneralNote); general != "" {
			notes.General = general
		}
		if contact := composeContactNote(r.get(colNextSteps), r.get(colContactName)); contact != "" {
			notes.Contact = contact
		}
		if product := r.get(colProductNote); product != "" {
			notes.Product = product
		}
	}
	return notes
}

// composeContactNote combines a next-steps value and a contact name into one
// note. With both present the fixed template "{nextSteps}. Contact: {name}"
// applies; with one, only that part is used.
func composeContactNote(nextSteps, contactName string) string {
	switch {
	case nextSteps != "" && contactName != "":
		return fmt.Sprintf("%s. Contact: %s", nextSteps, contactName)
	case nextSteps != "":
		return nextSteps
	case contactName != "":
		return contactName
	}
	return ""
}

// Colorado Springs sub-territory indicators. Checked before the south
// default inside the Colorado Springs branch.
var (
	springsNorthMarkers   = []string{"academy", "austin bluffs", "research", "80918", "80920"}
	springsCentralMarkers = []string{"nevada", "80907", "downtown", "tejon"}
)

// inferTerritory assigns a territory from the business address using
// priority-ordered substring tests. Without any address it falls back to a
// deterministic hash of the account name, which is a stand-in for real
// geocoding and is preserved for compatibility.
func inferTerritory(accountName, address string) domain.Territory {
	if address == "" {
		var hash int
		for _, c := range accountName {
			hash += int(c)
		}
		return domain.Territories[hash%len(domain.Territories)]
	}

	addr := strings.ToLower(address)

	switch {
	case strings.Contains(addr, "highlands ranch"):
		return domain.TerritoryHighlandsRanch
	case strings.Contains(addr, "littleton"):
		return domain.TerritoryLittleton
	case strings.Contains(addr, "castle rock"), strings.Contains(addr, "castle pines"):
		return domain.TerritoryCastleRock
	}

	if strings.Contains(addr, "colorado springs") {
		for _, marker := range springsNorthMarkers {
			if strings.Contains(addr, marker) {
				return domain.TerritoryColoradoSpringsNorth
			}
		}
		for _, marker := range springsCentralMarkers {
			if strings.Contains(addr, marker) {
				return domain.TerritoryColoradoSpringsCentral
			}
		}
		return domain.TerritoryColoradoSpringsSouth
	}

	return domain.TerritoryColoradoSpringsCentral
}

// determineQ3PromoTarget is a stable placeholder: the eligibility rule is an
// unresolved business question, so every customer reports false.
func determineQ3PromoTarget(rows []row) bool {
	return false
}
