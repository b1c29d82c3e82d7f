package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Territory represents one of the six fixed geographic sales regions.
type Territory string

const (
	TerritoryColoradoSpringsNorth   Territory = "colorado-springs-north"
	TerritoryColoradoSpringsSouth   Territory = "colorado-springs-south"
	TerritoryColoradoSpringsCentral Territory = "colorado-springs-central"
	TerritoryHighlandsRanch         Territory = "highlands-ranch"
	TerritoryLittleton              Territory = "littleton"
	TerritoryCastleRock             Territory = "castle-rock"
)

// Territories lists all territories. The order matters: the no-address
// fallback in the aggregator indexes into this slice by hash.
var Territories = []Territory{
	TerritoryColoradoSpringsNorth,
	TerritoryColoradoSpringsCentral,
	TerritoryColoradoSpringsSouth,
	TerritoryHighlandsRanch,
	TerritoryLittleton,
	TerritoryCastleRock,
}

// IsValid reports whether t is one of the six known territories.
func (t Territory) IsValid() bool {
	for _, known := range Territories {
		if t == known {
			return true
		}
	}
	return false
}

// Brand represents one of the three tracked product lines.
type Brand string

const (
	BrandDaxxify Brand = "DAXXIFY"
	BrandRHA     Brand = "RHA"
	BrandSkinPen Brand = "SkinPen"
)

// Brands lists the tracked brands in tie-break precedence order: when two
// brands carry equal sales the earlier entry wins.
var Brands = []Brand{BrandDaxxify, BrandRHA, BrandSkinPen}

var periodKeyRe = regexp.MustCompile(`^(\d{4})-Q([1-4])$`)

// PeriodKey builds the canonical "YYYY-Qn" key for a year and quarter.
func PeriodKey(year, quarter int) (string, error) {
	if quarter < 1 || quarter > 4 {
		return "", fmt.Errorf("invalid quarter: %d, must be 1-4", quarter)
	}
	return fmt.Sprintf("%d-Q%d", year, quarter), nil
}

// ParsePeriodKey splits a canonical period key into year and quarter.
// Returns ok=false for anything that is not of the form "YYYY-Qn".
func ParsePeriodKey(key string) (year, quarter int, ok bool) {
	m := periodKeyRe.FindStringSubmatch(key)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	quarter, _ = strconv.Atoi(m[2])
	return year, quarter, true
}

// QuarterlySales holds positive sales amounts keyed by canonical period key.
// A period with no recorded sales is absent from the map, never stored as 0.
type QuarterlySales struct {
	SalesByPeriod map[string]float64 `json:"salesByPeriod"`
}

// NewQuarterlySales returns an empty, non-nil sales map.
func NewQuarterlySales() QuarterlySales {
	return QuarterlySales{SalesByPeriod: map[string]float64{}}
}

// Total sums the amounts across all periods.
func (q QuarterlySales) Total() float64 {
	var sum float64
	for _, amount := range q.SalesByPeriod {
		sum += amount
	}
	return sum
}

// TotalForYear sums the amounts for every quarter of the given year.
func (q QuarterlySales) TotalForYear(year int) float64 {
	var sum float64
	for key, amount := range q.SalesByPeriod {
		if y, _, ok := ParsePeriodKey(key); ok && y == year {
			sum += amount
		}
	}
	return sum
}

// ForQuarter returns the amount stored for a year/quarter, zero if absent.
func (q QuarterlySales) ForQuarter(year, quarter int) float64 {
	key, err := PeriodKey(year, quarter)
	if err != nil {
		return 0
	}
	return q.SalesByPeriod[key]
}

// Periods returns the period keys sorted lexicographically, which for
// canonical keys is chronological order.
func (q QuarterlySales) Periods() []string {
	keys := make([]string, 0, len(q.SalesByPeriod))
	for key := range q.SalesByPeriod {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Latest returns the most recent period and its amount. ok is false when no
// periods are recorded.
func (q QuarterlySales) Latest() (period string, amount float64, ok bool) {
	keys := q.Periods()
	if len(keys) == 0 {
		return "", 0, false
	}
	period = keys[len(keys)-1]
	return period, q.SalesByPeriod[period], true
}

// GrowthRate returns the percentage change between two periods. ok is false
// when either period is missing or the base amount is zero.
func (q QuarterlySales) GrowthRate(fromPeriod, toPeriod string) (float64, bool) {
	from, fromExists := q.SalesByPeriod[fromPeriod]
	to, toExists := q.SalesByPeriod[toPeriod]
	if !fromExists || !toExists || from == 0 {
		return 0, false
	}
	return (to - from) / from * 100, true
}

// CustomerNotes carries the free-text note fields from the source export.
type CustomerNotes struct {
	General string `json:"general,omitempty"`
	Contact string `json:"contact,omitempty"`
	Product string `json:"product,omitempty"`
}

// SalesData groups quarterly sales per brand.
type SalesData struct {
	Daxxify QuarterlySales `json:"daxxify"`
	RHA     QuarterlySales `json:"rha"`
	SkinPen QuarterlySales `json:"skinPen"`
}

// NewSalesData returns sales data with all three brand maps initialized.
func NewSalesData() SalesData {
	return SalesData{
		Daxxify: NewQuarterlySales(),
		RHA:     NewQuarterlySales(),
		SkinPen: NewQuarterlySales(),
	}
}

// ForBrand returns the quarterly sales for a brand.
func (s SalesData) ForBrand(brand Brand) QuarterlySales {
	switch brand {
	case BrandDaxxify:
		return s.Daxxify
	case BrandRHA:
		return s.RHA
	case BrandSkinPen:
		return s.SkinPen
	}
	return QuarterlySales{}
}

// Total sums every amount across all brands and periods.
func (s SalesData) Total() float64 {
	return s.Daxxify.Total() + s.RHA.Total() + s.SkinPen.Total()
}

// Customer is the canonical aggregated record produced by one ingestion run.
// CustomerNumber ("CN" + 6 digits) is the unique key within a dataset.
type Customer struct {
	ID              string        `json:"id"`
	CustomerNumber  string        `json:"customerNumber" validate:"required"`
	AccountName     string        `json:"accountName" validate:"required"`
	BusinessAddress string        `json:"businessAddress"`
	SalesRep        string        `json:"salesRep" validate:"required"`
	Territory       Territory     `json:"territory"`
	Notes           CustomerNotes `json:"notes"`
	SalesData       SalesData     `json:"salesData"`
	IsQ3PromoTarget bool          `json:"isQ3PromoTarget"`
	TotalSales      float64       `json:"totalSales"`
}

// RecomputeTotal re-derives TotalSales from the brand maps. TotalSales is
// never mutated independently; every producer calls this after changing
// SalesData.
func (c *Customer) RecomputeTotal() {
	c.TotalSales = c.SalesData.Total()
}

// TerritoryStats is the per-territory rollup derived from the live
// customer collection.
type TerritoryStats struct {
	CustomerCount  int     `json:"customerCount"`
	TotalSales     float64 `json:"totalSales"`
	Q3PromoTargets int     `json:"q3PromoTargets"`
	TopProduct     Brand   `json:"topProduct"`
}

// SalesRepresentative is the per-representative rollup.
type SalesRepresentative struct {
	Name        string      `json:"name"`
	Customers   []Customer  `json:"customers"`
	TotalSales  float64     `json:"totalSales"`
	Territories []Territory `json:"territories"`
}
