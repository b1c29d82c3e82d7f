package dataprocessing

import (
	"salescli/pkg/contracts/domain"
)

// Analytics derives territory and representative rollups from a snapshot of
// the customer collection. Every method is a pure function of the input
// slice: derivations are recomputed from whatever collection the caller
// holds, with no cache of their own.

// GroupByTerritory partitions customers by territory, preserving the
// collection order within each bucket. Returns the buckets plus the
// territory keys in first-seen order. A customer with an empty territory
// lands in its own "" bucket rather than being dropped.
func GroupByTerritory(customers []domain.Customer) (map[domain.Territory][]domain.Customer, []domain.Territory) {
	buckets := make(map[domain.Territory][]domain.Customer)
	var order []domain.Territory
	for _, c := range customers {
		if _, seen := buckets[c.Territory]; !seen {
			order = append(order, c.Territory)
		}
		buckets[c.Territory] = append(buckets[c.Territory], c)
	}
	return buckets, order
}

// GroupBySalesRep partitions customers by representative, preserving the
// collection order within each bucket. A customer with an empty rep lands
// in its own "" bucket.
func GroupBySalesRep(customers []domain.Customer) (map[string][]domain.Customer, []string) {
	buckets := make(map[string][]domain.Customer)
	var order []string
	for _, c := range customers {
		if _, seen := buckets[c.SalesRep]; !seen {
			order = append(order, c.SalesRep)
		}
		buckets[c.SalesRep] = append(buckets[c.SalesRep], c)
	}
	return buckets, order
}

// TerritoryStats computes per-territory rollups: customer count, summed
// sales, promo-target count and the top brand by summed sales. Brand ties,
// including the all-zero case, resolve by the fixed precedence
// DAXXIFY > RHA > SkinPen.
func TerritoryStats(customers []domain.Customer) map[domain.Territory]domain.TerritoryStats {
	buckets, _ := GroupByTerritory(customers)

	stats := make(map[domain.Territory]domain.TerritoryStats, len(buckets))
	for territory, bucket := range buckets {
		var totalSales float64
		var promoTargets int
		brandSales := make(map[domain.Brand]float64, len(domain.Brands))

		for _, c := range bucket {
			totalSales += c.TotalSales
			if c.IsQ3PromoTarget {
				promoTargets++
			}
			for _, brand := range domain.Brands {
				brandSales[brand] += c.SalesData.ForBrand(brand).Total()
			}
		}

		top := domain.Brands[0]
		for _, brand := range domain.Brands[1:] {
			if brandSales[brand] > brandSales[top] {
				top = brand
			}
		}

		stats[territory] = domain.TerritoryStats{
			CustomerCount:  len(bucket),
			TotalSales:     totalSales,
			Q3PromoTargets: promoTargets,
			TopProduct:     top,
		}
	}
	return stats
}

// SalesRepresentatives computes per-rep rollups in first-seen rep order:
// summed sales plus the rep's territories deduplicated in first-seen order
// across their customers.
func SalesRepresentatives(customers []domain.Customer) []domain.SalesRepresentative {
	buckets, order := GroupBySalesRep(customers)

	reps := make([]domain.SalesRepresentative, 0, len(order))
	for _, name := range order {
		bucket := buckets[name]

		var totalSales float64
		seen := make(map[domain.Territory]bool)
		var territories []domain.Territory
		for _, c := range bucket {
			totalSales += c.TotalSales
			if !seen[c.Territory] {
				seen[c.Territory] = true
				territories = append(territories, c.Territory)
			}
		}

		reps = append(reps, domain.SalesRepresentative{
			Name:        name,
			Customers:   bucket,
			TotalSales:  totalSales,
			Territories: territories,
		})
	}
	return reps
}
