package dataprocessing

import (
	"strings"

	"salescli/pkg/contracts/domain"
)

// SearchFilters holds the structured predicates applied over the customer
// collection. Nil/empty fields are inactive; active filters are ANDed.
// IsQ3PromoTarget is tri-state: unset, require-true or require-false.
type SearchFilters struct {
	Territory       domain.Territory `json:"territory,omitempty"`
	SalesRep        string           `json:"salesRep,omitempty"`
	IsQ3PromoTarget *bool            `json:"isQ3PromoTarget,omitempty"`
	MinSales        *float64         `json:"minSales,omitempty"`
	MaxSales        *float64         `json:"maxSales,omitempty"`
}

// Active reports whether any structured filter is set.
func (f SearchFilters) Active() bool {
	return f.Territory != "" || f.SalesRep != "" ||
		f.IsQ3PromoTarget != nil || f.MinSales != nil || f.MaxSales != nil
}

// matches applies the ANDed structured predicates to one customer.
func (f SearchFilters) matches(c domain.Customer) bool {
	if f.Territory != "" && c.Territory != f.Territory {
		return false
	}
	if f.SalesRep != "" && c.SalesRep != f.SalesRep {
		return false
	}
	if f.IsQ3PromoTarget != nil && c.IsQ3PromoTarget != *f.IsQ3PromoTarget {
		return false
	}
	if f.MinSales != nil && c.TotalSales < *f.MinSales {
		return false
	}
	if f.MaxSales != nil && c.TotalSales > *f.MaxSales {
		return false
	}
	return true
}

// matchesQuery applies the case-insensitive text predicate: a customer
// matches when the query is a substring of account name, customer number,
// sales rep or business address.
func matchesQuery(c domain.Customer, query string) bool {
	return strings.Contains(strings.ToLower(c.AccountName), query) ||
		strings.Contains(strings.ToLower(c.CustomerNumber), query) ||
		strings.Contains(strings.ToLower(c.SalesRep), query) ||
		strings.Contains(strings.ToLower(c.BusinessAddress), query)
}

// Search applies the text query and structured filters over the collection.
// The query is trimmed and lowercased; empty or whitespace disables text
// filtering. The result preserves the collection's order (stable filter,
// no secondary sort).
func Search(customers []domain.Customer, query string, filters SearchFilters) []domain.Customer {
	q := strings.ToLower(strings.TrimSpace(query))

	results := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		if q != "" && !matchesQuery(c, q) {
			continue
		}
		if !filters.matches(c) {
			continue
		}
		results = append(results, c)
	}
	return results
}
