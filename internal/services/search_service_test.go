package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/internal/dataprocessing"
	"salescli/pkg/contracts/domain"
)

func newSearchFixture(t *testing.T) *SearchService {
	t.Helper()
	territory := NewTerritoryService(dataprocessing.NewParser(testLogger()), nil, nil, nil, testLogger())
	_, err := territory.Load(context.Background(), sampleCSV)
	require.NoError(t, err)
	return NewSearchService(territory, nil)
}

func customerNumbers(customers []domain.Customer) []string {
	numbers := make([]string, 0, len(customers))
	for _, c := range customers {
		numbers = append(numbers, c.CustomerNumber)
	}
	return numbers
}

func TestSearchService_NoActiveSearchReturnsAll(t *testing.T) {
	svc := newSearchFixture(t)

	assert.False(t, svc.HasActiveSearch())
	assert.Equal(t, []string{"CN246670", "CN111111"}, customerNumbers(svc.Results(context.Background())))
}

func TestSearchService_Query(t *testing.T) {
	svc := newSearchFixture(t)

	svc.SetQuery("  4eymed  ")
	assert.Equal(t, "4eymed", svc.Query())
	assert.True(t, svc.HasActiveSearch())
	assert.Equal(t, []string{"CN246670"}, customerNumbers(svc.Results(context.Background())))

	// Whitespace clears the query.
	svc.SetQuery("   ")
	assert.False(t, svc.HasActiveSearch())
}

func TestSearchService_SetFilter(t *testing.T) {
	svc := newSearchFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SetFilter(FilterSalesRep, "Kim Coates"))
	assert.Equal(t, []string{"CN111111"}, customerNumbers(svc.Results(ctx)))

	require.NoError(t, svc.SetFilter(FilterMinSales, "2000"))
	assert.Equal(t, []string{"CN111111"}, customerNumbers(svc.Results(ctx)))

	require.NoError(t, svc.SetFilter(FilterMinSales, "6000"))
	assert.Empty(t, svc.Results(ctx))

	// Empty value clears a single filter.
	require.NoError(t, svc.SetFilter(FilterMinSales, ""))
	require.NoError(t, svc.SetFilter(FilterSalesRep, ""))
	assert.False(t, svc.HasActiveSearch())
}

func TestSearchService_TerritoryFilter(t *testing.T) {
	svc := newSearchFixture(t)

	require.NoError(t, svc.SetFilter(FilterTerritory, "littleton"))
	assert.Equal(t, []string{"CN111111"}, customerNumbers(svc.Results(context.Background())))

	err := svc.SetFilter(FilterTerritory, "narnia")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown territory")
}

func TestSearchService_PromoTargetFilter(t *testing.T) {
	svc := newSearchFixture(t)

	require.NoError(t, svc.SetFilter(FilterQ3PromoTarget, "false"))
	assert.Len(t, svc.Results(context.Background()), 2)

	require.NoError(t, svc.SetFilter(FilterQ3PromoTarget, "true"))
	assert.Empty(t, svc.Results(context.Background()))

	assert.Error(t, svc.SetFilter(FilterQ3PromoTarget, "maybe"))
}

func TestSearchService_InvalidInputLeavesStateUnchanged(t *testing.T) {
	svc := newSearchFixture(t)

	require.NoError(t, svc.SetFilter(FilterMinSales, "1000"))
	assert.Error(t, svc.SetFilter(FilterMinSales, "abc"))
	assert.Error(t, svc.SetFilter("unknownKey", "v"))

	filters := svc.Filters()
	require.NotNil(t, filters.MinSales)
	assert.Equal(t, 1000.0, *filters.MinSales)
}

func TestSearchService_ClearFiltersKeepsQuery(t *testing.T) {
	svc := newSearchFixture(t)

	svc.SetQuery("derm")
	require.NoError(t, svc.SetFilter(FilterSalesRep, "Kaiti Green"))

	svc.ClearFilters()
	assert.Equal(t, "derm", svc.Query())
	assert.False(t, svc.Filters().Active())
	assert.True(t, svc.HasActiveSearch())

	svc.ClearAll()
	assert.False(t, svc.HasActiveSearch())
}

func TestSearchService_ResultsTrackReload(t *testing.T) {
	territory := NewTerritoryService(dataprocessing.NewParser(testLogger()), nil, nil, nil, testLogger())
	svc := NewSearchService(territory, nil)
	ctx := context.Background()

	svc.SetQuery("4eymed")
	assert.Empty(t, svc.Results(ctx), "nothing loaded yet")

	_, err := territory.Load(ctx, sampleCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"CN246670"}, customerNumbers(svc.Results(ctx)))

	require.NoError(t, territory.Clear(ctx))
	assert.Empty(t, svc.Results(ctx))
}
