package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"salescli/pkg/contracts/domain"
)

var territoryStatsHeaders = []string{
	"Territory",
	"Customers",
	"Total Sales",
	"Q3 Promo Targets",
	"Top Product",
}

// WriteTerritoryStats streams per-territory rollups as CSV in the fixed
// domain territory order, skipping territories with no customers.
func WriteTerritoryStats(w io.Writer, stats map[domain.Territory]domain.TerritoryStats) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(territoryStatsHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, territory := range domain.Territories {
		ts, ok := stats[territory]
		if !ok {
			continue
		}
		record := []string{
			string(territory),
			formatInt(int64(ts.CustomerCount)),
			formatFloat(ts.TotalSales),
			formatInt(int64(ts.Q3PromoTargets)),
			string(ts.TopProduct),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record for %s: %w", territory, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportTerritoryStats writes the territory rollup export to a file under
// the exports directory.
func (w *CSVWriter) ExportTerritoryStats(filePath string, stats map[domain.Territory]domain.TerritoryStats) error {
	records := make([][]string, 0, len(stats))
	for _, territory := range domain.Territories {
		ts, ok := stats[territory]
		if !ok {
			continue
		}
		records = append(records, []string{
			string(territory),
			formatInt(int64(ts.CustomerCount)),
			formatFloat(ts.TotalSales),
			formatInt(int64(ts.Q3PromoTargets)),
			string(ts.TopProduct),
		})
	}
	return w.WriteSimpleCSV(filePath, territoryStatsHeaders, records)
}
