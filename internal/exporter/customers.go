package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"salescli/pkg/contracts/domain"
)

// customerHeaders is the column order of the customer export.
var customerHeaders = []string{
	"Customer Number",
	"Account Name",
	"Sales Rep",
	"Territory",
	"Business Address",
	"DAXXIFY Sales",
	"RHA Sales",
	"SkinPen Sales",
	"Total Sales",
	"Q3 Promo Target",
	"Notes",
	"Contact",
}

// WriteCustomers streams the aggregated collection as CSV. It is used both
// for file exports and for serving the download endpoint directly from the
// response writer.
func WriteCustomers(w io.Writer, customers []domain.Customer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(customerHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, c := range customers {
		if err := writer.Write(customerRecord(c)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func customerRecord(c domain.Customer) []string {
	return []string{
		c.CustomerNumber,
		c.AccountName,
		c.SalesRep,
		string(c.Territory),
		c.BusinessAddress,
		formatFloat(c.SalesData.Daxxify.Total()),
		formatFloat(c.SalesData.RHA.Total()),
		formatFloat(c.SalesData.SkinPen.Total()),
		formatFloat(c.TotalSales),
		formatBool(c.IsQ3PromoTarget),
		c.Notes.General,
		c.Notes.Contact,
	}
}

// ExportCustomers writes the customer export to a file under the exports
// directory.
func (w *CSVWriter) ExportCustomers(filePath string, customers []domain.Customer) error {
	records := make([][]string, 0, len(customers))
	for _, c := range customers {
		records = append(records, customerRecord(c))
	}
	return w.WriteSimpleCSV(filePath, customerHeaders, records)
}
