package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/pkg/contracts/domain"
)

const sampleHeader = "PAC,Account Name (CN),Address,CITY,CONTACT ,NOTES,Next Steps,SkinPen Notes,Brand,1Q24,2Q24,3Q24,4Q24,1Q25,2Q25"

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestParse_SingleCustomer(t *testing.T) {
	csvText := "PAC,Account Name (CN),Address,Brand,2Q24\n" +
		`Kaiti Green,4EYMED LLC (CN246670),9249 Highlands Rd hts #140 Colorado Springs 80920,SKINPEN,"$1,632"`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Empty(t, result.Errors)
	require.Len(t, result.Data, 1)
	assert.Equal(t, 1, result.Meta.TotalRows)
	assert.Equal(t, 1, result.Meta.ValidRows)
	assert.Equal(t, []QuarterColumn{
		{Original: "2Q24", Standardized: "2024-Q2", normalized: "2q24"},
	}, result.Meta.QuarterColumns)

	c := result.Data[0]
	assert.Equal(t, "CN246670", c.CustomerNumber)
	assert.Equal(t, "cn246670", c.ID)
	assert.Equal(t, "4EYMED LLC", c.AccountName)
	assert.Equal(t, "Kaiti Green", c.SalesRep)
	assert.Equal(t, map[string]float64{"2024-Q2": 1632}, c.SalesData.SkinPen.SalesByPeriod)
	assert.Equal(t, float64(1632), c.TotalSales)
	assert.False(t, c.IsQ3PromoTarget)
}

func TestParse_MultiBrandAggregation(t *testing.T) {
	csvText := sampleHeader + "\n" +
		`Kaiti Green,MedSpa Solutions (CN123456),123 Main St Denver CO 80202,Denver,John Doe,,,,DAXXIFY,"$5,000","$6,000",,"$4,500",,` + "\n" +
		`Kaiti Green,MedSpa Solutions (CN123456),123 Main St Denver CO 80202,Denver,John Doe,,,,RHA,"$2,000","$2,500",,"$3,000",,` + "\n" +
		`Kaiti Green,MedSpa Solutions (CN123456),123 Main St Denver CO 80202,Denver,John Doe,,,,SKINPEN,"$1,000","$1,200",,"$800",,`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Empty(t, result.Errors)
	require.Len(t, result.Data, 1, "rows with one customer key coalesce into one record")

	c := result.Data[0]
	assert.Equal(t, "CN123456", c.CustomerNumber)
	assert.Equal(t, "MedSpa Solutions", c.AccountName)
	assert.Equal(t, map[string]float64{"2024-Q1": 5000, "2024-Q2": 6000, "2024-Q4": 4500}, c.SalesData.Daxxify.SalesByPeriod)
	assert.Equal(t, map[string]float64{"2024-Q1": 2000, "2024-Q2": 2500, "2024-Q4": 3000}, c.SalesData.RHA.SalesByPeriod)
	assert.Equal(t, map[string]float64{"2024-Q1": 1000, "2024-Q2": 1200, "2024-Q4": 800}, c.SalesData.SkinPen.SalesByPeriod)
	assert.Equal(t, float64(26000), c.TotalSales)
}

func TestParse_SameBrandPeriodsSum(t *testing.T) {
	csvText := "PAC,Account Name (CN),Brand,1Q24,2Q24\n" +
		`Kaiti Green,Repeat Clinic (CN111111),SKINPEN,"$100",` + "\n" +
		`Kaiti Green,Repeat Clinic (CN111111),SKINPEN,"$250","$75"`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Empty(t, result.Errors)
	require.Len(t, result.Data, 1)
	assert.Equal(t, map[string]float64{"2024-Q1": 350, "2024-Q2": 75}, result.Data[0].SalesData.SkinPen.SalesByPeriod)
	assert.Equal(t, float64(425), result.Data[0].TotalSales)
}

func TestParse_MissingRequiredColumns(t *testing.T) {
	csvText := "Name,Address,Contact\nTest Business,123 Main St,John Doe"

	result := newTestParser(t).Parse(context.Background(), csvText)

	assert.Empty(t, result.Data)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeMissingColumns, result.Errors[0].Code)
	assert.Contains(t, result.Errors[0].Message, "Missing required columns")
	assert.Contains(t, result.Errors[0].Message, "Brand")
	assert.True(t, result.HasFatalError())
}

func TestParse_TokenizerFailure(t *testing.T) {
	// Unterminated quote in the header row.
	result := newTestParser(t).Parse(context.Background(), `PAC,"Account`)

	assert.Empty(t, result.Data)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeParseError, result.Errors[0].Code)
	assert.True(t, result.HasFatalError())
}

func TestParse_UnknownSalesRep(t *testing.T) {
	csvText := "PAC,Account Name (CN),Brand,1Q24\n" +
		`Unknown Rep,Test Clinic (CN111111),SKINPEN,"$1,000"` + "\n" +
		`Kaiti Green,Valid Clinic (CN222222),SKINPEN,"$1,000"`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeInvalidSalesRep, result.Errors[0].Code)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "Unknown Rep")

	// The flagged row is still aggregated.
	require.Len(t, result.Data, 2)
	assert.Equal(t, "Unknown Rep", result.Data[0].SalesRep)
}

func TestParse_InvalidCustomerNumber(t *testing.T) {
	csvText := "PAC,Account Name (CN),Brand,1Q24\n" +
		`Kaiti Green,No Number Clinic,SKINPEN,"$500"` + "\n" +
		`Kaiti Green,Short Number (CN1234),SKINPEN,"$500"` + "\n" +
		`Kaiti Green,Valid Clinic (CN222222),SKINPEN,"$1,000"`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Len(t, result.Errors, 2)
	for _, e := range result.Errors {
		assert.Equal(t, CodeInvalidCustomerNumber, e.Code)
	}
	// Dropped rows, not dropped parse.
	require.Len(t, result.Data, 1)
	assert.Equal(t, "CN222222", result.Data[0].CustomerNumber)
}

func TestParse_SkipsTotalAndIncompleteRows(t *testing.T) {
	csvText := "PAC,Account Name (CN),Brand,1Q24\n" +
		`Kaiti Green,Valid Clinic (CN111111),SKINPEN,"$1,000"` + "\n" +
		`,Total,,"$9,999"` + "\n" +
		`Kaiti Green,Subtotal West (CN999999),SKINPEN,"$123"` + "\n" +
		`,Orphan Row (CN333333),SKINPEN,"$500"` + "\n" +
		`Kaiti Green,Another Valid (CN222222),SKINPEN,"$1,500"`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Empty(t, result.Errors)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "CN111111", result.Data[0].CustomerNumber)
	assert.Equal(t, "CN222222", result.Data[1].CustomerNumber)
}

func TestParse_FirstSeenOrderPreserved(t *testing.T) {
	csvText := "PAC,Account Name (CN),Brand,1Q24\n" +
		`Kaiti Green,Clinic B (CN222222),SKINPEN,"$1"` + "\n" +
		`Kaiti Green,Clinic A (CN111111),SKINPEN,"$1"` + "\n" +
		`Kaiti Green,Clinic B (CN222222),RHA,"$1"` + "\n" +
		`Kaiti Green,Clinic C (CN333333),SKINPEN,"$1"`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Len(t, result.Data, 3)
	numbers := []string{
		result.Data[0].CustomerNumber,
		result.Data[1].CustomerNumber,
		result.Data[2].CustomerNumber,
	}
	assert.Equal(t, []string{"CN222222", "CN111111", "CN333333"}, numbers)
}

func TestParse_Deterministic(t *testing.T) {
	csvText := sampleHeader + "\n" +
		`Kaiti Green,Test Customer (CN123456),123 Test St,Test City,Dr. Test,,,,SKINPEN,"$1,000","$1,500",,,,` + "\n" +
		`Unknown Rep,Other Clinic (CN654321),456 Oak St,Denver,,,,,RHA,"$200",,,,,`

	parser := newTestParser(t)
	first := parser.Parse(context.Background(), csvText)
	second := parser.Parse(context.Background(), csvText)

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, first.Meta, second.Meta)
}

func TestParse_TotalSalesInvariant(t *testing.T) {
	csvText := sampleHeader + "\n" +
		`Kaiti Green,Multi Brand (CN123456),123 Test St,Test City,Dr. Test,,,,DAXXIFY,"$1,000","$1,500",,,,` + "\n" +
		`Kaiti Green,Multi Brand (CN123456),123 Test St,Test City,Dr. Test,,,,RHA,"$500","$750",,,,` + "\n" +
		`Kaiti Green,Multi Brand (CN123456),123 Test St,Test City,Dr. Test,,,,SKINPEN,"$300","$400",,,,` + "\n" +
		`Bobbie Koon,Solo Spa (CN777777),80918 Academy Blvd Colorado Springs,Colorado Springs,,,,,SKINPEN,"$42",,,,,`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Empty(t, result.Errors)
	for _, c := range result.Data {
		assert.Equal(t, c.SalesData.Total(), c.TotalSales,
			"totalSales must equal the sum across all brands and periods for %s", c.CustomerNumber)
	}

	multi := result.Data[0]
	assert.Equal(t, float64(4450), multi.TotalSales)
	assert.Equal(t, float64(2500), multi.SalesData.Daxxify.Total())
	assert.Equal(t, float64(1250), multi.SalesData.RHA.Total())
	assert.Equal(t, float64(700), multi.SalesData.SkinPen.Total())
}

func TestParse_NotesComposition(t *testing.T) {
	csvText := sampleHeader + "\n" +
		`Kaiti Green,Noted Clinic (CN111111),123 Main St,Denver,Christine Bradley,Can be a good client,Follow up in July,Prefers afternoon demos,SKINPEN,"$100",,,,,`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Len(t, result.Data, 1)
	notes := result.Data[0].Notes
	assert.Equal(t, "Can be a good client", notes.General)
	assert.Equal(t, "Follow up in July. Contact: Christine Bradley", notes.Contact)
	assert.Equal(t, "Prefers afternoon demos", notes.Product)
}

func TestParse_NotesLastWriteWins(t *testing.T) {
	csvText := sampleHeader + "\n" +
		`Kaiti Green,Repeat Clinic (CN111111),123 Main St,Denver,,First note,,,DAXXIFY,"$100",,,,,` + "\n" +
		`Kaiti Green,Repeat Clinic (CN111111),123 Main St,Denver,Jane Roe,Second note,,,RHA,"$100",,,,,`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Len(t, result.Data, 1)
	notes := result.Data[0].Notes
	assert.Equal(t, "Second note", notes.General)
	// Contact name alone, no next-steps part.
	assert.Equal(t, "Jane Roe", notes.Contact)
}

func TestParse_UnrecognizedBrandSkipped(t *testing.T) {
	csvText := "PAC,Account Name (CN),Brand,1Q24\n" +
		`Kaiti Green,Mixed Clinic (CN111111),SKINPEN,"$1,000"` + "\n" +
		`Kaiti Green,Mixed Clinic (CN111111),BOTOX,"$9,999"`

	result := newTestParser(t).Parse(context.Background(), csvText)

	// Unknown brand: monetary columns silently skipped, no diagnostic.
	require.Empty(t, result.Errors)
	require.Len(t, result.Data, 1)
	assert.Equal(t, float64(1000), result.Data[0].TotalSales)
}

func TestParse_EmptyInput(t *testing.T) {
	result := newTestParser(t).Parse(context.Background(), "")

	assert.Empty(t, result.Data)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeParseError, result.Errors[0].Code)
}

func TestParse_TerritoryAssignment(t *testing.T) {
	csvText := "PAC,Account Name (CN),Address,Brand,1Q24\n" +
		`Kaiti Green,North Springs Clinic (CN111111),1234 Academy Blvd Colorado Springs 80918,SKINPEN,"$1,000"` + "\n" +
		`Kaiti Green,Central Springs Med (CN222222),5678 Nevada Ave Colorado Springs 80907,SKINPEN,"$1,000"` + "\n" +
		`Kaiti Green,South Springs Spa (CN333333),9012 Broadmoor Colorado Springs 80906,SKINPEN,"$1,000"` + "\n" +
		`Kaiti Green,Highlands Clinic (CN444444),2468 Highlands Ranch Parkway Highlands Ranch 80129,SKINPEN,"$1,000"` + "\n" +
		`Kaiti Green,Littleton Med (CN555555),1357 Main St Littleton 80120,SKINPEN,"$1,000"` + "\n" +
		`Kaiti Green,Castle Rock Clinic (CN666666),8642 Castle Pines Dr Castle Rock 80108,SKINPEN,"$1,000"`

	result := newTestParser(t).Parse(context.Background(), csvText)

	require.Empty(t, result.Errors)
	require.Len(t, result.Data, 6)

	byNumber := map[string]domain.Territory{}
	for _, c := range result.Data {
		byNumber[c.CustomerNumber] = c.Territory
	}
	assert.Equal(t, domain.TerritoryColoradoSpringsNorth, byNumber["CN111111"])
	assert.Equal(t, domain.TerritoryColoradoSpringsCentral, byNumber["CN222222"])
	assert.Equal(t, domain.TerritoryColoradoSpringsSouth, byNumber["CN333333"])
	assert.Equal(t, domain.TerritoryHighlandsRanch, byNumber["CN444444"])
	assert.Equal(t, domain.TerritoryLittleton, byNumber["CN555555"])
	assert.Equal(t, domain.TerritoryCastleRock, byNumber["CN666666"])
}
