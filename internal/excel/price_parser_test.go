package excel

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseFuelPriceRows_CSV(t *testing.T) {
	input := "\ufeffFuel Type,Selling_Price,Purchase Price,Effective Date\n" +
		"Diesel,\"1,250.50\",1100,2026-03-01\n" +
		"  Premium   Petrol ,$1400,1250,2026/03/05\n" +
		"Diesel,\"1,250.50\",1100,2026-03-01\n" +
		",,,\n"

	rows, err := ParseFuelPriceRows("prices.csv", strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Diesel", rows[0].FuelName)
	assert.True(t, rows[0].SellingPrice.Equal(decimal.RequireFromString("1250.50")))
	assert.True(t, rows[0].PurchasePrice.Equal(decimal.RequireFromString("1100")))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), rows[0].EffectiveDate)
	assert.Equal(t, 2, rows[0].Row)

	assert.Equal(t, "Premium Petrol", rows[1].FuelName)
	assert.True(t, rows[1].SellingPrice.Equal(decimal.RequireFromString("1400")))
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), rows[1].EffectiveDate)
}

func TestParseFuelPriceRows_Workbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Fuel", "Price", "Cost", "Date"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Diesel", "1300", "1150", "2026-04-01"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	loc := time.FixedZone("UTC+3", 3*60*60)
	rows, err := ParseFuelPriceRows("prices.xlsx", buf, loc)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Diesel", rows[0].FuelName)
	assert.True(t, rows[0].SellingPrice.Equal(decimal.NewFromInt(1300)))
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, loc), rows[0].EffectiveDate)
}

func TestParseFuelPriceRows_Errors(t *testing.T) {
	_, err := ParseFuelPriceRows("prices.csv", strings.NewReader(""), nil)
	assert.EqualError(t, err, "input file is empty")

	_, err = ParseFuelPriceRows("prices.csv", strings.NewReader("fuel,price,date\nDiesel,1,2026-01-01\n"), nil)
	assert.EqualError(t, err, "missing required column: purchase_price")

	_, err = ParseFuelPriceRows("prices.csv", strings.NewReader("fuel,price,cost,date\nDiesel,-1,1,2026-01-01\n"), nil)
	assert.EqualError(t, err, "row 2 invalid selling_price: price cannot be negative")

	_, err = ParseFuelPriceRows("prices.csv", strings.NewReader("fuel,price,cost,date\nDiesel,1,1,yesterday\n"), nil)
	assert.ErrorContains(t, err, "row 2 invalid effective_date")
}

func TestParseDate_WorkbookSerial(t *testing.T) {
	got, err := parseDate("46082", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)
}
