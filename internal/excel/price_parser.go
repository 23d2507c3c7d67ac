package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// FuelPriceRow is one price sheet line before the fuel name is resolved.
type FuelPriceRow struct {
	Row           int
	FuelName      string
	SellingPrice  decimal.Decimal
	PurchasePrice decimal.Decimal
	EffectiveDate time.Time
}

var headerAliases = map[string]string{
	"fuel":           "fuel",
	"fuel type":      "fuel",
	"fuel name":      "fuel",
	"product":        "fuel",
	"selling price":  "selling_price",
	"sell price":     "selling_price",
	"sale price":     "selling_price",
	"price":          "selling_price",
	"purchase price": "purchase_price",
	"buy price":      "purchase_price",
	"cost":           "purchase_price",
	"cost price":     "purchase_price",
	"effective date": "effective_date",
	"effective from": "effective_date",
	"date":           "effective_date",
	"price date":     "effective_date",
	"valid from":     "effective_date",
	"effective":      "effective_date",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"2006-01-02 15:04:05",
}

// ParseFuelPriceRows reads a price sheet from an .xlsx or .csv file. Files
// with another extension are tried as a workbook first, then as CSV.
func ParseFuelPriceRows(fileName string, reader io.Reader, loc *time.Location) ([]FuelPriceRow, error) {
	if loc == nil {
		loc = time.UTC
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}

	switch strings.ToLower(strings.TrimSpace(filepath.Ext(fileName))) {
	case ".csv":
		rows, err := parseCSVRows(data)
		if err != nil {
			return nil, err
		}
		return parsePriceTable(rows, loc)
	case ".xlsx", ".xlsm":
		rows, err := parseExcelRows(data)
		if err != nil {
			return nil, err
		}
		return parsePriceTable(rows, loc)
	default:
		if rows, err := parseExcelRows(data); err == nil {
			if parsed, err := parsePriceTable(rows, loc); err == nil {
				return parsed, nil
			}
		}
		if rows, err := parseCSVRows(data); err == nil {
			if parsed, err := parsePriceTable(rows, loc); err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("unsupported or invalid price file format")
	}
}

func parseCSVRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}
	return rows, nil
}

func parseExcelRows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}
	return rows, nil
}

func parsePriceTable(rows [][]string, loc *time.Location) ([]FuelPriceRow, error) {
	colMap := mapColumns(rows[0])
	for _, required := range []string{"fuel", "selling_price", "purchase_price", "effective_date"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := make([]FuelPriceRow, 0, len(rows)-1)
	seen := make(map[string]struct{}, len(rows))
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := cleanText(readCell(cells, colMap["fuel"]))
		if name == "" {
			continue
		}
		selling, err := parsePrice(readCell(cells, colMap["selling_price"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid selling_price: %w", index+1, err)
		}
		purchase, err := parsePrice(readCell(cells, colMap["purchase_price"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid purchase_price: %w", index+1, err)
		}
		effective, err := parseDate(readCell(cells, colMap["effective_date"]), loc)
		if err != nil {
			return nil, fmt.Errorf("row %d invalid effective_date: %w", index+1, err)
		}

		key := strings.ToLower(name) + "|" + effective.Format("2006-01-02") + "|" + selling.String() + "|" + purchase.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, FuelPriceRow{
			Row:           index + 1,
			FuelName:      name,
			SellingPrice:  selling,
			PurchasePrice: purchase,
			EffectiveDate: effective,
		})
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("file has no valid price rows")
	}
	return result, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	return strings.Join(strings.Fields(value), " ")
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func cleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func parsePrice(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	value = strings.ReplaceAll(value, ",", "")
	value = strings.TrimLeft(value, "$€£ ")
	if value == "" {
		return decimal.Zero, fmt.Errorf("value is empty")
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number")
	}
	if parsed.IsNegative() {
		return decimal.Zero, fmt.Errorf("price cannot be negative")
	}
	return parsed, nil
}

// parseDate accepts the text layouts above or a raw workbook date serial.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("value is empty")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		parsed, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
