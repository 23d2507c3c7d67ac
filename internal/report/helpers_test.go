package report

import (
	"testing"
	"time"

	"stationreports/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(expected).Equal(got), append([]any{"expected %s, got %s", expected, got.String()}, msgAndArgs...)...)
}

func day(s string) time.Time {
	parsed, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return parsed
}

func at(s string) time.Time {
	parsed, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return parsed
}

func price(fuelID int64, name, effective, selling, purchase string) domain.PriceSnapshot {
	return domain.PriceSnapshot{
		FuelTypeID:    fuelID,
		FuelName:      name,
		SellingPrice:  dec(selling),
		PurchasePrice: dec(purchase),
		EffectiveDate: day(effective),
	}
}

func reading(id, fuelID int64, name, when, volume string) domain.MeterReading {
	return domain.MeterReading{
		ID:         id,
		PumpID:     1,
		FuelTypeID: fuelID,
		FuelName:   name,
		ReadingAt:  at(when),
		Volume:     dec(volume),
	}
}

func rangeFilter(start, end string) Filter {
	return Filter{
		PeriodType: domain.PeriodDaily,
		StartDate:  day(start),
		EndDate:    day(end),
		Location:   time.UTC,
	}
}
