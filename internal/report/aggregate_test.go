package report

import (
	"testing"

	"stationreports/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLostProfit(t *testing.T) {
	assertDecimal(t, "5000", LostProfit(dec("500"), dec("100"), dec("90")))
	assertDecimal(t, "0", LostProfit(dec("500"), dec("100"), dec("110")))
	assertDecimal(t, "0", LostProfit(dec("500"), dec("100"), dec("100")))
}

func TestAggregate_PriceDecreaseProducesLostProfit(t *testing.T) {
	book := NewPriceBook([]domain.PriceSnapshot{
		price(1, "Diesel", "2026-01-01", "100", "80"),
		price(1, "Diesel", "2026-03-01", "90", "80"),
	})
	readings := []domain.MeterReading{
		reading(1, 1, "Diesel", "2026-03-02 10:00", "300"),
		reading(2, 1, "Diesel", "2026-03-02 16:00", "200"),
	}

	periods := Aggregate(readings, book, domain.PeriodDaily, rangeFilter("2026-03-01", "2026-03-31"))
	require.Len(t, periods, 1)

	p := periods[0]
	assert.Equal(t, "2026-03-02", p.PeriodKey)
	require.Len(t, p.Fuels, 1)
	fuel := p.Fuels[0]
	assertDecimal(t, "500", fuel.TotalVolume)
	assertDecimal(t, "90", fuel.SellingPrice)
	assertDecimal(t, "100", fuel.PreviousPrice)
	assertDecimal(t, "45000", fuel.TotalRevenue)
	assertDecimal(t, "5000", fuel.TotalProfit)
	assertDecimal(t, "5000", fuel.LostProfit)
	assertDecimal(t, "5000", p.Totals.LostProfit)
}

func TestAggregate_PriceIncreaseHasNoLostProfit(t *testing.T) {
	book := NewPriceBook([]domain.PriceSnapshot{
		price(1, "Diesel", "2026-01-01", "100", "80"),
		price(1, "Diesel", "2026-03-01", "110", "80"),
	})
	readings := []domain.MeterReading{reading(1, 1, "Diesel", "2026-03-02 10:00", "500")}

	periods := Aggregate(readings, book, domain.PeriodDaily, rangeFilter("2026-03-01", "2026-03-31"))
	require.Len(t, periods, 1)
	assertDecimal(t, "0", periods[0].Totals.LostProfit)
	assertDecimal(t, "15000", periods[0].Totals.TotalProfit)
}

func TestAggregate_ResolvesPricePerReadingInsideBucket(t *testing.T) {
	book := NewPriceBook([]domain.PriceSnapshot{
		price(1, "Diesel", "2026-01-01", "100", "80"),
		price(1, "Diesel", "2026-03-04", "90", "80"),
	})
	// Both readings fall in ISO week 2026-W10 (Mon 2026-03-02).
	readings := []domain.MeterReading{
		reading(2, 1, "Diesel", "2026-03-05 09:00", "100"),
		reading(1, 1, "Diesel", "2026-03-02 09:00", "100"),
	}

	periods := Aggregate(readings, book, domain.PeriodWeekly, rangeFilter("2026-03-01", "2026-03-31"))
	require.Len(t, periods, 1)
	assert.Equal(t, "2026-W10", periods[0].PeriodKey)
	assert.Equal(t, day("2026-03-02"), periods[0].PeriodDate)

	fuel := periods[0].Fuels[0]
	// 100*100 + 100*90
	assertDecimal(t, "19000", fuel.TotalRevenue)
	// only the second reading follows a decrease
	assertDecimal(t, "1000", fuel.LostProfit)
	// bucket shows the price of the latest reading
	assertDecimal(t, "90", fuel.SellingPrice)
}

func TestAggregate_MissingPriceMeansNoLoss(t *testing.T) {
	readings := []domain.MeterReading{reading(1, 3, "Kerosene", "2026-03-02 09:00", "40")}

	periods := Aggregate(readings, NewPriceBook(nil), domain.PeriodDaily, rangeFilter("2026-03-01", "2026-03-31"))
	require.Len(t, periods, 1)
	fuel := periods[0].Fuels[0]
	assertDecimal(t, "40", fuel.TotalVolume)
	assertDecimal(t, "0", fuel.TotalRevenue)
	assertDecimal(t, "0", fuel.LostProfit)
	assert.True(t, fuel.PreviousPrice.Equal(fuel.SellingPrice))
}

func TestAggregate_SellingBelowCostIsNegativeProfit(t *testing.T) {
	book := NewPriceBook([]domain.PriceSnapshot{price(1, "Diesel", "2026-01-01", "70", "80")})
	readings := []domain.MeterReading{reading(1, 1, "Diesel", "2026-03-02 09:00", "10")}

	periods := Aggregate(readings, book, domain.PeriodDaily, rangeFilter("2026-03-01", "2026-03-31"))
	require.Len(t, periods, 1)
	assertDecimal(t, "-100", periods[0].Totals.TotalProfit)
}

func TestAggregate_OrderingAndGaps(t *testing.T) {
	book := NewPriceBook([]domain.PriceSnapshot{
		price(1, "Petrol", "2026-01-01", "120", "100"),
		price(2, "Diesel", "2026-01-01", "100", "80"),
	})
	readings := []domain.MeterReading{
		reading(1, 1, "Petrol", "2026-03-10 09:00", "10"),
		reading(2, 2, "Diesel", "2026-03-10 10:00", "20"),
		reading(3, 1, "Petrol", "2026-03-01 09:00", "5"),
	}

	periods := Aggregate(readings, book, domain.PeriodDaily, rangeFilter("2026-03-01", "2026-03-31"))
	require.Len(t, periods, 2, "days without readings are not materialized")
	assert.Equal(t, "2026-03-01", periods[0].PeriodKey)
	assert.Equal(t, "2026-03-10", periods[1].PeriodKey)

	require.Len(t, periods[1].Fuels, 2)
	assert.Equal(t, "Diesel", periods[1].Fuels[0].FuelName)
	assert.Equal(t, "Petrol", periods[1].Fuels[1].FuelName)
}

func TestAggregate_AppliesEntityFilters(t *testing.T) {
	book := NewPriceBook([]domain.PriceSnapshot{price(1, "Diesel", "2026-01-01", "100", "80")})
	first := reading(1, 1, "Diesel", "2026-03-02 09:00", "10")
	second := reading(2, 1, "Diesel", "2026-03-02 10:00", "20")
	second.PumpID = 2

	f := rangeFilter("2026-03-01", "2026-03-31")
	pump := int64(2)
	f.PumpID = &pump

	periods := Aggregate([]domain.MeterReading{first, second}, book, domain.PeriodDaily, f)
	require.Len(t, periods, 1)
	assertDecimal(t, "20", periods[0].Totals.TotalVolume)
}

func TestAggregate_ReversedRangeYieldsEmptyList(t *testing.T) {
	readings := []domain.MeterReading{reading(1, 1, "Diesel", "2026-03-02 09:00", "10")}

	periods := Aggregate(readings, NewPriceBook(nil), domain.PeriodDaily, rangeFilter("2026-03-31", "2026-03-01"))
	assert.NotNil(t, periods)
	assert.Empty(t, periods)
}

func TestAggregate_TotalsMatchFuelVolumes(t *testing.T) {
	book := NewPriceBook([]domain.PriceSnapshot{
		price(1, "Diesel", "2026-01-01", "100", "80"),
		price(1, "Diesel", "2026-02-15", "97.5", "80"),
		price(2, "Petrol", "2026-01-01", "120", "100"),
	})
	var readings []domain.MeterReading
	stamps := []string{"2026-02-01 08:00", "2026-02-14 20:00", "2026-02-15 06:00", "2026-02-27 18:30"}
	for i, stamp := range stamps {
		readings = append(readings,
			reading(int64(i*2+1), 1, "Diesel", stamp, "12.345"),
			reading(int64(i*2+2), 2, "Petrol", stamp, "7.5"),
		)
	}

	for _, period := range []domain.PeriodType{domain.PeriodDaily, domain.PeriodWeekly, domain.PeriodMonthly} {
		periods := Aggregate(readings, book, period, rangeFilter("2026-02-01", "2026-02-28"))

		periodSum := Sum(periods, func(p domain.PeriodSummary) decimal.Decimal { return p.Totals.TotalVolume })
		fuelSum := decimal.Zero
		for _, p := range periods {
			fuelSum = fuelSum.Add(Sum(p.Fuels, func(f domain.PeriodFuelAggregate) decimal.Decimal { return f.TotalVolume }))
			for _, f := range p.Fuels {
				assert.False(t, f.LostProfit.IsNegative())
			}
		}
		assert.True(t, periodSum.Equal(fuelSum), "period %s", period)
		assertDecimal(t, "79.38", periodSum)
	}
}

func TestAggregate_IsIdempotent(t *testing.T) {
	book := NewPriceBook([]domain.PriceSnapshot{price(1, "Diesel", "2026-01-01", "100", "80")})
	readings := []domain.MeterReading{
		reading(1, 1, "Diesel", "2026-03-02 09:00", "10"),
		reading(2, 1, "Diesel", "2026-03-09 09:00", "10"),
	}
	f := rangeFilter("2026-03-01", "2026-03-31")

	first := Aggregate(readings, book, domain.PeriodWeekly, f)
	second := Aggregate(readings, book, domain.PeriodWeekly, f)
	assert.Equal(t, first, second)
}
