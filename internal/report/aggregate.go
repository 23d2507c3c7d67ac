package report

import (
	"sort"

	"stationreports/internal/domain"

	"github.com/shopspring/decimal"
)

// LostProfit is the profit forfeited on volume sold after a price decrease.
// Price increases contribute nothing.
func LostProfit(volume, previousPrice, sellingPrice decimal.Decimal) decimal.Decimal {
	drop := previousPrice.Sub(sellingPrice)
	if !drop.IsPositive() {
		return decimal.Zero
	}
	return volume.Mul(drop)
}

type periodAcc struct {
	summary domain.PeriodSummary
	fuels   map[int64]*domain.PeriodFuelAggregate
}

// Aggregate folds raw readings into per-period summaries. Prices are
// resolved per reading, before grouping, so a price change inside a week or
// month is honoured. Periods without readings are absent from the result.
func Aggregate(readings []domain.MeterReading, book *PriceBook, period domain.PeriodType, f Filter) []domain.PeriodSummary {
	if f.Empty() || len(readings) == 0 {
		return []domain.PeriodSummary{}
	}
	if book == nil {
		book = NewPriceBook(nil)
	}

	ordered := make([]domain.MeterReading, len(readings))
	copy(ordered, readings)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].ReadingAt.Equal(ordered[j].ReadingAt) {
			return ordered[i].ReadingAt.Before(ordered[j].ReadingAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	periods := make(map[string]*periodAcc)
	for _, r := range ordered {
		if !f.MatchesReading(r) {
			continue
		}
		key, start := Bucket(r.ReadingAt.In(f.Loc()), period)

		var selling, purchase decimal.Decimal
		fuelName := r.FuelName
		if current, ok := book.PriceAsOf(r.FuelTypeID, r.ReadingAt); ok {
			selling = current.SellingPrice
			purchase = current.PurchasePrice
			if fuelName == "" {
				fuelName = current.FuelName
			}
		}
		previous := selling
		if prev, ok := book.PriceBefore(r.FuelTypeID, r.ReadingAt); ok {
			previous = prev.SellingPrice
		}

		acc, ok := periods[key]
		if !ok {
			acc = &periodAcc{
				summary: domain.PeriodSummary{PeriodKey: key, PeriodDate: start},
				fuels:   make(map[int64]*domain.PeriodFuelAggregate),
			}
			periods[key] = acc
		}
		agg, ok := acc.fuels[r.FuelTypeID]
		if !ok {
			agg = &domain.PeriodFuelAggregate{
				PeriodKey:  key,
				PeriodDate: start,
				FuelTypeID: r.FuelTypeID,
				FuelName:   fuelName,
			}
			acc.fuels[r.FuelTypeID] = agg
		}

		agg.TotalVolume = agg.TotalVolume.Add(r.Volume)
		agg.TotalRevenue = agg.TotalRevenue.Add(r.Volume.Mul(selling))
		agg.TotalProfit = agg.TotalProfit.Add(r.Volume.Mul(selling.Sub(purchase)))
		agg.LostProfit = agg.LostProfit.Add(LostProfit(r.Volume, previous, selling))
		agg.SellingPrice = selling
		agg.PurchasePrice = purchase
		agg.PreviousPrice = previous
	}

	result := make([]domain.PeriodSummary, 0, len(periods))
	for _, acc := range periods {
		summary := acc.summary
		summary.Fuels = make([]domain.PeriodFuelAggregate, 0, len(acc.fuels))
		for _, agg := range acc.fuels {
			summary.Fuels = append(summary.Fuels, *agg)
		}
		sort.Slice(summary.Fuels, func(i, j int) bool {
			if summary.Fuels[i].FuelName != summary.Fuels[j].FuelName {
				return summary.Fuels[i].FuelName < summary.Fuels[j].FuelName
			}
			return summary.Fuels[i].FuelTypeID < summary.Fuels[j].FuelTypeID
		})
		for _, agg := range summary.Fuels {
			summary.Totals = summary.Totals.Add(domain.Totals{
				TotalVolume:  agg.TotalVolume,
				TotalRevenue: agg.TotalRevenue,
				TotalProfit:  agg.TotalProfit,
				LostProfit:   agg.LostProfit,
			})
		}
		result = append(result, summary)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PeriodDate.Before(result[j].PeriodDate)
	})
	return result
}
