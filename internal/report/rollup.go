package report

import (
	"sort"

	"stationreports/internal/domain"
)

// GrandTotals sums every period's totals.
func GrandTotals(periods []domain.PeriodSummary) domain.Totals {
	var total domain.Totals
	for _, p := range periods {
		total = total.Add(p.Totals)
	}
	return total
}

// FuelTotals groups period aggregates by fuel type. Prices and margin are
// taken from the last period seen for that fuel, not averaged.
func FuelTotals(periods []domain.PeriodSummary) []domain.FuelTotal {
	byFuel := make(map[int64]*domain.FuelTotal)
	for _, p := range periods {
		for _, agg := range p.Fuels {
			total, ok := byFuel[agg.FuelTypeID]
			if !ok {
				total = &domain.FuelTotal{FuelTypeID: agg.FuelTypeID, FuelName: agg.FuelName}
				byFuel[agg.FuelTypeID] = total
			}
			total.TotalVolume = total.TotalVolume.Add(agg.TotalVolume)
			total.TotalRevenue = total.TotalRevenue.Add(agg.TotalRevenue)
			total.TotalProfit = total.TotalProfit.Add(agg.TotalProfit)
			total.LostProfit = total.LostProfit.Add(agg.LostProfit)
			total.CurrentPrice = agg.SellingPrice
			total.PurchasePrice = agg.PurchasePrice
			total.ProfitMargin = agg.SellingPrice.Sub(agg.PurchasePrice)
		}
	}

	result := make([]domain.FuelTotal, 0, len(byFuel))
	for _, total := range byFuel {
		result = append(result, *total)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FuelName != result[j].FuelName {
			return result[i].FuelName < result[j].FuelName
		}
		return result[i].FuelTypeID < result[j].FuelTypeID
	})
	return result
}
