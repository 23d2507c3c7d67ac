package report

import (
	"sort"
	"time"

	"stationreports/internal/domain"
)

// PriceBook answers "which price was in effect" questions over a fuel price
// history. Histories are kept ascending by effective date.
type PriceBook struct {
	byFuel map[int64][]domain.PriceSnapshot
}

func NewPriceBook(prices []domain.PriceSnapshot) *PriceBook {
	book := &PriceBook{byFuel: make(map[int64][]domain.PriceSnapshot)}
	for _, p := range prices {
		book.byFuel[p.FuelTypeID] = append(book.byFuel[p.FuelTypeID], p)
	}
	for id := range book.byFuel {
		list := book.byFuel[id]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].EffectiveDate.Before(list[j].EffectiveDate)
		})
	}
	return book
}

// PriceAsOf returns the price row with the greatest effective date not after at.
func (b *PriceBook) PriceAsOf(fuelTypeID int64, at time.Time) (domain.PriceSnapshot, bool) {
	list := b.byFuel[fuelTypeID]
	idx := sort.Search(len(list), func(i int) bool {
		return list[i].EffectiveDate.After(at)
	})
	if idx == 0 {
		return domain.PriceSnapshot{}, false
	}
	return list[idx-1], true
}

// PriceBefore returns the price immediately preceding the one in effect at at,
// i.e. the greatest effective date strictly before PriceAsOf's effective date.
func (b *PriceBook) PriceBefore(fuelTypeID int64, at time.Time) (domain.PriceSnapshot, bool) {
	current, ok := b.PriceAsOf(fuelTypeID, at)
	if !ok {
		return domain.PriceSnapshot{}, false
	}
	list := b.byFuel[fuelTypeID]
	idx := sort.Search(len(list), func(i int) bool {
		return !list[i].EffectiveDate.Before(current.EffectiveDate)
	})
	if idx == 0 {
		return domain.PriceSnapshot{}, false
	}
	return list[idx-1], true
}

// Changes lists every price that took effect in [from, to), with the selling
// price it replaced. A first-ever price is reported against itself.
func (b *PriceBook) Changes(from, to time.Time, fuelTypeID *int64) []domain.PriceChange {
	changes := make([]domain.PriceChange, 0)
	for id, list := range b.byFuel {
		if fuelTypeID != nil && id != *fuelTypeID {
			continue
		}
		for _, p := range list {
			if p.EffectiveDate.Before(from) || !p.EffectiveDate.Before(to) {
				continue
			}
			previous := p.SellingPrice
			if prev, ok := b.PriceBefore(id, p.EffectiveDate); ok {
				previous = prev.SellingPrice
			}
			changes = append(changes, domain.PriceChange{
				FuelTypeID:    id,
				FuelName:      p.FuelName,
				EffectiveDate: p.EffectiveDate,
				SellingPrice:  p.SellingPrice,
				PurchasePrice: p.PurchasePrice,
				PreviousPrice: previous,
				Change:        p.SellingPrice.Sub(previous),
			})
		}
	}
	sort.SliceStable(changes, func(i, j int) bool {
		if !changes[i].EffectiveDate.Equal(changes[j].EffectiveDate) {
			return changes[i].EffectiveDate.Before(changes[j].EffectiveDate)
		}
		return changes[i].FuelName < changes[j].FuelName
	})
	return changes
}
