package report

import (
	"testing"

	"stationreports/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dieselBook() *PriceBook {
	return NewPriceBook([]domain.PriceSnapshot{
		price(1, "Diesel", "2026-03-01", "100", "80"),
		price(1, "Diesel", "2026-01-01", "95", "78"),
		price(1, "Diesel", "2026-03-15", "90", "79"),
		price(2, "Petrol", "2026-02-01", "120", "100"),
	})
}

func TestPriceBook_PriceAsOf(t *testing.T) {
	book := dieselBook()

	tests := []struct {
		name    string
		at      string
		want    string
		wantHit bool
	}{
		{"before any price", "2025-12-31 23:59", "", false},
		{"on effective date", "2026-01-01 00:00", "95", true},
		{"between changes", "2026-02-20 10:00", "95", true},
		{"after second change", "2026-03-10 10:00", "100", true},
		{"latest", "2026-10-01 10:00", "90", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := book.PriceAsOf(1, at(tt.at))
			require.Equal(t, tt.wantHit, ok)
			if ok {
				assertDecimal(t, tt.want, got.SellingPrice)
			}
		})
	}
}

func TestPriceBook_PriceBeforeIsRelativeToEffectivePrice(t *testing.T) {
	book := dieselBook()

	prev, ok := book.PriceBefore(1, at("2026-03-20 09:00"))
	require.True(t, ok)
	assertDecimal(t, "100", prev.SellingPrice)
	assert.Equal(t, day("2026-03-01"), prev.EffectiveDate)

	prev, ok = book.PriceBefore(1, at("2026-03-01 00:00"))
	require.True(t, ok)
	assertDecimal(t, "95", prev.SellingPrice)

	_, ok = book.PriceBefore(1, at("2026-02-01 00:00"))
	assert.False(t, ok, "first price has no predecessor")

	_, ok = book.PriceBefore(1, at("2025-06-01 00:00"))
	assert.False(t, ok)
}

func TestPriceBook_UnknownFuel(t *testing.T) {
	book := dieselBook()
	_, ok := book.PriceAsOf(99, at("2026-05-01 00:00"))
	assert.False(t, ok)
	_, ok = book.PriceBefore(99, at("2026-05-01 00:00"))
	assert.False(t, ok)
}

func TestPriceBook_Changes(t *testing.T) {
	book := dieselBook()

	changes := book.Changes(day("2026-02-01"), day("2026-04-01"), nil)
	require.Len(t, changes, 3)

	assert.Equal(t, "Petrol", changes[0].FuelName)
	assertDecimal(t, "0", changes[0].Change)

	assert.Equal(t, day("2026-03-01"), changes[1].EffectiveDate)
	assertDecimal(t, "95", changes[1].PreviousPrice)
	assertDecimal(t, "5", changes[1].Change)

	assert.Equal(t, day("2026-03-15"), changes[2].EffectiveDate)
	assertDecimal(t, "-10", changes[2].Change)

	diesel := int64(1)
	assert.Len(t, book.Changes(day("2026-02-01"), day("2026-04-01"), &diesel), 2)
}
