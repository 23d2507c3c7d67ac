package main

import (
	"context"
	"testing"
	"time"

	"stationreports/internal/excel"
	"stationreports/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) FuelTypeIDByName(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockWriter) InsertFuelPrice(ctx context.Context, input repository.FuelPriceInput) (bool, error) {
	args := m.Called(ctx, input)
	return args.Bool(0), args.Error(1)
}

func priceRow(row int, fuel, selling string) excel.FuelPriceRow {
	return excel.FuelPriceRow{
		Row:           row,
		FuelName:      fuel,
		SellingPrice:  decimal.RequireFromString(selling),
		PurchasePrice: decimal.RequireFromString("1000"),
		EffectiveDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestImportPrices(t *testing.T) {
	ctx := context.Background()
	repo := &mockWriter{}
	repo.On("FuelTypeIDByName", ctx, "Diesel").Return(int64(1), nil).Once()
	repo.On("FuelTypeIDByName", ctx, "Kerosene").Return(int64(0), repository.ErrNotFound).Once()
	repo.On("InsertFuelPrice", ctx, mock.MatchedBy(func(in repository.FuelPriceInput) bool {
		return in.FuelTypeID == 1 && in.SellingPrice.Equal(decimal.RequireFromString("1250"))
	})).Return(true, nil).Once()
	repo.On("InsertFuelPrice", ctx, mock.MatchedBy(func(in repository.FuelPriceInput) bool {
		return in.FuelTypeID == 1 && in.SellingPrice.Equal(decimal.RequireFromString("1300"))
	})).Return(false, nil).Once()

	rows := []excel.FuelPriceRow{
		priceRow(2, "Diesel", "1250"),
		priceRow(3, "Kerosene", "900"),
		priceRow(4, "diesel", "1300"),
	}
	stats, err := importPrices(ctx, repo, rows, false, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, importStats{Rows: 3, Inserted: 1, Duplicates: 1, UnknownFuel: 1}, stats)
	repo.AssertExpectations(t)
}

func TestImportPrices_StrictUnknownFuel(t *testing.T) {
	ctx := context.Background()
	repo := &mockWriter{}
	repo.On("FuelTypeIDByName", ctx, "Kerosene").Return(int64(0), repository.ErrNotFound)

	_, err := importPrices(ctx, repo, []excel.FuelPriceRow{priceRow(2, "Kerosene", "900")}, true, zap.NewNop())

	assert.EqualError(t, err, `row 2: unknown fuel type "Kerosene"`)
	repo.AssertNotCalled(t, "InsertFuelPrice", mock.Anything, mock.Anything)
}
