package service

import (
	"context"
	"time"

	"stationreports/internal/domain"
	"stationreports/internal/report"

	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListMeterReadings(ctx context.Context, f report.Filter) ([]domain.MeterReading, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.MeterReading), args.Error(1)
}

func (m *MockStore) ListPriceHistory(ctx context.Context, upTo time.Time, fuelTypeID *int64) ([]domain.PriceSnapshot, error) {
	args := m.Called(ctx, upTo, fuelTypeID)
	return args.Get(0).([]domain.PriceSnapshot), args.Error(1)
}

func (m *MockStore) SalesSummary(ctx context.Context, f report.Filter) ([]domain.SalesRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.SalesRow), args.Error(1)
}

func (m *MockStore) StaffPerformance(ctx context.Context, f report.Filter) ([]domain.StaffPerformanceRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.StaffPerformanceRow), args.Error(1)
}

func (m *MockStore) RevenueByPeriod(ctx context.Context, f report.Filter) ([]domain.RevenueRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.RevenueRow), args.Error(1)
}

func (m *MockStore) PaymentMethods(ctx context.Context, f report.Filter) ([]domain.PaymentMethodRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.PaymentMethodRow), args.Error(1)
}

func (m *MockStore) AttendanceSummary(ctx context.Context, f report.Filter) ([]domain.AttendanceRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.AttendanceRow), args.Error(1)
}

func (m *MockStore) CashReconciliations(ctx context.Context, f report.Filter) ([]domain.CashReconciliationRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.CashReconciliationRow), args.Error(1)
}

func (m *MockStore) FuelDispensing(ctx context.Context, f report.Filter) ([]domain.FuelDispensingRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.FuelDispensingRow), args.Error(1)
}

func (m *MockStore) ListPurchaseOrders(ctx context.Context, f report.Filter) ([]domain.PurchaseOrderRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.PurchaseOrderRow), args.Error(1)
}

func (m *MockStore) GetPurchaseOrderDetail(ctx context.Context, id int64) (domain.PurchaseOrderDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.PurchaseOrderDetail), args.Error(1)
}

func (m *MockStore) CreditBalances(ctx context.Context, f report.Filter) ([]domain.CreditBalanceRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.CreditBalanceRow), args.Error(1)
}

func (m *MockStore) CreditTransactions(ctx context.Context, f report.Filter) ([]domain.CreditTransactionRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.CreditTransactionRow), args.Error(1)
}

func (m *MockStore) GetSetting(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStore) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.FilterOptions), args.Error(1)
}
