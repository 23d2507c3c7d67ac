package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"stationreports/internal/cache"
	"stationreports/internal/domain"
	"stationreports/internal/metrics"
	"stationreports/internal/report"
	"stationreports/internal/repository"

	"go.uber.org/zap"
)

const DefaultCurrencySymbol = "$"

// Store is the read side of the repository used by the report builders.
type Store interface {
	ListMeterReadings(ctx context.Context, f report.Filter) ([]domain.MeterReading, error)
	ListPriceHistory(ctx context.Context, upTo time.Time, fuelTypeID *int64) ([]domain.PriceSnapshot, error)
	SalesSummary(ctx context.Context, f report.Filter) ([]domain.SalesRow, error)
	StaffPerformance(ctx context.Context, f report.Filter) ([]domain.StaffPerformanceRow, error)
	RevenueByPeriod(ctx context.Context, f report.Filter) ([]domain.RevenueRow, error)
	PaymentMethods(ctx context.Context, f report.Filter) ([]domain.PaymentMethodRow, error)
	AttendanceSummary(ctx context.Context, f report.Filter) ([]domain.AttendanceRow, error)
	CashReconciliations(ctx context.Context, f report.Filter) ([]domain.CashReconciliationRow, error)
	FuelDispensing(ctx context.Context, f report.Filter) ([]domain.FuelDispensingRow, error)
	ListPurchaseOrders(ctx context.Context, f report.Filter) ([]domain.PurchaseOrderRow, error)
	GetPurchaseOrderDetail(ctx context.Context, id int64) (domain.PurchaseOrderDetail, error)
	CreditBalances(ctx context.Context, f report.Filter) ([]domain.CreditBalanceRow, error)
	CreditTransactions(ctx context.Context, f report.Filter) ([]domain.CreditTransactionRow, error)
	GetSetting(ctx context.Context, key string) (string, error)
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
}

type Service struct {
	store    Store
	settings cache.Settings
	log      *zap.Logger
}

func New(store Store, settings cache.Settings, log *zap.Logger) *Service {
	if settings == nil {
		settings = cache.NewMemorySettings(cache.DefaultSettingsTTL)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, settings: settings, log: log}
}

// CurrencySymbol reads the currency symbol from system settings through the
// cache. Lookup failures fall back to the default symbol.
func (s *Service) CurrencySymbol(ctx context.Context) string {
	key := repository.SettingCurrencySymbol
	if value, ok, err := s.settings.Get(ctx, key); err != nil {
		s.log.Warn("settings cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		metrics.SettingsCacheLookups.WithLabelValues("hit").Inc()
		return value
	}
	metrics.SettingsCacheLookups.WithLabelValues("miss").Inc()

	value, err := s.store.GetSetting(ctx, key)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		value = DefaultCurrencySymbol
	case err != nil:
		s.log.Warn("currency symbol lookup failed", zap.Error(err))
		return DefaultCurrencySymbol
	}
	value = strings.TrimSpace(value)
	if value == "" {
		value = DefaultCurrencySymbol
	}
	if err := s.settings.Set(ctx, key, value); err != nil {
		s.log.Warn("settings cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value
}

func (s *Service) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return s.store.FilterOptions(ctx)
}
