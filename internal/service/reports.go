package service

import (
	"context"
	"fmt"
	"time"

	"stationreports/internal/domain"
	"stationreports/internal/metrics"
	"stationreports/internal/report"
	"stationreports/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	FuelDispensing = "dispensing"
	FuelPurchases  = "purchases"

	FinancialRevenue            = "revenue"
	FinancialPayments           = "payments"
	FinancialCashReconciliation = "cash_reconciliation"

	CreditOutstandingBalances = "outstanding_balances"
	CreditCustomerHistory     = "customer_history"
)

type SalesProfitReport struct {
	Filter       report.Filter
	Periods      []domain.PeriodSummary
	Totals       domain.Totals
	Fuels        []domain.FuelTotal
	PriceChanges []domain.PriceChange
}

type SalesReport struct {
	Filter       report.Filter
	Rows         []domain.SalesRow
	SalesCount   int
	TotalVolume  decimal.Decimal
	TotalRevenue decimal.Decimal
	AverageSale  decimal.Decimal
}

type FuelReport struct {
	Filter           report.Filter
	Dispensing       []domain.FuelDispensingRow
	DispensedVolume  decimal.Decimal
	ReadingCount     int
	Orders           []domain.PurchaseOrderRow
	OrderedQuantity  decimal.Decimal
	DeliveredQty     decimal.Decimal
	OrderedAmount    decimal.Decimal
	PaidAmount       decimal.Decimal
	OutstandingTotal decimal.Decimal
}

type AttendanceReport struct {
	Filter         report.Filter
	Rows           []domain.AttendanceRow
	TotalDays      int
	PresentDays    int
	AbsentDays     int
	LateDays       int
	LeaveDays      int
	AttendanceRate decimal.Decimal
}

type StaffReport struct {
	Filter       report.Filter
	Rows         []domain.StaffPerformanceRow
	SalesCount   int
	TotalVolume  decimal.Decimal
	TotalRevenue decimal.Decimal
	AverageSale  decimal.Decimal
}

type FinancialReport struct {
	Filter          report.Filter
	Revenue         []domain.RevenueRow
	TotalRevenue    decimal.Decimal
	TotalVolume     decimal.Decimal
	Payments        []domain.PaymentMethodRow
	PaymentCount    int
	PaymentAmount   decimal.Decimal
	Reconciliations []domain.CashReconciliationRow
	TotalExpected   decimal.Decimal
	TotalActual     decimal.Decimal
	TotalVariance   decimal.Decimal
	ShortCount      int
}

type CreditReport struct {
	Filter         report.Filter
	Balances       []domain.CreditBalanceRow
	TotalLimit     decimal.Decimal
	TotalBalance   decimal.Decimal
	TotalAvailable decimal.Decimal
	Utilization    decimal.Decimal
	CriticalCount  int
	Transactions   []domain.CreditTransactionRow
	TotalSales     decimal.Decimal
	TotalPayments  decimal.Decimal
}

// SalesProfit folds meter readings into per-period revenue, profit and lost
// profit, resolving the effective price for every reading.
func (s *Service) SalesProfit(ctx context.Context, f report.Filter) (out SalesProfitReport, err error) {
	done := metrics.ObserveReport("sales_profit", string(f.PeriodType))
	defer func() { done(len(out.Periods), err) }()

	out = SalesProfitReport{
		Filter:       f,
		Periods:      []domain.PeriodSummary{},
		Fuels:        []domain.FuelTotal{},
		PriceChanges: []domain.PriceChange{},
	}
	if f.Empty() {
		return out, nil
	}

	readings, err := s.store.ListMeterReadings(ctx, f)
	if err != nil {
		return out, fmt.Errorf("sales profit readings: %w", err)
	}
	prices, err := s.store.ListPriceHistory(ctx, f.EndDate, f.FuelTypeID)
	if err != nil {
		return out, fmt.Errorf("sales profit prices: %w", err)
	}
	book := report.NewPriceBook(localizePrices(prices, f.Loc()))

	out.Periods = report.Aggregate(readings, book, f.PeriodType, f)
	out.Totals = report.GrandTotals(out.Periods)
	out.Fuels = report.FuelTotals(out.Periods)
	if f.ShowPriceChanges {
		out.PriceChanges = book.Changes(f.RangeStart(), f.RangeEnd(), f.FuelTypeID)
	}
	return out, nil
}

// Sales groups sales by period, staff or pump with each group's share of
// total revenue.
func (s *Service) Sales(ctx context.Context, f report.Filter) (out SalesReport, err error) {
	f = f.WithReportType(repository.SalesByPeriod, repository.SalesByPeriod, repository.SalesByStaff, repository.SalesByPump)
	done := metrics.ObserveReport("sales", f.ReportType)
	defer func() { done(len(out.Rows), err) }()

	out = SalesReport{Filter: f, Rows: []domain.SalesRow{}}
	if f.Empty() {
		return out, nil
	}

	rows, err := s.store.SalesSummary(ctx, f)
	if err != nil {
		return out, fmt.Errorf("sales report: %w", err)
	}
	out.TotalRevenue = report.Sum(rows, func(r domain.SalesRow) decimal.Decimal { return r.TotalRevenue })
	out.TotalVolume = report.Sum(rows, func(r domain.SalesRow) decimal.Decimal { return r.TotalVolume })
	out.SalesCount = report.SumInt(rows, func(r domain.SalesRow) int { return r.SalesCount })
	out.AverageSale = report.Average(out.TotalRevenue, out.SalesCount)
	for i := range rows {
		if rows[i].PeriodDate != nil {
			_, start := report.Bucket(*rows[i].PeriodDate, f.PeriodType)
			rows[i].Label = report.PeriodLabel(start, f.PeriodType)
		}
		rows[i].SharePercent = report.Percent(rows[i].TotalRevenue, out.TotalRevenue)
	}
	out.Rows = rows
	return out, nil
}

// Fuel builds either the dispensing or the supplier purchases view.
func (s *Service) Fuel(ctx context.Context, f report.Filter) (out FuelReport, err error) {
	f = f.WithReportType(FuelDispensing, FuelDispensing, FuelPurchases)
	done := metrics.ObserveReport("fuel", f.ReportType)
	defer func() { done(len(out.Dispensing)+len(out.Orders), err) }()

	out = FuelReport{
		Filter:     f,
		Dispensing: []domain.FuelDispensingRow{},
		Orders:     []domain.PurchaseOrderRow{},
	}
	if f.Empty() {
		return out, nil
	}

	if f.ReportType == FuelPurchases {
		orders, err := s.store.ListPurchaseOrders(ctx, f)
		if err != nil {
			return out, fmt.Errorf("fuel purchases: %w", err)
		}
		for i := range orders {
			derivePurchaseOrder(&orders[i])
		}
		out.Orders = orders
		out.OrderedQuantity = report.Sum(orders, func(o domain.PurchaseOrderRow) decimal.Decimal { return o.Quantity })
		out.DeliveredQty = report.Sum(orders, func(o domain.PurchaseOrderRow) decimal.Decimal { return o.DeliveredQty })
		out.OrderedAmount = report.Sum(orders, func(o domain.PurchaseOrderRow) decimal.Decimal { return o.TotalAmount })
		out.PaidAmount = report.Sum(orders, func(o domain.PurchaseOrderRow) decimal.Decimal { return o.PaidAmount })
		out.OutstandingTotal = report.Sum(orders, func(o domain.PurchaseOrderRow) decimal.Decimal { return o.Outstanding })
		return out, nil
	}

	rows, err := s.store.FuelDispensing(ctx, f)
	if err != nil {
		return out, fmt.Errorf("fuel dispensing: %w", err)
	}
	out.DispensedVolume = report.Sum(rows, func(r domain.FuelDispensingRow) decimal.Decimal { return r.TotalVolume })
	out.ReadingCount = report.SumInt(rows, func(r domain.FuelDispensingRow) int { return r.ReadingCount })
	for i := range rows {
		rows[i].SharePercent = report.Percent(rows[i].TotalVolume, out.DispensedVolume)
	}
	out.Dispensing = rows
	return out, nil
}

// PurchaseOrderDetail returns one order with its deliveries and payments.
// Unknown ids yield repository.ErrNotFound.
func (s *Service) PurchaseOrderDetail(ctx context.Context, id int64) (domain.PurchaseOrderDetail, error) {
	detail, err := s.store.GetPurchaseOrderDetail(ctx, id)
	if err != nil {
		return domain.PurchaseOrderDetail{}, err
	}
	derivePurchaseOrder(&detail.Order)
	if detail.Deliveries == nil {
		detail.Deliveries = []domain.FuelDelivery{}
	}
	if detail.Payments == nil {
		detail.Payments = []domain.SupplierPayment{}
	}
	return detail, nil
}

func (s *Service) Attendance(ctx context.Context, f report.Filter) (out AttendanceReport, err error) {
	done := metrics.ObserveReport("attendance", "summary")
	defer func() { done(len(out.Rows), err) }()

	out = AttendanceReport{Filter: f, Rows: []domain.AttendanceRow{}}
	if f.Empty() {
		return out, nil
	}

	rows, err := s.store.AttendanceSummary(ctx, f)
	if err != nil {
		return out, fmt.Errorf("attendance report: %w", err)
	}
	for i := range rows {
		rows[i].AttendanceRate = report.PercentInt(rows[i].PresentDays, rows[i].TotalDays)
	}
	out.Rows = rows
	out.TotalDays = report.SumInt(rows, func(r domain.AttendanceRow) int { return r.TotalDays })
	out.PresentDays = report.SumInt(rows, func(r domain.AttendanceRow) int { return r.PresentDays })
	out.AbsentDays = report.SumInt(rows, func(r domain.AttendanceRow) int { return r.AbsentDays })
	out.LateDays = report.SumInt(rows, func(r domain.AttendanceRow) int { return r.LateDays })
	out.LeaveDays = report.SumInt(rows, func(r domain.AttendanceRow) int { return r.LeaveDays })
	out.AttendanceRate = report.PercentInt(out.PresentDays, out.TotalDays)
	return out, nil
}

func (s *Service) StaffPerformance(ctx context.Context, f report.Filter) (out StaffReport, err error) {
	done := metrics.ObserveReport("staff", "performance")
	defer func() { done(len(out.Rows), err) }()

	out = StaffReport{Filter: f, Rows: []domain.StaffPerformanceRow{}}
	if f.Empty() {
		return out, nil
	}

	rows, err := s.store.StaffPerformance(ctx, f)
	if err != nil {
		return out, fmt.Errorf("staff performance report: %w", err)
	}
	out.TotalRevenue = report.Sum(rows, func(r domain.StaffPerformanceRow) decimal.Decimal { return r.TotalRevenue })
	out.TotalVolume = report.Sum(rows, func(r domain.StaffPerformanceRow) decimal.Decimal { return r.TotalVolume })
	out.SalesCount = report.SumInt(rows, func(r domain.StaffPerformanceRow) int { return r.SalesCount })
	out.AverageSale = report.Average(out.TotalRevenue, out.SalesCount)
	for i := range rows {
		rows[i].AverageSale = report.Average(rows[i].TotalRevenue, rows[i].SalesCount)
		rows[i].AttendanceRate = report.PercentInt(rows[i].PresentDays, rows[i].AttendanceDays)
		rows[i].RevenueShare = report.Percent(rows[i].TotalRevenue, out.TotalRevenue)
	}
	out.Rows = rows
	return out, nil
}

// Financial builds the revenue, payments or cash reconciliation view.
func (s *Service) Financial(ctx context.Context, f report.Filter) (out FinancialReport, err error) {
	f = f.WithReportType(FinancialRevenue, FinancialRevenue, FinancialPayments, FinancialCashReconciliation)
	done := metrics.ObserveReport("financial", f.ReportType)
	defer func() {
		done(len(out.Revenue)+len(out.Payments)+len(out.Reconciliations), err)
	}()

	out = FinancialReport{
		Filter:          f,
		Revenue:         []domain.RevenueRow{},
		Payments:        []domain.PaymentMethodRow{},
		Reconciliations: []domain.CashReconciliationRow{},
	}
	if f.Empty() {
		return out, nil
	}

	switch f.ReportType {
	case FinancialPayments:
		rows, err := s.store.PaymentMethods(ctx, f)
		if err != nil {
			return out, fmt.Errorf("payments report: %w", err)
		}
		out.PaymentAmount = report.Sum(rows, func(r domain.PaymentMethodRow) decimal.Decimal { return r.Amount })
		out.PaymentCount = report.SumInt(rows, func(r domain.PaymentMethodRow) int { return r.Count })
		for i := range rows {
			rows[i].SharePercent = report.Percent(rows[i].Amount, out.PaymentAmount)
		}
		out.Payments = rows

	case FinancialCashReconciliation:
		rows, err := s.store.CashReconciliations(ctx, f)
		if err != nil {
			return out, fmt.Errorf("cash reconciliation report: %w", err)
		}
		for i := range rows {
			rows[i].Variance = rows[i].ActualAmount.Sub(rows[i].ExpectedAmount)
			rows[i].Status = report.ReconciliationStatus(rows[i].Variance)
			if rows[i].Status == report.StatusShort {
				out.ShortCount++
			}
		}
		out.Reconciliations = rows
		out.TotalExpected = report.Sum(rows, func(r domain.CashReconciliationRow) decimal.Decimal { return r.ExpectedAmount })
		out.TotalActual = report.Sum(rows, func(r domain.CashReconciliationRow) decimal.Decimal { return r.ActualAmount })
		out.TotalVariance = out.TotalActual.Sub(out.TotalExpected)

	default:
		rows, err := s.store.RevenueByPeriod(ctx, f)
		if err != nil {
			return out, fmt.Errorf("revenue report: %w", err)
		}
		out.TotalRevenue = report.Sum(rows, func(r domain.RevenueRow) decimal.Decimal { return r.TotalRevenue })
		out.TotalVolume = report.Sum(rows, func(r domain.RevenueRow) decimal.Decimal { return r.TotalVolume })
		for i := range rows {
			rows[i].PeriodKey, rows[i].PeriodDate = report.Bucket(rows[i].PeriodDate, f.PeriodType)
			rows[i].SharePercent = report.Percent(rows[i].TotalRevenue, out.TotalRevenue)
		}
		out.Revenue = rows
	}
	return out, nil
}

// Credit builds the outstanding balances or customer history view.
func (s *Service) Credit(ctx context.Context, f report.Filter) (out CreditReport, err error) {
	f = f.WithReportType(CreditOutstandingBalances, CreditOutstandingBalances, CreditCustomerHistory)
	done := metrics.ObserveReport("credit", f.ReportType)
	defer func() { done(len(out.Balances)+len(out.Transactions), err) }()

	out = CreditReport{
		Filter:       f,
		Balances:     []domain.CreditBalanceRow{},
		Transactions: []domain.CreditTransactionRow{},
	}

	if f.ReportType == CreditCustomerHistory {
		if f.Empty() {
			return out, nil
		}
		rows, err := s.store.CreditTransactions(ctx, f)
		if err != nil {
			return out, fmt.Errorf("credit history report: %w", err)
		}
		runningSales := map[int64]decimal.Decimal{}
		runningPayments := map[int64]decimal.Decimal{}
		for i := range rows {
			id := rows[i].CustomerID
			switch rows[i].TransactionType {
			case repository.TransactionSale:
				runningSales[id] = runningSales[id].Add(rows[i].Amount)
				out.TotalSales = out.TotalSales.Add(rows[i].Amount)
			case repository.TransactionPayment:
				runningPayments[id] = runningPayments[id].Add(rows[i].Amount)
				out.TotalPayments = out.TotalPayments.Add(rows[i].Amount)
			}
			rows[i].RunningSales = runningSales[id]
			rows[i].RunningPayments = runningPayments[id]
		}
		out.Transactions = rows
		return out, nil
	}

	// Balances are a point-in-time view; the date range does not apply.
	rows, err := s.store.CreditBalances(ctx, f)
	if err != nil {
		return out, fmt.Errorf("credit balances report: %w", err)
	}
	for i := range rows {
		rows[i].AvailableCredit = rows[i].CreditLimit.Sub(rows[i].CurrentBalance)
		rows[i].Utilization, rows[i].Status = report.CreditUtilization(rows[i].CurrentBalance, rows[i].CreditLimit)
		if rows[i].Status == report.StatusCritical {
			out.CriticalCount++
		}
	}
	out.Balances = rows
	out.TotalLimit = report.Sum(rows, func(r domain.CreditBalanceRow) decimal.Decimal { return r.CreditLimit })
	out.TotalBalance = report.Sum(rows, func(r domain.CreditBalanceRow) decimal.Decimal { return r.CurrentBalance })
	out.TotalAvailable = report.Sum(rows, func(r domain.CreditBalanceRow) decimal.Decimal { return r.AvailableCredit })
	out.Utilization, _ = report.CreditUtilization(out.TotalBalance, out.TotalLimit)
	return out, nil
}

func derivePurchaseOrder(o *domain.PurchaseOrderRow) {
	o.Outstanding = o.TotalAmount.Sub(o.PaidAmount)
	if o.Outstanding.IsNegative() {
		o.Outstanding = decimal.Zero
	}
	o.DeliveryPercent = report.Percent(o.DeliveredQty, o.Quantity)
}

// localizePrices moves effective dates, scanned as UTC midnights, onto
// midnight in the report's time zone.
func localizePrices(prices []domain.PriceSnapshot, loc *time.Location) []domain.PriceSnapshot {
	out := make([]domain.PriceSnapshot, len(prices))
	for i, p := range prices {
		y, m, d := p.EffectiveDate.Date()
		p.EffectiveDate = time.Date(y, m, d, 0, 0, 0, 0, loc)
		out[i] = p
	}
	return out
}
