package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

func (p PeriodType) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// PriceSnapshot is one fuel_prices row.
type PriceSnapshot struct {
	FuelTypeID    int64           `json:"fuel_type_id"`
	FuelName      string          `json:"fuel_name"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	EffectiveDate time.Time       `json:"effective_date"`
}

// MeterReading is a single dispensing event taken from a pump meter.
type MeterReading struct {
	ID         int64           `json:"id"`
	PumpID     int64           `json:"pump_id"`
	PumpName   string          `json:"pump_name"`
	StaffID    *int64          `json:"staff_id,omitempty"`
	FuelTypeID int64           `json:"fuel_type_id"`
	FuelName   string          `json:"fuel_name"`
	ReadingAt  time.Time       `json:"reading_at"`
	Volume     decimal.Decimal `json:"volume"`
}

type PeriodFuelAggregate struct {
	PeriodKey     string          `json:"period_key"`
	PeriodDate    time.Time       `json:"period_date"`
	FuelTypeID    int64           `json:"fuel_type_id"`
	FuelName      string          `json:"fuel_name"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PreviousPrice decimal.Decimal `json:"previous_price"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	LostProfit    decimal.Decimal `json:"lost_profit"`
}

type Totals struct {
	TotalVolume  decimal.Decimal `json:"total_volume"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	LostProfit   decimal.Decimal `json:"lost_profit"`
}

func (t Totals) Add(other Totals) Totals {
	return Totals{
		TotalVolume:  t.TotalVolume.Add(other.TotalVolume),
		TotalRevenue: t.TotalRevenue.Add(other.TotalRevenue),
		TotalProfit:  t.TotalProfit.Add(other.TotalProfit),
		LostProfit:   t.LostProfit.Add(other.LostProfit),
	}
}

type PeriodSummary struct {
	PeriodKey  string                `json:"period_key"`
	PeriodDate time.Time             `json:"period_date"`
	Fuels      []PeriodFuelAggregate `json:"fuels"`
	Totals     Totals                `json:"totals"`
}

type FuelTotal struct {
	FuelTypeID    int64           `json:"fuel_type_id"`
	FuelName      string          `json:"fuel_name"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	LostProfit    decimal.Decimal `json:"lost_profit"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"`
}

type PriceChange struct {
	FuelTypeID    int64           `json:"fuel_type_id"`
	FuelName      string          `json:"fuel_name"`
	EffectiveDate time.Time       `json:"effective_date"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PreviousPrice decimal.Decimal `json:"previous_price"`
	Change        decimal.Decimal `json:"change"`
}

type SalesRow struct {
	Label        string          `json:"label"`
	PeriodDate   *time.Time      `json:"period_date,omitempty"`
	SalesCount   int             `json:"sales_count"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SharePercent decimal.Decimal `json:"share_percent"`
}

type AttendanceRow struct {
	StaffID        int64           `json:"staff_id"`
	StaffName      string          `json:"staff_name"`
	Role           string          `json:"role"`
	TotalDays      int             `json:"total_days"`
	PresentDays    int             `json:"present_days"`
	AbsentDays     int             `json:"absent_days"`
	LateDays       int             `json:"late_days"`
	LeaveDays      int             `json:"leave_days"`
	AttendanceRate decimal.Decimal `json:"attendance_rate"`
}

type StaffPerformanceRow struct {
	StaffID        int64           `json:"staff_id"`
	StaffName      string          `json:"staff_name"`
	Role           string          `json:"role"`
	SalesCount     int             `json:"sales_count"`
	TotalVolume    decimal.Decimal `json:"total_volume"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	AverageSale    decimal.Decimal `json:"average_sale"`
	AttendanceDays int             `json:"attendance_days"`
	PresentDays    int             `json:"present_days"`
	AttendanceRate decimal.Decimal `json:"attendance_rate"`
	RevenueShare   decimal.Decimal `json:"revenue_share"`
}

type RevenueRow struct {
	PeriodKey    string          `json:"period_key"`
	PeriodDate   time.Time       `json:"period_date"`
	FuelName     string          `json:"fuel_name"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SharePercent decimal.Decimal `json:"share_percent"`
}

type PaymentMethodRow struct {
	PaymentMethod string          `json:"payment_method"`
	Count         int             `json:"count"`
	Amount        decimal.Decimal `json:"amount"`
	SharePercent  decimal.Decimal `json:"share_percent"`
}

type CashReconciliationRow struct {
	ID             int64           `json:"id"`
	ShiftDate      time.Time       `json:"shift_date"`
	StaffID        int64           `json:"staff_id"`
	StaffName      string          `json:"staff_name"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	ActualAmount   decimal.Decimal `json:"actual_amount"`
	Variance       decimal.Decimal `json:"variance"`
	Status         string          `json:"status"`
}

type FuelDispensingRow struct {
	FuelTypeID   int64           `json:"fuel_type_id"`
	FuelName     string          `json:"fuel_name"`
	PumpID       int64           `json:"pump_id"`
	PumpName     string          `json:"pump_name"`
	ReadingCount int             `json:"reading_count"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
	SharePercent decimal.Decimal `json:"share_percent"`
}

type PurchaseOrderRow struct {
	ID              int64           `json:"id"`
	OrderDate       time.Time       `json:"order_date"`
	SupplierID      int64           `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	FuelName        string          `json:"fuel_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DeliveredQty    decimal.Decimal `json:"delivered_qty"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	PaymentStatus   string          `json:"payment_status"`
	Status          string          `json:"status"`
	DeliveryPercent decimal.Decimal `json:"delivery_percent"`
}

type FuelDelivery struct {
	ID               int64           `json:"id"`
	DeliveryDate     time.Time       `json:"delivery_date"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	Notes            *string         `json:"notes,omitempty"`
}

type SupplierPayment struct {
	ID            int64           `json:"id"`
	PaymentDate   time.Time       `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Reference     *string         `json:"reference,omitempty"`
}

type PurchaseOrderDetail struct {
	Order      PurchaseOrderRow  `json:"order"`
	Deliveries []FuelDelivery    `json:"deliveries"`
	Payments   []SupplierPayment `json:"payments"`
}

type CreditBalanceRow struct {
	CustomerID        int64           `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	Phone             *string         `json:"phone,omitempty"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	AvailableCredit   decimal.Decimal `json:"available_credit"`
	Utilization       decimal.Decimal `json:"utilization"`
	Status            string          `json:"status"`
	LastTransactionAt *time.Time      `json:"last_transaction_at,omitempty"`
}

type CreditTransactionRow struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	TransactionDate time.Time       `json:"transaction_date"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Reference       *string         `json:"reference,omitempty"`
	RunningSales    decimal.Decimal `json:"running_sales"`
	RunningPayments decimal.Decimal `json:"running_payments"`
}

// Option is an id/label pair used to populate filter dropdowns.
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type FilterOptions struct {
	Staff     []Option `json:"staff"`
	FuelTypes []Option `json:"fuel_types"`
	Pumps     []Option `json:"pumps"`
	Suppliers []Option `json:"suppliers"`
	Customers []Option `json:"customers"`
}
