package report

import "github.com/shopspring/decimal"

const (
	StatusCritical  = "critical"
	StatusNearLimit = "near_limit"
	StatusOK        = "ok"
	StatusNoLimit   = "no_limit"

	StatusBalanced = "balanced"
	StatusShort    = "short"
	StatusOver     = "over"
)

var (
	hundred            = decimal.NewFromInt(100)
	criticalThreshold  = decimal.NewFromInt(90)
	nearLimitThreshold = decimal.NewFromInt(80)
)

// OrZero treats an absent aggregate as zero.
func OrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// SafeSum adds values, counting NULL measures as zero.
func SafeSum(values ...decimal.NullDecimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(OrZero(v))
	}
	return total
}

// Sum folds fn over rows.
func Sum[T any](rows []T, fn func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(fn(row))
	}
	return total
}

func SumInt[T any](rows []T, fn func(T) int) int {
	total := 0
	for _, row := range rows {
		total += fn(row)
	}
	return total
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

func PercentInt(part, whole int) decimal.Decimal {
	return Percent(decimal.NewFromInt(int64(part)), decimal.NewFromInt(int64(whole)))
}

// Average returns total/count, or zero for an empty set.
func Average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}

// CreditUtilization classifies an outstanding balance against its limit:
// above 90% is critical, above 80% is near the limit.
func CreditUtilization(balance, limit decimal.Decimal) (decimal.Decimal, string) {
	if !limit.IsPositive() {
		return decimal.Zero, StatusNoLimit
	}
	utilization := Percent(balance, limit)
	switch {
	case utilization.GreaterThan(criticalThreshold):
		return utilization, StatusCritical
	case utilization.GreaterThan(nearLimitThreshold):
		return utilization, StatusNearLimit
	default:
		return utilization, StatusOK
	}
}

// ReconciliationStatus labels a cash variance (actual minus expected).
func ReconciliationStatus(variance decimal.Decimal) string {
	switch {
	case variance.IsNegative():
		return StatusShort
	case variance.IsPositive():
		return StatusOver
	default:
		return StatusBalanced
	}
}
