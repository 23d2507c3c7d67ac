package report

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stationreports/internal/domain"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout        = "2006-01-02"
	DefaultRangeDays  = 30
	defaultPeriodType = domain.PeriodDaily
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Filter is the normalized set of report filters shared by every page.
type Filter struct {
	ReportType       string
	PeriodType       domain.PeriodType `validate:"required,oneof=daily weekly monthly"`
	StartDate        time.Time
	EndDate          time.Time
	FuelTypeID       *int64 `validate:"omitempty,gt=0"`
	StaffID          *int64 `validate:"omitempty,gt=0"`
	PumpID           *int64 `validate:"omitempty,gt=0"`
	SupplierID       *int64 `validate:"omitempty,gt=0"`
	CustomerID       *int64 `validate:"omitempty,gt=0"`
	PaymentStatus    string `validate:"omitempty,oneof=pending partial paid"`
	ShowPriceChanges bool

	// Malformed holds raw values of date parameters that could not be parsed.
	Malformed map[string]string

	Location *time.Location
}

// ResolveFilter reads filter parameters from values, applying the default
// trailing window ending today in loc.
func ResolveFilter(values url.Values, now time.Time, loc *time.Location) Filter {
	if loc == nil {
		loc = time.UTC
	}
	today := truncateDay(now.In(loc))

	f := Filter{
		ReportType: strings.ToLower(strings.TrimSpace(firstValue(values, "report_type", "type"))),
		PeriodType: domain.PeriodType(strings.ToLower(strings.TrimSpace(firstValue(values, "period_type", "group_by")))),
		StartDate:  today.AddDate(0, 0, -DefaultRangeDays),
		EndDate:    today,
		Location:   loc,
	}
	if f.PeriodType == "" {
		f.PeriodType = defaultPeriodType
	}

	if raw := strings.TrimSpace(values.Get("start_date")); raw != "" {
		if parsed, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
			f.StartDate = parsed
		} else {
			f.markMalformed("start_date", raw)
		}
	}
	if raw := strings.TrimSpace(values.Get("end_date")); raw != "" {
		if parsed, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
			f.EndDate = parsed
		} else {
			f.markMalformed("end_date", raw)
		}
	}

	f.FuelTypeID = parseID(values.Get("fuel_type_id"))
	f.StaffID = parseID(values.Get("staff_id"))
	f.PumpID = parseID(values.Get("pump_id"))
	f.SupplierID = parseID(values.Get("supplier_id"))
	f.CustomerID = parseID(values.Get("customer_id"))
	f.PaymentStatus = strings.ToLower(strings.TrimSpace(values.Get("payment_status")))
	f.ShowPriceChanges = parseFlag(values.Get("show_price_changes"))

	f.dropInvalid()
	return f
}

// WithReportType returns a copy whose ReportType is one of allowed, falling
// back to def.
func (f Filter) WithReportType(def string, allowed ...string) Filter {
	for _, candidate := range allowed {
		if f.ReportType == candidate {
			return f
		}
	}
	f.ReportType = def
	return f
}

// RangeStart is the inclusive lower bound of the date range.
func (f Filter) RangeStart() time.Time {
	return f.StartDate
}

// RangeEnd is the exclusive upper bound: the day after EndDate.
func (f Filter) RangeEnd() time.Time {
	return f.EndDate.AddDate(0, 0, 1)
}

// Empty reports whether the filter can never match a row.
func (f Filter) Empty() bool {
	return len(f.Malformed) > 0 || f.StartDate.After(f.EndDate)
}

func (f Filter) Loc() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// Query encodes the normalized filter for a bookmarkable GET URL.
func (f Filter) Query() url.Values {
	values := url.Values{}
	if f.ReportType != "" {
		values.Set("report_type", f.ReportType)
	}
	values.Set("period_type", string(f.PeriodType))
	values.Set("start_date", f.StartDate.Format(DateLayout))
	values.Set("end_date", f.EndDate.Format(DateLayout))
	for key, raw := range f.Malformed {
		values.Set(key, raw)
	}
	setID(values, "fuel_type_id", f.FuelTypeID)
	setID(values, "staff_id", f.StaffID)
	setID(values, "pump_id", f.PumpID)
	setID(values, "supplier_id", f.SupplierID)
	setID(values, "customer_id", f.CustomerID)
	if f.PaymentStatus != "" {
		values.Set("payment_status", f.PaymentStatus)
	}
	if f.ShowPriceChanges {
		values.Set("show_price_changes", "1")
	}
	return values
}

// MatchesReading applies the entity and range filters to a raw reading.
func (f Filter) MatchesReading(r domain.MeterReading) bool {
	if f.FuelTypeID != nil && r.FuelTypeID != *f.FuelTypeID {
		return false
	}
	if f.PumpID != nil && r.PumpID != *f.PumpID {
		return false
	}
	if f.StaffID != nil && (r.StaffID == nil || *r.StaffID != *f.StaffID) {
		return false
	}
	at := r.ReadingAt.In(f.Loc())
	return !at.Before(f.RangeStart()) && at.Before(f.RangeEnd())
}

func (f *Filter) markMalformed(key, raw string) {
	if f.Malformed == nil {
		f.Malformed = map[string]string{}
	}
	f.Malformed[key] = raw
}

// dropInvalid resets every field that fails validation to its default.
func (f *Filter) dropInvalid() {
	err := validate.Struct(f)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return
	}
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "PeriodType":
			f.PeriodType = defaultPeriodType
		case "FuelTypeID":
			f.FuelTypeID = nil
		case "StaffID":
			f.StaffID = nil
		case "PumpID":
			f.PumpID = nil
		case "SupplierID":
			f.SupplierID = nil
		case "CustomerID":
			f.CustomerID = nil
		case "PaymentStatus":
			f.PaymentStatus = ""
		}
	}
}

func firstValue(values url.Values, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

func parseID(raw string) *int64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func setID(values url.Values, key string, id *int64) {
	if id != nil {
		values.Set(key, strconv.FormatInt(*id, 10))
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
