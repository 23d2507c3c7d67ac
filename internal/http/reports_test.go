package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"stationreports/internal/auth"
	"stationreports/internal/domain"
	"stationreports/internal/report"
	"stationreports/internal/repository"
	"stationreports/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeReports struct {
	calls       int
	err         error
	salesProfit service.SalesProfitReport
	sales       service.SalesReport
	detail      domain.PurchaseOrderDetail
	detailErr   error
	lastFilter  report.Filter
}

func (f *fakeReports) record(filter report.Filter) error {
	f.calls++
	f.lastFilter = filter
	return f.err
}

func (f *fakeReports) SalesProfit(_ context.Context, filter report.Filter) (service.SalesProfitReport, error) {
	out := f.salesProfit
	out.Filter = filter
	return out, f.record(filter)
}

func (f *fakeReports) Sales(_ context.Context, filter report.Filter) (service.SalesReport, error) {
	out := f.sales
	out.Filter = filter.WithReportType(repository.SalesByPeriod, repository.SalesByPeriod, repository.SalesByStaff, repository.SalesByPump)
	return out, f.record(filter)
}

func (f *fakeReports) Fuel(_ context.Context, filter report.Filter) (service.FuelReport, error) {
	return service.FuelReport{Filter: filter.WithReportType(service.FuelDispensing, service.FuelDispensing, service.FuelPurchases)}, f.record(filter)
}

func (f *fakeReports) PurchaseOrderDetail(_ context.Context, id int64) (domain.PurchaseOrderDetail, error) {
	f.calls++
	return f.detail, f.detailErr
}

func (f *fakeReports) Attendance(_ context.Context, filter report.Filter) (service.AttendanceReport, error) {
	return service.AttendanceReport{Filter: filter}, f.record(filter)
}

func (f *fakeReports) StaffPerformance(_ context.Context, filter report.Filter) (service.StaffReport, error) {
	return service.StaffReport{Filter: filter}, f.record(filter)
}

func (f *fakeReports) Financial(_ context.Context, filter report.Filter) (service.FinancialReport, error) {
	return service.FinancialReport{Filter: filter.WithReportType(service.FinancialRevenue, service.FinancialRevenue)}, f.record(filter)
}

func (f *fakeReports) Credit(_ context.Context, filter report.Filter) (service.CreditReport, error) {
	return service.CreditReport{Filter: filter.WithReportType(service.CreditOutstandingBalances, service.CreditOutstandingBalances)}, f.record(filter)
}

func (f *fakeReports) CurrencySymbol(context.Context) string { return "€" }

func (f *fakeReports) FilterOptions(context.Context) (domain.FilterOptions, error) {
	return domain.FilterOptions{
		FuelTypes: []domain.Option{{ID: 1, Name: "Diesel"}},
		Staff:     []domain.Option{{ID: 7, Name: "Alice"}},
	}, nil
}

func newTestServer(t *testing.T, svc *fakeReports) (http.Handler, *auth.Verifier) {
	t.Helper()
	h := NewHandler(svc, nil, time.UTC)
	h.now = func() time.Time { return time.Date(2026, 3, 31, 15, 0, 0, 0, time.UTC) }
	verifier := auth.NewVerifier(testSecret)
	return NewRouter(h, RouterConfig{Verifier: verifier}), verifier
}

func signedRequest(t *testing.T, verifier *auth.Verifier, viewer auth.Viewer, method, target string) *http.Request {
	t.Helper()
	token, err := verifier.Sign(viewer, time.Hour)
	require.NoError(t, err)
	r := httptest.NewRequest(method, target, nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: token})
	return r
}

func admin() auth.Viewer {
	return auth.Viewer{UserID: 1, Username: "root", Role: auth.RoleAdmin}
}

func TestReports_RequiresViewer(t *testing.T) {
	svc := &fakeReports{}
	router, _ := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/sales-profit", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You do not have permission to view this report.")
	assert.Zero(t, svc.calls)
}

func TestReports_NamedPermission(t *testing.T) {
	svc := &fakeReports{}
	router, verifier := newTestServer(t, svc)
	cashier := auth.Viewer{UserID: 5, Username: "amina", Role: "cashier", Permissions: []string{auth.ReportPermission("sales")}}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedRequest(t, verifier, cashier, http.MethodGet, "/reports/sales"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.calls)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, signedRequest(t, verifier, cashier, http.MethodGet, "/reports/credit"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, svc.calls)
}

func TestReports_RendersSalesProfit(t *testing.T) {
	period := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	totals := domain.Totals{
		TotalVolume:  decimal.RequireFromString("1000"),
		TotalRevenue: decimal.RequireFromString("1250000"),
		TotalProfit:  decimal.RequireFromString("150000"),
		LostProfit:   decimal.RequireFromString("-5000"),
	}
	svc := &fakeReports{salesProfit: service.SalesProfitReport{
		Periods: []domain.PeriodSummary{{
			PeriodKey:  "2026-03-02",
			PeriodDate: period,
			Fuels: []domain.PeriodFuelAggregate{{
				FuelTypeID:   1,
				FuelName:     "Diesel",
				TotalVolume:  totals.TotalVolume,
				SellingPrice: decimal.RequireFromString("1250"),
				TotalRevenue: totals.TotalRevenue,
				TotalProfit:  totals.TotalProfit,
				LostProfit:   totals.LostProfit,
			}},
			Totals: totals,
		}},
		Totals: totals,
		Fuels:  []domain.FuelTotal{},
	}}
	router, verifier := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedRequest(t, verifier, admin(), http.MethodGet, "/reports/sales-profit?start_date=2026-03-01&end_date=2026-03-07&fuel_type_id=1"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "€1,250,000.00")
	assert.Contains(t, body, "-€5,000.00")
	assert.Contains(t, body, "Mar 02, 2026")
	assert.Contains(t, body, `id="chart-data"`)
	assert.NotContains(t, body, "No data available")
	assert.Equal(t, int64(1), *svc.lastFilter.FuelTypeID)
	assert.Equal(t, "2026-03-07", svc.lastFilter.EndDate.Format(report.DateLayout))
}

func TestReports_NoDataPlaceholder(t *testing.T) {
	svc := &fakeReports{}
	router, verifier := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedRequest(t, verifier, admin(), http.MethodGet, "/reports/attendance?start_date=bad"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data available for the selected filters.")
	assert.Equal(t, map[string]string{"start_date": "bad"}, svc.lastFilter.Malformed)
}

func TestReports_BuildFailureRendersErrorPanel(t *testing.T) {
	svc := &fakeReports{err: errors.New("connection refused")}
	router, verifier := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedRequest(t, verifier, admin(), http.MethodGet, "/reports/financial"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "The report could not be loaded.")
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestReports_PostRedirectsToNormalizedQuery(t *testing.T) {
	svc := &fakeReports{}
	router, verifier := newTestServer(t, svc)

	form := url.Values{
		"start_date":   {"2026-03-01"},
		"end_date":     {"2026-03-31"},
		"group_by":     {"Weekly"},
		"fuel_type_id": {"abc"},
		"staff_id":     {"7"},
	}
	token, err := verifier.Sign(admin(), time.Hour)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/reports/sales-profit", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t,
		"/reports/sales-profit?end_date=2026-03-31&period_type=weekly&staff_id=7&start_date=2026-03-01",
		rec.Header().Get("Location"),
	)
	assert.Zero(t, svc.calls)
}

func TestReports_PurchaseOrderDetail(t *testing.T) {
	svc := &fakeReports{detail: domain.PurchaseOrderDetail{
		Order:      domain.PurchaseOrderRow{ID: 12, SupplierName: "Gulf Supply"},
		Deliveries: []domain.FuelDelivery{},
		Payments:   []domain.SupplierPayment{},
	}}
	router, verifier := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedRequest(t, verifier, admin(), http.MethodGet, "/reports/fuel?get_order_details=1&po_id=12"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got domain.PurchaseOrderDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(12), got.Order.ID)
	assert.Equal(t, "Gulf Supply", got.Order.SupplierName)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, signedRequest(t, verifier, admin(), http.MethodGet, "/reports/fuel?get_order_details=1&po_id=zero"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.detailErr = repository.ErrNotFound
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, signedRequest(t, verifier, admin(), http.MethodGet, "/reports/fuel?get_order_details=1&po_id=99"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"purchase order not found"}`, rec.Body.String())
}

func TestReports_FilterFormKeepsSelection(t *testing.T) {
	svc := &fakeReports{sales: service.SalesReport{Rows: []domain.SalesRow{{
		Label:        "Alice",
		SalesCount:   3,
		TotalVolume:  decimal.RequireFromString("30"),
		TotalRevenue: decimal.RequireFromString("300"),
		SharePercent: decimal.RequireFromString("100"),
	}}}}
	router, verifier := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedRequest(t, verifier, admin(), http.MethodGet, "/reports/sales?report_type=staff&staff_id=7"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="staff" selected>`)
	assert.Contains(t, body, `<option value="7" selected>Alice</option>`)
	assert.Contains(t, body, "100.0%")
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t, &fakeReports{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234,567.50", formatMoney("$", decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "-$12.30", formatMoney("$", decimal.RequireFromString("-12.3")))
	assert.Equal(t, "$0.00", formatMoney("$", decimal.Zero))
	assert.Equal(t, "999.00", groupThousands("999.00"))
	assert.Equal(t, "1,000", groupThousands("1000"))
}
