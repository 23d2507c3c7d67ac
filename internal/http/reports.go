package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stationreports/internal/auth"
	"stationreports/internal/domain"
	"stationreports/internal/metrics"
	"stationreports/internal/report"
	"stationreports/internal/repository"
	"stationreports/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// page describes one report screen. key doubles as the permission suffix.
type page struct {
	key         string
	title       string
	template    string
	path        string
	reportTypes []string
	entities    []string
	periodic    bool
	build       func(ctx context.Context, svc ReportService, f report.Filter) (builtReport, error)
}

type builtReport struct {
	report any
	filter report.Filter
	empty  bool
	chart  chartData
}

var reportPages = []page{
	{
		key:      "sales_profit",
		title:    "Sales Loss & Profit",
		template: "sales_profit.html",
		path:     "/reports/sales-profit",
		entities: []string{"fuel_type_id", "pump_id", "staff_id", "show_price_changes"},
		periodic: true,
		build:    buildSalesProfit,
	},
	{
		key:         "sales",
		title:       "Sales",
		template:    "sales.html",
		path:        "/reports/sales",
		reportTypes: []string{repository.SalesByPeriod, repository.SalesByStaff, repository.SalesByPump},
		entities:    []string{"fuel_type_id", "pump_id", "staff_id"},
		periodic:    true,
		build:       buildSales,
	},
	{
		key:         "fuel",
		title:       "Fuel",
		template:    "fuel.html",
		path:        "/reports/fuel",
		reportTypes: []string{service.FuelDispensing, service.FuelPurchases},
		entities:    []string{"fuel_type_id", "pump_id", "supplier_id", "payment_status"},
		build:       buildFuel,
	},
	{
		key:      "attendance",
		title:    "Attendance",
		template: "attendance.html",
		path:     "/reports/attendance",
		entities: []string{"staff_id"},
		build:    buildAttendance,
	},
	{
		key:      "staff",
		title:    "Staff Performance",
		template: "staff.html",
		path:     "/reports/staff",
		entities: []string{"staff_id"},
		build:    buildStaff,
	},
	{
		key:         "financial",
		title:       "Financial",
		template:    "financial.html",
		path:        "/reports/financial",
		reportTypes: []string{service.FinancialRevenue, service.FinancialPayments, service.FinancialCashReconciliation},
		entities:    []string{"fuel_type_id", "staff_id"},
		periodic:    true,
		build:       buildFinancial,
	},
	{
		key:         "credit",
		title:       "Credit",
		template:    "credit.html",
		path:        "/reports/credit",
		reportTypes: []string{service.CreditOutstandingBalances, service.CreditCustomerHistory},
		entities:    []string{"customer_id"},
		build:       buildCredit,
	},
}

// authorize renders the 403 panel and returns false when the viewer may not
// open p. Nothing is queried before it passes.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, p page) (*auth.Viewer, bool) {
	viewer, _ := auth.FromContext(r.Context())
	if viewer.CanView(p.key) {
		return viewer, true
	}
	metrics.PermissionDeniedTotal.WithLabelValues(p.key).Inc()
	h.log.Info("report access denied",
		zap.String("report", p.key),
		zap.String("request_id", RequestIDFromContext(r.Context())),
	)
	h.renderError(w, p, viewer, http.StatusForbidden, "You do not have permission to view this report.")
	return nil, false
}

// ShowReport renders p for the filters in the query string.
func (h *Handler) ShowReport(p page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := h.authorize(w, r, p)
		if !ok {
			return
		}
		ctx := r.Context()
		f := report.ResolveFilter(r.URL.Query(), h.now(), h.loc)

		built, err := p.build(ctx, h.svc, f)
		if err != nil {
			h.log.Error("build report",
				zap.String("report", p.key),
				zap.String("request_id", RequestIDFromContext(ctx)),
				zap.Error(err),
			)
			h.renderError(w, p, viewer, http.StatusInternalServerError, "The report could not be loaded. Please try again later.")
			return
		}

		options, err := h.svc.FilterOptions(ctx)
		if err != nil {
			h.log.Warn("load filter options", zap.String("report", p.key), zap.Error(err))
			options = domain.FilterOptions{}
		}

		data := h.basePage(p, viewer)
		data.Currency = h.svc.CurrencySymbol(ctx)
		data.Filter = built.filter
		data.Options = options
		data.Report = built.report
		data.Empty = built.empty
		data.Chart = built.chart
		h.render(w, p.template, http.StatusOK, data)
	}
}

// SubmitFilters normalizes a posted filter form and redirects to the
// bookmarkable GET form of the same page.
func (h *Handler) SubmitFilters(p page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := h.authorize(w, r, p)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			h.renderError(w, p, viewer, http.StatusBadRequest, "The filter form could not be read.")
			return
		}
		f := report.ResolveFilter(r.Form, h.now(), h.loc)
		http.Redirect(w, r, p.path+"?"+f.Query().Encode(), http.StatusFound)
	}
}

// FuelReport serves the fuel page and its purchase order detail lookup
// (?get_order_details=1&po_id=N).
func (h *Handler) FuelReport(p page) http.HandlerFunc {
	show := h.ShowReport(p)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("get_order_details") == "" {
			show(w, r)
			return
		}
		viewer, _ := auth.FromContext(r.Context())
		if !viewer.CanView(p.key) {
			metrics.PermissionDeniedTotal.WithLabelValues(p.key).Inc()
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		id, err := parseID(r.URL.Query().Get("po_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "po_id must be a positive integer")
			return
		}
		detail, err := h.svc.PurchaseOrderDetail(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "purchase order not found")
				return
			}
			h.log.Error("purchase order detail", zap.Int64("po_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load purchase order")
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func (h *Handler) basePage(p page, viewer *auth.Viewer) pageData {
	entities := make(map[string]bool, len(p.entities))
	for _, e := range p.entities {
		entities[e] = true
	}
	data := pageData{
		Title:       p.title,
		Path:        p.path,
		ReportTypes: p.reportTypes,
		Entities:    entities,
		Periodic:    p.periodic,
		Status:      http.StatusOK,
	}
	if viewer != nil {
		data.Viewer = viewer.Username
	}
	return data
}

func (h *Handler) renderError(w http.ResponseWriter, p page, viewer *auth.Viewer, status int, message string) {
	data := h.basePage(p, viewer)
	data.Error = message
	data.Status = status
	h.render(w, "error.html", status, data)
}

func (h *Handler) render(w http.ResponseWriter, tmpl string, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := renderPage(w, tmpl, data); err != nil {
		h.log.Error("render page", zap.String("template", tmpl), zap.Error(err))
	}
}

func buildSalesProfit(ctx context.Context, svc ReportService, f report.Filter) (builtReport, error) {
	out, err := svc.SalesProfit(ctx, f)
	if err != nil {
		return builtReport{}, err
	}
	return builtReport{
		report: out,
		filter: out.Filter,
		empty:  len(out.Periods) == 0,
		chart: newChart("line",
			labels(out.Periods, func(p domain.PeriodSummary) string { return report.PeriodLabel(p.PeriodDate, out.Filter.PeriodType) }),
			series("Revenue", out.Periods, func(p domain.PeriodSummary) decimal.Decimal { return p.Totals.TotalRevenue }),
			series("Profit", out.Periods, func(p domain.PeriodSummary) decimal.Decimal { return p.Totals.TotalProfit }),
			series("Lost profit", out.Periods, func(p domain.PeriodSummary) decimal.Decimal { return p.Totals.LostProfit }),
		),
	}, nil
}

func buildSales(ctx context.Context, svc ReportService, f report.Filter) (builtReport, error) {
	out, err := svc.Sales(ctx, f)
	if err != nil {
		return builtReport{}, err
	}
	return builtReport{
		report: out,
		filter: out.Filter,
		empty:  len(out.Rows) == 0,
		chart: newChart("bar",
			labels(out.Rows, func(r domain.SalesRow) string { return r.Label }),
			series("Revenue", out.Rows, func(r domain.SalesRow) decimal.Decimal { return r.TotalRevenue }),
			series("Volume", out.Rows, func(r domain.SalesRow) decimal.Decimal { return r.TotalVolume }),
		),
	}, nil
}

func buildFuel(ctx context.Context, svc ReportService, f report.Filter) (builtReport, error) {
	out, err := svc.Fuel(ctx, f)
	if err != nil {
		return builtReport{}, err
	}
	built := builtReport{report: out, filter: out.Filter}
	if out.Filter.ReportType == service.FuelPurchases {
		built.empty = len(out.Orders) == 0
		built.chart = newChart("bar",
			labels(out.Orders, func(o domain.PurchaseOrderRow) string { return fmt.Sprintf("PO #%d", o.ID) }),
			series("Total", out.Orders, func(o domain.PurchaseOrderRow) decimal.Decimal { return o.TotalAmount }),
			series("Paid", out.Orders, func(o domain.PurchaseOrderRow) decimal.Decimal { return o.PaidAmount }),
		)
		return built, nil
	}
	built.empty = len(out.Dispensing) == 0
	built.chart = newChart("pie",
		labels(out.Dispensing, func(d domain.FuelDispensingRow) string { return d.FuelName + " / " + d.PumpName }),
		series("Volume", out.Dispensing, func(d domain.FuelDispensingRow) decimal.Decimal { return d.TotalVolume }),
	)
	return built, nil
}

func buildAttendance(ctx context.Context, svc ReportService, f report.Filter) (builtReport, error) {
	out, err := svc.Attendance(ctx, f)
	if err != nil {
		return builtReport{}, err
	}
	return builtReport{
		report: out,
		filter: out.Filter,
		empty:  len(out.Rows) == 0,
		chart: newChart("bar",
			labels(out.Rows, func(r domain.AttendanceRow) string { return r.StaffName }),
			series("Attendance rate", out.Rows, func(r domain.AttendanceRow) decimal.Decimal { return r.AttendanceRate }),
		),
	}, nil
}

func buildStaff(ctx context.Context, svc ReportService, f report.Filter) (builtReport, error) {
	out, err := svc.StaffPerformance(ctx, f)
	if err != nil {
		return builtReport{}, err
	}
	return builtReport{
		report: out,
		filter: out.Filter,
		empty:  len(out.Rows) == 0,
		chart: newChart("bar",
			labels(out.Rows, func(r domain.StaffPerformanceRow) string { return r.StaffName }),
			series("Revenue", out.Rows, func(r domain.StaffPerformanceRow) decimal.Decimal { return r.TotalRevenue }),
		),
	}, nil
}

func buildFinancial(ctx context.Context, svc ReportService, f report.Filter) (builtReport, error) {
	out, err := svc.Financial(ctx, f)
	if err != nil {
		return builtReport{}, err
	}
	built := builtReport{report: out, filter: out.Filter}
	switch out.Filter.ReportType {
	case service.FinancialPayments:
		built.empty = len(out.Payments) == 0
		built.chart = newChart("pie",
			labels(out.Payments, func(p domain.PaymentMethodRow) string { return p.PaymentMethod }),
			series("Amount", out.Payments, func(p domain.PaymentMethodRow) decimal.Decimal { return p.Amount }),
		)
	case service.FinancialCashReconciliation:
		built.empty = len(out.Reconciliations) == 0
		built.chart = newChart("bar",
			labels(out.Reconciliations, func(c domain.CashReconciliationRow) string {
				return c.ShiftDate.Format(report.DateLayout) + " " + c.StaffName
			}),
			series("Variance", out.Reconciliations, func(c domain.CashReconciliationRow) decimal.Decimal { return c.Variance }),
		)
	default:
		built.empty = len(out.Revenue) == 0
		built.chart = newChart("bar",
			labels(out.Revenue, func(r domain.RevenueRow) string {
				return report.PeriodLabel(r.PeriodDate, out.Filter.PeriodType) + " " + r.FuelName
			}),
			series("Revenue", out.Revenue, func(r domain.RevenueRow) decimal.Decimal { return r.TotalRevenue }),
		)
	}
	return built, nil
}

func buildCredit(ctx context.Context, svc ReportService, f report.Filter) (builtReport, error) {
	out, err := svc.Credit(ctx, f)
	if err != nil {
		return builtReport{}, err
	}
	built := builtReport{report: out, filter: out.Filter}
	if out.Filter.ReportType == service.CreditCustomerHistory {
		built.empty = len(out.Transactions) == 0
		built.chart = newChart("line",
			labels(out.Transactions, func(t domain.CreditTransactionRow) string {
				return t.TransactionDate.In(out.Filter.Loc()).Format(time.DateOnly)
			}),
			series("Balance", out.Transactions, func(t domain.CreditTransactionRow) decimal.Decimal { return t.BalanceAfter }),
		)
		return built, nil
	}
	built.empty = len(out.Balances) == 0
	built.chart = newChart("bar",
		labels(out.Balances, func(b domain.CreditBalanceRow) string { return b.CustomerName }),
		series("Utilization", out.Balances, func(b domain.CreditBalanceRow) decimal.Decimal { return b.Utilization }),
	)
	return built, nil
}
