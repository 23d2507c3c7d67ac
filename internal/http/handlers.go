package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stationreports/internal/domain"
	"stationreports/internal/report"
	"stationreports/internal/service"

	"go.uber.org/zap"
)

// ReportService is the read side the report pages are rendered from.
type ReportService interface {
	SalesProfit(ctx context.Context, f report.Filter) (service.SalesProfitReport, error)
	Sales(ctx context.Context, f report.Filter) (service.SalesReport, error)
	Fuel(ctx context.Context, f report.Filter) (service.FuelReport, error)
	PurchaseOrderDetail(ctx context.Context, id int64) (domain.PurchaseOrderDetail, error)
	Attendance(ctx context.Context, f report.Filter) (service.AttendanceReport, error)
	StaffPerformance(ctx context.Context, f report.Filter) (service.StaffReport, error)
	Financial(ctx context.Context, f report.Filter) (service.FinancialReport, error)
	Credit(ctx context.Context, f report.Filter) (service.CreditReport, error)
	CurrencySymbol(ctx context.Context) string
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
}

type Handler struct {
	svc ReportService
	log *zap.Logger
	loc *time.Location
	now func() time.Time
}

func NewHandler(svc ReportService, log *zap.Logger, loc *time.Location) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, log: log, loc: loc, now: time.Now}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
