package repository

import (
	"context"
	"fmt"
	"time"

	"stationreports/internal/domain"
	"stationreports/internal/report"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	SalesByPeriod = "period"
	SalesByStaff  = "staff"
	SalesByPump   = "pump"
)

func salesPredicates(f report.Filter) predicates {
	var p predicates
	p.timeRange("s.sale_at", f)
	p.eqID("s.fuel_type_id", f.FuelTypeID)
	p.eqID("s.staff_id", f.StaffID)
	p.eqID("s.pump_id", f.PumpID)
	return p
}

// SalesSummary groups sales by period, staff or pump according to
// f.ReportType. Share percentages are left for the caller.
func (r *Repository) SalesSummary(ctx context.Context, f report.Filter) ([]domain.SalesRow, error) {
	p := salesPredicates(f)

	var query string
	switch f.ReportType {
	case SalesByStaff:
		query = `
			SELECT COALESCE(st.full_name, 'Unassigned'), NULL::date, COUNT(s.id), SUM(s.volume), SUM(s.total_amount)
			FROM sales s
			LEFT JOIN staff st ON st.id = s.staff_id` + p.where() + `
			GROUP BY st.id, st.full_name
			ORDER BY 5 DESC NULLS LAST, 1 ASC
		`
	case SalesByPump:
		query = `
			SELECT pu.pump_name, NULL::date, COUNT(s.id), SUM(s.volume), SUM(s.total_amount)
			FROM sales s
			JOIN pumps pu ON pu.id = s.pump_id` + p.where() + `
			GROUP BY pu.id, pu.pump_name
			ORDER BY pu.pump_name ASC
		`
	default:
		trunc := p.arg(report.SQLTrunc(f.PeriodType))
		zone := p.arg(f.Loc().String())
		query = `
			SELECT '', date_trunc(` + trunc + `, s.sale_at AT TIME ZONE ` + zone + `::text)::date, COUNT(s.id), SUM(s.volume), SUM(s.total_amount)
			FROM sales s` + p.where() + `
			GROUP BY 2
			ORDER BY 2 ASC
		`
	}

	rows, err := r.pool.Query(ctx, query, p.args...)
	if err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}
	defer rows.Close()

	items := make([]domain.SalesRow, 0)
	for rows.Next() {
		var (
			item           domain.SalesRow
			periodDate     pgtype.Date
			volume, amount pgtype.Numeric
		)
		if err := rows.Scan(&item.Label, &periodDate, &item.SalesCount, &volume, &amount); err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}
		if periodDate.Valid {
			date := periodDate.Time
			item.PeriodDate = &date
		}
		item.TotalVolume = toDecimal(volume)
		item.TotalRevenue = toDecimal(amount)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales rows: %w", err)
	}
	return items, nil
}

// StaffPerformance lists every active staff member with sales and
// attendance aggregates in range. Staff without activity keep zero counts.
func (r *Repository) StaffPerformance(ctx context.Context, f report.Filter) ([]domain.StaffPerformanceRow, error) {
	var p predicates
	start := p.arg(f.RangeStart())
	end := p.arg(f.RangeEnd())
	startDate := p.arg(dateParam(f.StartDate))
	endDate := p.arg(dateParam(f.EndDate))
	fuel := ""
	if f.FuelTypeID != nil {
		fuel = " AND s.fuel_type_id = " + p.arg(*f.FuelTypeID)
	}
	p.clauses = append(p.clauses, "st.status = 'active'")
	p.eqID("st.id", f.StaffID)

	rows, err := r.pool.Query(ctx, `
		SELECT
			st.id,
			st.full_name,
			st.role,
			COALESCE(sa.sales_count, 0),
			sa.total_volume,
			sa.total_revenue,
			COALESCE(att.total_days, 0),
			COALESCE(att.present_days, 0)
		FROM staff st
		LEFT JOIN (
			SELECT s.staff_id, COUNT(s.id) AS sales_count, SUM(s.volume) AS total_volume, SUM(s.total_amount) AS total_revenue
			FROM sales s
			WHERE s.sale_at >= `+start+` AND s.sale_at < `+end+fuel+`
			GROUP BY s.staff_id
		) sa ON sa.staff_id = st.id
		LEFT JOIN (
			SELECT a.staff_id, COUNT(a.id) AS total_days, COUNT(a.id) FILTER (WHERE a.status = 'present') AS present_days
			FROM attendance a
			WHERE a.attendance_date BETWEEN `+startDate+`::date AND `+endDate+`::date
			GROUP BY a.staff_id
		) att ON att.staff_id = st.id`+p.where()+`
		ORDER BY sa.total_revenue DESC NULLS LAST, st.full_name ASC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("staff performance: %w", err)
	}
	defer rows.Close()

	items := make([]domain.StaffPerformanceRow, 0)
	for rows.Next() {
		var (
			item            domain.StaffPerformanceRow
			volume, revenue pgtype.Numeric
		)
		if err := rows.Scan(
			&item.StaffID,
			&item.StaffName,
			&item.Role,
			&item.SalesCount,
			&volume,
			&revenue,
			&item.AttendanceDays,
			&item.PresentDays,
		); err != nil {
			return nil, fmt.Errorf("scan staff performance: %w", err)
		}
		item.TotalVolume = toDecimal(volume)
		item.TotalRevenue = toDecimal(revenue)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff performance: %w", err)
	}
	return items, nil
}

// RevenueByPeriod groups sales revenue by period bucket and fuel type.
func (r *Repository) RevenueByPeriod(ctx context.Context, f report.Filter) ([]domain.RevenueRow, error) {
	p := salesPredicates(f)
	trunc := p.arg(report.SQLTrunc(f.PeriodType))
	zone := p.arg(f.Loc().String())

	rows, err := r.pool.Query(ctx, `
		SELECT
			date_trunc(`+trunc+`, s.sale_at AT TIME ZONE `+zone+`::text)::date,
			ft.name,
			SUM(s.volume),
			SUM(s.total_amount)
		FROM sales s
		JOIN fuel_types ft ON ft.id = s.fuel_type_id`+p.where()+`
		GROUP BY 1, 2
		ORDER BY 1 ASC, 2 ASC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("revenue by period: %w", err)
	}
	defer rows.Close()

	items := make([]domain.RevenueRow, 0)
	for rows.Next() {
		var (
			item            domain.RevenueRow
			periodDate      time.Time
			volume, revenue pgtype.Numeric
		)
		if err := rows.Scan(&periodDate, &item.FuelName, &volume, &revenue); err != nil {
			return nil, fmt.Errorf("scan revenue row: %w", err)
		}
		item.PeriodDate = periodDate
		item.TotalVolume = toDecimal(volume)
		item.TotalRevenue = toDecimal(revenue)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revenue rows: %w", err)
	}
	return items, nil
}

// PaymentMethods totals sales per payment method.
func (r *Repository) PaymentMethods(ctx context.Context, f report.Filter) ([]domain.PaymentMethodRow, error) {
	p := salesPredicates(f)

	rows, err := r.pool.Query(ctx, `
		SELECT s.payment_method, COUNT(s.id), SUM(s.total_amount)
		FROM sales s`+p.where()+`
		GROUP BY s.payment_method
		ORDER BY 3 DESC NULLS LAST, 1 ASC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("payment methods: %w", err)
	}
	defer rows.Close()

	items := make([]domain.PaymentMethodRow, 0)
	for rows.Next() {
		var (
			item   domain.PaymentMethodRow
			amount pgtype.Numeric
		)
		if err := rows.Scan(&item.PaymentMethod, &item.Count, &amount); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		item.Amount = toDecimal(amount)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment methods: %w", err)
	}
	return items, nil
}
