package repository

import (
	"context"
	"fmt"

	"stationreports/internal/domain"
	"stationreports/internal/report"

	"github.com/jackc/pgx/v5/pgtype"
)

// AttendanceSummary counts attendance statuses per active staff member. The
// date range sits in the join condition so staff with no rows still appear.
func (r *Repository) AttendanceSummary(ctx context.Context, f report.Filter) ([]domain.AttendanceRow, error) {
	var join predicates
	join.dateRange("a.attendance_date", f)

	staff := predicates{args: join.args}
	staff.clauses = append(staff.clauses, "st.status = 'active'")
	staff.eqID("st.id", f.StaffID)

	rows, err := r.pool.Query(ctx, `
		SELECT
			st.id,
			st.full_name,
			st.role,
			COUNT(a.id),
			COUNT(a.id) FILTER (WHERE a.status = 'present'),
			COUNT(a.id) FILTER (WHERE a.status = 'absent'),
			COUNT(a.id) FILTER (WHERE a.status = 'late'),
			COUNT(a.id) FILTER (WHERE a.status = 'leave')
		FROM staff st
		LEFT JOIN attendance a ON a.staff_id = st.id`+join.and()+staff.where()+`
		GROUP BY st.id, st.full_name, st.role
		ORDER BY st.full_name ASC, st.id ASC
	`, staff.args...)
	if err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	defer rows.Close()

	items := make([]domain.AttendanceRow, 0)
	for rows.Next() {
		var item domain.AttendanceRow
		if err := rows.Scan(
			&item.StaffID,
			&item.StaffName,
			&item.Role,
			&item.TotalDays,
			&item.PresentDays,
			&item.AbsentDays,
			&item.LateDays,
			&item.LeaveDays,
		); err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance rows: %w", err)
	}
	return items, nil
}

// CashReconciliations lists shift reconciliations in range. Missing amounts
// are read as zero.
func (r *Repository) CashReconciliations(ctx context.Context, f report.Filter) ([]domain.CashReconciliationRow, error) {
	var p predicates
	p.dateRange("cr.shift_date", f)
	p.eqID("cr.staff_id", f.StaffID)

	rows, err := r.pool.Query(ctx, `
		SELECT cr.id, cr.shift_date, cr.staff_id, st.full_name, cr.expected_amount, cr.actual_amount
		FROM cash_reconciliations cr
		JOIN staff st ON st.id = cr.staff_id`+p.where()+`
		ORDER BY cr.shift_date ASC, st.full_name ASC, cr.id ASC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("cash reconciliations: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CashReconciliationRow, 0)
	for rows.Next() {
		var (
			item             domain.CashReconciliationRow
			expected, actual pgtype.Numeric
		)
		if err := rows.Scan(&item.ID, &item.ShiftDate, &item.StaffID, &item.StaffName, &expected, &actual); err != nil {
			return nil, fmt.Errorf("scan cash reconciliation: %w", err)
		}
		item.ExpectedAmount = toDecimal(expected)
		item.ActualAmount = toDecimal(actual)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cash reconciliations: %w", err)
	}
	return items, nil
}
