package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stationreports/internal/domain"
	"stationreports/internal/report"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type FuelPriceInput struct {
	FuelTypeID    int64
	SellingPrice  decimal.Decimal
	PurchasePrice decimal.Decimal
	EffectiveDate time.Time
}

const readingVolumeExpr = "COALESCE(mr.volume_dispensed, mr.closing_reading - mr.opening_reading)"

// ListMeterReadings returns raw readings in the filter's range, oldest first.
func (r *Repository) ListMeterReadings(ctx context.Context, f report.Filter) ([]domain.MeterReading, error) {
	var p predicates
	p.timeRange("mr.reading_at", f)
	p.eqID("p.fuel_type_id", f.FuelTypeID)
	p.eqID("mr.pump_id", f.PumpID)
	p.eqID("mr.staff_id", f.StaffID)

	rows, err := r.pool.Query(ctx, `
		SELECT
			mr.id,
			mr.pump_id,
			p.pump_name,
			mr.staff_id,
			p.fuel_type_id,
			ft.name,
			mr.reading_at,
			`+readingVolumeExpr+`
		FROM meter_readings mr
		JOIN pumps p ON p.id = mr.pump_id
		JOIN fuel_types ft ON ft.id = p.fuel_type_id`+p.where()+`
		ORDER BY mr.reading_at ASC, mr.id ASC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("list meter readings: %w", err)
	}
	defer rows.Close()

	readings := make([]domain.MeterReading, 0)
	for rows.Next() {
		var (
			item    domain.MeterReading
			staffID pgtype.Int8
			volume  pgtype.Numeric
		)
		if err := rows.Scan(
			&item.ID,
			&item.PumpID,
			&item.PumpName,
			&staffID,
			&item.FuelTypeID,
			&item.FuelName,
			&item.ReadingAt,
			&volume,
		); err != nil {
			return nil, fmt.Errorf("scan meter reading: %w", err)
		}
		item.StaffID = int8Ptr(staffID)
		item.Volume = toDecimal(volume)
		readings = append(readings, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meter readings: %w", err)
	}
	return readings, nil
}

// ListPriceHistory returns every price effective on or before upTo. The full
// history is needed so the first reading in range can find its predecessor.
func (r *Repository) ListPriceHistory(ctx context.Context, upTo time.Time, fuelTypeID *int64) ([]domain.PriceSnapshot, error) {
	var p predicates
	p.add("fp.effective_date <= %s::date", dateParam(upTo))
	p.eqID("fp.fuel_type_id", fuelTypeID)

	rows, err := r.pool.Query(ctx, `
		SELECT fp.fuel_type_id, ft.name, fp.selling_price, fp.purchase_price, fp.effective_date
		FROM fuel_prices fp
		JOIN fuel_types ft ON ft.id = fp.fuel_type_id`+p.where()+`
		ORDER BY fp.fuel_type_id ASC, fp.effective_date ASC, fp.id ASC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()

	prices := make([]domain.PriceSnapshot, 0)
	for rows.Next() {
		var (
			item              domain.PriceSnapshot
			selling, purchase pgtype.Numeric
		)
		if err := rows.Scan(&item.FuelTypeID, &item.FuelName, &selling, &purchase, &item.EffectiveDate); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		item.SellingPrice = toDecimal(selling)
		item.PurchasePrice = toDecimal(purchase)
		prices = append(prices, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prices: %w", err)
	}
	return prices, nil
}

// FuelDispensing sums metered volume per fuel type and pump.
func (r *Repository) FuelDispensing(ctx context.Context, f report.Filter) ([]domain.FuelDispensingRow, error) {
	var p predicates
	p.timeRange("mr.reading_at", f)
	p.eqID("p.fuel_type_id", f.FuelTypeID)
	p.eqID("mr.pump_id", f.PumpID)
	p.eqID("mr.staff_id", f.StaffID)

	rows, err := r.pool.Query(ctx, `
		SELECT
			ft.id,
			ft.name,
			p.id,
			p.pump_name,
			COUNT(mr.id),
			SUM(`+readingVolumeExpr+`)
		FROM meter_readings mr
		JOIN pumps p ON p.id = mr.pump_id
		JOIN fuel_types ft ON ft.id = p.fuel_type_id`+p.where()+`
		GROUP BY ft.id, ft.name, p.id, p.pump_name
		ORDER BY ft.name ASC, p.pump_name ASC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("fuel dispensing: %w", err)
	}
	defer rows.Close()

	items := make([]domain.FuelDispensingRow, 0)
	for rows.Next() {
		var (
			item   domain.FuelDispensingRow
			volume pgtype.Numeric
		)
		if err := rows.Scan(&item.FuelTypeID, &item.FuelName, &item.PumpID, &item.PumpName, &item.ReadingCount, &volume); err != nil {
			return nil, fmt.Errorf("scan fuel dispensing: %w", err)
		}
		item.TotalVolume = toDecimal(volume)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fuel dispensing: %w", err)
	}
	return items, nil
}

func (r *Repository) FuelTypeIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		"SELECT id FROM fuel_types WHERE LOWER(name) = LOWER($1)",
		strings.TrimSpace(name),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("find fuel type %q: %w", name, err)
	}
	return id, nil
}

// InsertFuelPrice stores a price row unless an identical one already exists.
// It reports whether a row was written.
func (r *Repository) InsertFuelPrice(ctx context.Context, input FuelPriceInput) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO fuel_prices (fuel_type_id, selling_price, purchase_price, effective_date)
		SELECT $1::bigint, $2::numeric, $3::numeric, $4::date
		WHERE NOT EXISTS (
			SELECT 1 FROM fuel_prices
			WHERE fuel_type_id = $1::bigint
				AND effective_date = $4::date
				AND selling_price = $2::numeric
				AND purchase_price = $3::numeric
		)
	`,
		input.FuelTypeID,
		input.SellingPrice.String(),
		input.PurchasePrice.String(),
		dateParam(input.EffectiveDate),
	)
	if err != nil {
		return false, fmt.Errorf("insert fuel price: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
