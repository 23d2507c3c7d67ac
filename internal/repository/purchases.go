package repository

import (
	"context"
	"errors"
	"fmt"

	"stationreports/internal/domain"
	"stationreports/internal/report"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const purchaseOrderSelect = `
	SELECT
		po.id,
		po.order_date,
		po.supplier_id,
		su.name,
		ft.name,
		po.quantity,
		po.unit_price,
		po.total_amount,
		d.delivered,
		pay.paid,
		po.payment_status,
		po.status
	FROM purchase_orders po
	JOIN suppliers su ON su.id = po.supplier_id
	JOIN fuel_types ft ON ft.id = po.fuel_type_id
	LEFT JOIN LATERAL (
		SELECT SUM(fd.quantity_received) AS delivered FROM fuel_deliveries fd WHERE fd.po_id = po.id
	) d ON TRUE
	LEFT JOIN LATERAL (
		SELECT SUM(sp.amount) AS paid FROM supplier_payments sp WHERE sp.po_id = po.id
	) pay ON TRUE
`

// ListPurchaseOrders returns supplier orders in range with delivered and
// paid totals.
func (r *Repository) ListPurchaseOrders(ctx context.Context, f report.Filter) ([]domain.PurchaseOrderRow, error) {
	var p predicates
	p.dateRange("po.order_date", f)
	p.eqID("po.supplier_id", f.SupplierID)
	p.eqID("po.fuel_type_id", f.FuelTypeID)
	if f.PaymentStatus != "" {
		p.add("po.payment_status = %s", f.PaymentStatus)
	}

	rows, err := r.pool.Query(ctx, purchaseOrderSelect+p.where()+`
		ORDER BY po.order_date DESC, po.id DESC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	items := make([]domain.PurchaseOrderRow, 0)
	for rows.Next() {
		item, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase orders: %w", err)
	}
	return items, nil
}

func (r *Repository) GetPurchaseOrderDetail(ctx context.Context, id int64) (domain.PurchaseOrderDetail, error) {
	order, err := scanPurchaseOrder(r.pool.QueryRow(ctx, purchaseOrderSelect+" WHERE po.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PurchaseOrderDetail{}, ErrNotFound
		}
		return domain.PurchaseOrderDetail{}, err
	}

	deliveries, err := r.listDeliveries(ctx, id)
	if err != nil {
		return domain.PurchaseOrderDetail{}, err
	}
	payments, err := r.listSupplierPayments(ctx, id)
	if err != nil {
		return domain.PurchaseOrderDetail{}, err
	}
	return domain.PurchaseOrderDetail{Order: order, Deliveries: deliveries, Payments: payments}, nil
}

func (r *Repository) listDeliveries(ctx context.Context, poID int64) ([]domain.FuelDelivery, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, delivery_date, quantity_received, notes
		FROM fuel_deliveries
		WHERE po_id = $1
		ORDER BY delivery_date ASC, id ASC
	`, poID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	items := make([]domain.FuelDelivery, 0)
	for rows.Next() {
		var (
			item     domain.FuelDelivery
			quantity pgtype.Numeric
			notes    pgtype.Text
		)
		if err := rows.Scan(&item.ID, &item.DeliveryDate, &quantity, &notes); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		item.QuantityReceived = toDecimal(quantity)
		item.Notes = textPtr(notes)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return items, nil
}

func (r *Repository) listSupplierPayments(ctx context.Context, poID int64) ([]domain.SupplierPayment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, payment_date, amount, payment_method, reference
		FROM supplier_payments
		WHERE po_id = $1
		ORDER BY payment_date ASC, id ASC
	`, poID)
	if err != nil {
		return nil, fmt.Errorf("list supplier payments: %w", err)
	}
	defer rows.Close()

	items := make([]domain.SupplierPayment, 0)
	for rows.Next() {
		var (
			item      domain.SupplierPayment
			amount    pgtype.Numeric
			reference pgtype.Text
		)
		if err := rows.Scan(&item.ID, &item.PaymentDate, &amount, &item.PaymentMethod, &reference); err != nil {
			return nil, fmt.Errorf("scan supplier payment: %w", err)
		}
		item.Amount = toDecimal(amount)
		item.Reference = textPtr(reference)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supplier payments: %w", err)
	}
	return items, nil
}

func scanPurchaseOrder(row pgx.Row) (domain.PurchaseOrderRow, error) {
	var (
		item                             domain.PurchaseOrderRow
		quantity, unitPrice, totalAmount pgtype.Numeric
		delivered, paid                  pgtype.Numeric
	)
	if err := row.Scan(
		&item.ID,
		&item.OrderDate,
		&item.SupplierID,
		&item.SupplierName,
		&item.FuelName,
		&quantity,
		&unitPrice,
		&totalAmount,
		&delivered,
		&paid,
		&item.PaymentStatus,
		&item.Status,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PurchaseOrderRow{}, err
		}
		return domain.PurchaseOrderRow{}, fmt.Errorf("scan purchase order: %w", err)
	}
	item.Quantity = toDecimal(quantity)
	item.UnitPrice = toDecimal(unitPrice)
	item.TotalAmount = toDecimal(totalAmount)
	item.DeliveredQty = toDecimal(delivered)
	item.PaidAmount = toDecimal(paid)
	return item, nil
}
