package repository

import (
	"context"
	"fmt"

	"stationreports/internal/domain"
	"stationreports/internal/report"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	TransactionSale    = "sale"
	TransactionPayment = "payment"
)

// CreditBalances lists credit customers with their current balance and the
// date of their latest transaction.
func (r *Repository) CreditBalances(ctx context.Context, f report.Filter) ([]domain.CreditBalanceRow, error) {
	var p predicates
	p.eqID("cc.id", f.CustomerID)

	rows, err := r.pool.Query(ctx, `
		SELECT
			cc.id,
			cc.customer_name,
			cc.phone,
			cc.credit_limit,
			cc.current_balance,
			last_tx.transaction_date
		FROM credit_customers cc
		LEFT JOIN LATERAL (
			SELECT MAX(ct.transaction_date) AS transaction_date
			FROM credit_transactions ct
			WHERE ct.customer_id = cc.id
		) last_tx ON TRUE`+p.where()+`
		ORDER BY cc.current_balance DESC, cc.customer_name ASC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("credit balances: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CreditBalanceRow, 0)
	for rows.Next() {
		var (
			item           domain.CreditBalanceRow
			phone          pgtype.Text
			limit, balance pgtype.Numeric
			lastTx         pgtype.Timestamptz
		)
		if err := rows.Scan(&item.CustomerID, &item.CustomerName, &phone, &limit, &balance, &lastTx); err != nil {
			return nil, fmt.Errorf("scan credit balance: %w", err)
		}
		item.Phone = textPtr(phone)
		item.CreditLimit = toDecimal(limit)
		item.CurrentBalance = toDecimal(balance)
		item.LastTransactionAt = timePtr(lastTx)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit balances: %w", err)
	}
	return items, nil
}

// CreditTransactions returns transactions in range, oldest first, for one
// customer or all of them.
func (r *Repository) CreditTransactions(ctx context.Context, f report.Filter) ([]domain.CreditTransactionRow, error) {
	var p predicates
	p.timeRange("ct.transaction_date", f)
	p.eqID("ct.customer_id", f.CustomerID)

	rows, err := r.pool.Query(ctx, `
		SELECT
			ct.id,
			ct.customer_id,
			cc.customer_name,
			ct.transaction_date,
			ct.transaction_type,
			ct.amount,
			ct.balance_after,
			ct.reference
		FROM credit_transactions ct
		JOIN credit_customers cc ON cc.id = ct.customer_id`+p.where()+`
		ORDER BY ct.transaction_date ASC, ct.id ASC
	`, p.args...)
	if err != nil {
		return nil, fmt.Errorf("credit transactions: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CreditTransactionRow, 0)
	for rows.Next() {
		var (
			item                 domain.CreditTransactionRow
			amount, balanceAfter pgtype.Numeric
			reference            pgtype.Text
		)
		if err := rows.Scan(
			&item.ID,
			&item.CustomerID,
			&item.CustomerName,
			&item.TransactionDate,
			&item.TransactionType,
			&amount,
			&balanceAfter,
			&reference,
		); err != nil {
			return nil, fmt.Errorf("scan credit transaction: %w", err)
		}
		item.Amount = toDecimal(amount)
		item.BalanceAfter = toDecimal(balanceAfter)
		item.Reference = textPtr(reference)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit transactions: %w", err)
	}
	return items, nil
}
