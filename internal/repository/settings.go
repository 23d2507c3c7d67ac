package repository

import (
	"context"
	"errors"
	"fmt"

	"stationreports/internal/domain"

	"github.com/jackc/pgx/v5"
)

const SettingCurrencySymbol = "currency_symbol"

func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		"SELECT setting_value FROM system_settings WHERE setting_key = $1",
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// FilterOptions loads the dropdown entries shared by the report forms.
func (r *Repository) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var (
		opts domain.FilterOptions
		err  error
	)
	if opts.Staff, err = r.listOptions(ctx, "staff", "SELECT id, full_name FROM staff WHERE status = 'active' ORDER BY full_name, id"); err != nil {
		return opts, err
	}
	if opts.FuelTypes, err = r.listOptions(ctx, "fuel types", "SELECT id, name FROM fuel_types ORDER BY name, id"); err != nil {
		return opts, err
	}
	if opts.Pumps, err = r.listOptions(ctx, "pumps", "SELECT id, pump_name FROM pumps ORDER BY pump_name, id"); err != nil {
		return opts, err
	}
	if opts.Suppliers, err = r.listOptions(ctx, "suppliers", "SELECT id, name FROM suppliers ORDER BY name, id"); err != nil {
		return opts, err
	}
	if opts.Customers, err = r.listOptions(ctx, "customers", "SELECT id, customer_name FROM credit_customers ORDER BY customer_name, id"); err != nil {
		return opts, err
	}
	return opts, nil
}

func (r *Repository) listOptions(ctx context.Context, label, query string) ([]domain.Option, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", label, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Option, error) {
		var item domain.Option
		err := row.Scan(&item.ID, &item.Name)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", label, err)
	}
	return items, nil
}
