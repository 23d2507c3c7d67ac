package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stationreports/internal/report"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// Repository runs the read-only report queries plus the price import insert.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// predicates accumulates AND-ed WHERE clauses with positional arguments.
type predicates struct {
	clauses []string
	args    []any
}

func (p *predicates) arg(value any) string {
	p.args = append(p.args, value)
	return fmt.Sprintf("$%d", len(p.args))
}

func (p *predicates) add(format string, values ...any) {
	placeholders := make([]any, 0, len(values))
	for _, v := range values {
		placeholders = append(placeholders, p.arg(v))
	}
	p.clauses = append(p.clauses, fmt.Sprintf(format, placeholders...))
}

// eqID adds column = id when the id filter is set.
func (p *predicates) eqID(column string, id *int64) {
	if id != nil {
		p.add(column+" = %s", *id)
	}
}

// timeRange restricts a TIMESTAMPTZ column to [start, end).
func (p *predicates) timeRange(column string, f report.Filter) {
	p.add(column+" >= %s AND "+column+" < %s", f.RangeStart(), f.RangeEnd())
}

// dateRange restricts a DATE column to [start_date, end_date].
func (p *predicates) dateRange(column string, f report.Filter) {
	p.add(column+" BETWEEN %s::date AND %s::date", dateParam(f.StartDate), dateParam(f.EndDate))
}

func (p *predicates) where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}

func (p *predicates) and() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(p.clauses, " AND ")
}

func dateParam(t time.Time) string {
	return t.Format(report.DateLayout)
}

func nullDecimal(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromBigInt(n.Int, n.Exp), Valid: true}
}

// toDecimal folds a NULL aggregate into zero.
func toDecimal(n pgtype.Numeric) decimal.Decimal {
	return report.OrZero(nullDecimal(n))
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	value := t.String
	return &value
}

func int8Ptr(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	value := v.Int64
	return &value
}

func timePtr(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	value := v.Time
	return &value
}
