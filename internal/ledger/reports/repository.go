package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
)

// EntryRecord is one posted entry joined with its voucher header, the shape
// every report row starts from. Only POSTED vouchers ever reach a report.
type EntryRecord struct {
	Date          time.Time
	VoucherID     int64
	VoucherType   vouchers.VoucherType
	VoucherNumber string
	LineNumber    int
	AccountCode   string
	AccountName   string
	ThirdPartyID  *int64
	Description   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// MovementTotal aggregates gross debit and credit for one account.
type MovementTotal struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Repository loads posted movement data for the report generators. All
// queries are read-only and filter on voucher status POSTED, which is how
// voided vouchers drop out of every balance.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordSelect = `SELECT v.date, v.id, v.voucher_type, v.voucher_number, e.line_number,
e.account_code, a.name, e.third_party_id, e.description, e.debit_amount, e.credit_amount
FROM voucher_entries e
JOIN vouchers v ON v.id = e.voucher_id
JOIN accounts a ON a.tenant_id = v.tenant_id AND a.code = e.account_code
WHERE v.tenant_id = $1 AND v.status = 'POSTED'`

// JournalRecords returns every posted entry with date in [from, toExclusive),
// optionally filtered by voucher type, in (date, voucher id, line) order.
// Ordering by id rather than number keeps insertion order once numbers pass
// four digits and sort lexicographically.
func (r *Repository) JournalRecords(ctx context.Context, tenantID int64, from, toExclusive time.Time, voucherType *vouchers.VoucherType) ([]EntryRecord, error) {
	query := recordSelect + ` AND v.date >= $2 AND v.date < $3`
	args := []any{tenantID, from, toExclusive}
	if voucherType != nil {
		query += ` AND v.voucher_type = $4`
		args = append(args, *voucherType)
	}
	query += ` ORDER BY v.date, v.id, e.line_number`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// AccountRecords returns an account's posted entries with date in
// [from, toExclusive) ordered by date then voucher id, the ordering the
// running balance contract demands.
func (r *Repository) AccountRecords(ctx context.Context, tenantID int64, accountCode string, from, toExclusive time.Time) ([]EntryRecord, error) {
	query := recordSelect + ` AND e.account_code = $2 AND v.date >= $3 AND v.date < $4
ORDER BY v.date, v.id, e.line_number`
	rows, err := r.pool.Query(ctx, query, tenantID, accountCode, from, toExclusive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// MovementTotals returns gross debit/credit per account over posted entries
// with date in [from, toExclusive), keyed by account code.
func (r *Repository) MovementTotals(ctx context.Context, tenantID int64, from, toExclusive time.Time) (map[string]MovementTotal, error) {
	rows, err := r.pool.Query(ctx, `SELECT e.account_code,
COALESCE(SUM(e.debit_amount), 0), COALESCE(SUM(e.credit_amount), 0)
FROM voucher_entries e
JOIN vouchers v ON v.id = e.voucher_id
WHERE v.tenant_id = $1 AND v.status = 'POSTED' AND v.date >= $2 AND v.date < $3
GROUP BY e.account_code`, tenantID, from, toExclusive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := make(map[string]MovementTotal)
	for rows.Next() {
		var code string
		var t MovementTotal
		if err := rows.Scan(&code, &t.Debit, &t.Credit); err != nil {
			return nil, err
		}
		totals[code] = t
	}
	return totals, rows.Err()
}

func collectRecords(rows pgx.Rows) ([]EntryRecord, error) {
	var out []EntryRecord
	for rows.Next() {
		var rec EntryRecord
		err := rows.Scan(&rec.Date, &rec.VoucherID, &rec.VoucherType, &rec.VoucherNumber, &rec.LineNumber,
			&rec.AccountCode, &rec.AccountName, &rec.ThirdPartyID, &rec.Description, &rec.Debit, &rec.Credit)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
