package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/platform/db"
)

// Repository persists vouchers and their entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations that must share one transaction.
type TxRepository interface {
	NextNumber(ctx context.Context, tenantID int64, voucherType VoucherType) (string, error)
	InsertVoucher(ctx context.Context, v Voucher) (Voucher, error)
	InsertEntries(ctx context.Context, voucherID int64, entries []Entry) error
	DeleteEntries(ctx context.Context, voucherID int64) error
	GetVoucherForUpdate(ctx context.Context, tenantID, id int64) (Voucher, error)
	GetEntries(ctx context.Context, voucherID int64) ([]Entry, error)
	UpdateDraft(ctx context.Context, v Voucher) error
	MarkPosted(ctx context.Context, id int64, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status VoucherStatus) error
	DeleteVoucher(ctx context.Context, id int64) error
}

// WithTx executes fn within a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("vouchers: repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

// NewTxRepository wraps an externally owned transaction so other packages can
// compose voucher writes with their own statements atomically.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

// NextNumber advances the per (tenant, type) sequence and renders the
// consecutive voucher number. The upsert keeps the read-increment-write
// atomic, so two concurrent creates can never observe the same last number.
func (r *txRepository) NextNumber(ctx context.Context, tenantID int64, voucherType VoucherType) (string, error) {
	var next int64
	err := r.tx.QueryRow(ctx, `INSERT INTO voucher_sequences (tenant_id, voucher_type, last_number)
VALUES ($1,$2,1)
ON CONFLICT (tenant_id, voucher_type)
DO UPDATE SET last_number = voucher_sequences.last_number + 1
RETURNING last_number`, tenantID, voucherType).Scan(&next)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", voucherType.Prefix(), next), nil
}

func (r *txRepository) InsertVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO vouchers
(tenant_id, voucher_type, voucher_number, date, description, reference, status, fiscal_year, fiscal_period, total_debit, total_credit)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id, created_at`,
		v.TenantID, v.Type, v.Number, v.Date, v.Description, v.Reference, v.Status,
		v.FiscalYear, v.FiscalPeriod, v.TotalDebit, v.TotalCredit)
	if err := row.Scan(&v.ID, &v.CreatedAt); err != nil {
		return Voucher{}, err
	}
	return v, nil
}

func (r *txRepository) InsertEntries(ctx context.Context, voucherID int64, entries []Entry) error {
	for _, e := range entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO voucher_entries
(voucher_id, line_number, account_code, third_party_id, cost_center_id, description, debit_amount, credit_amount, base_value, tax_value)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			voucherID, e.LineNumber, e.AccountCode, e.ThirdPartyID, e.CostCenterID,
			e.Description, e.Debit, e.Credit, e.BaseValue, e.TaxValue); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) DeleteEntries(ctx context.Context, voucherID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM voucher_entries WHERE voucher_id=$1`, voucherID)
	return err
}

func (r *txRepository) GetVoucherForUpdate(ctx context.Context, tenantID, id int64) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers
WHERE tenant_id=$1 AND id=$2 FOR UPDATE`, tenantID, id)
	return scanVoucher(row)
}

func (r *txRepository) GetEntries(ctx context.Context, voucherID int64) ([]Entry, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+entryColumns+` FROM voucher_entries
WHERE voucher_id=$1 ORDER BY line_number`, voucherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *txRepository) UpdateDraft(ctx context.Context, v Voucher) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE vouchers
SET date=$2, description=$3, reference=$4, fiscal_year=$5, fiscal_period=$6, total_debit=$7, total_credit=$8
WHERE id=$1`, v.ID, v.Date, v.Description, v.Reference, v.FiscalYear, v.FiscalPeriod, v.TotalDebit, v.TotalCredit)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) MarkPosted(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE vouchers SET status=$2, posted_at=$3 WHERE id=$1`,
		id, StatusPosted, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) UpdateStatus(ctx context.Context, id int64, status VoucherStatus) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE vouchers SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) DeleteVoucher(ctx context.Context, id int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM vouchers WHERE id=$1`, id)
	return err
}

const voucherColumns = `id, tenant_id, voucher_type, voucher_number, date, description, reference,
status, fiscal_year, fiscal_period, total_debit, total_credit, created_at, posted_at`

const entryColumns = `id, voucher_id, line_number, account_code, third_party_id, cost_center_id,
description, debit_amount, credit_amount, base_value, tax_value, created_at`

func scanVoucher(row pgx.Row) (Voucher, error) {
	var v Voucher
	err := row.Scan(&v.ID, &v.TenantID, &v.Type, &v.Number, &v.Date, &v.Description, &v.Reference,
		&v.Status, &v.FiscalYear, &v.FiscalPeriod, &v.TotalDebit, &v.TotalCredit, &v.CreatedAt, &v.PostedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, shared.ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	return v, nil
}

func collectEntries(rows pgx.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.VoucherID, &e.LineNumber, &e.AccountCode, &e.ThirdPartyID,
			&e.CostCenterID, &e.Description, &e.Debit, &e.Credit, &e.BaseValue, &e.TaxValue, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get fetches a voucher with its entries outside of a write transaction.
func (r *Repository) Get(ctx context.Context, tenantID, id int64) (Voucher, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	voucher, err := scanVoucher(row)
	if err != nil {
		return Voucher{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM voucher_entries
WHERE voucher_id=$1 ORDER BY line_number`, id)
	if err != nil {
		return Voucher{}, err
	}
	defer rows.Close()
	voucher.Entries, err = collectEntries(rows)
	if err != nil {
		return Voucher{}, err
	}
	return voucher, nil
}

// List returns a tenant's vouchers newest first, without entries.
func (r *Repository) List(ctx context.Context, tenantID int64) ([]Voucher, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+voucherColumns+` FROM vouchers
WHERE tenant_id=$1 ORDER BY date DESC, id DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Voucher
	for rows.Next() {
		var v Voucher
		err := rows.Scan(&v.ID, &v.TenantID, &v.Type, &v.Number, &v.Date, &v.Description, &v.Reference,
			&v.Status, &v.FiscalYear, &v.FiscalPeriod, &v.TotalDebit, &v.TotalCredit, &v.CreatedAt, &v.PostedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
