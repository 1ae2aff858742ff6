package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/platform/httpx"
)

const accountColumns = `id, tenant_id, code, name, type, level, parent_code, nature,
requires_third_party, requires_cost_center, is_active, is_system, created_at, updated_at`

// Repository persists chart of accounts rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Type, &a.Level, &a.ParentCode,
		&a.Nature, &a.RequiresThirdParty, &a.RequiresCostCenter, &a.IsActive, &a.IsSystem,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// GetByCode fetches a single account by its code within a tenant.
func (r *Repository) GetByCode(ctx context.Context, tenantID int64, code string) (Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 AND code=$2`, tenantID, code)
	return scanAccount(row)
}

// ListActiveLeaf returns the postable accounts ordered by code.
func (r *Repository) ListActiveLeaf(ctx context.Context, tenantID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts
WHERE tenant_id=$1 AND is_active AND level=$2 ORDER BY code`, tenantID, LeafLevel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListByCodeRange returns active leaf accounts of a type with codes inside
// [start, end], ordered by code. Comparison is lexicographic, matching the
// hierarchical PUC numbering.
func (r *Repository) ListByCodeRange(ctx context.Context, tenantID int64, accountType AccountType, start, end string) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts
WHERE tenant_id=$1 AND is_active AND level=$2 AND type=$3 AND code >= $4 AND code <= $5
ORDER BY code`, tenantID, LeafLevel, accountType, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListAll returns every account of a tenant ordered by code.
func (r *Repository) ListAll(ctx context.Context, tenantID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// Insert stores a new account. Codes are unique per tenant.
func (r *Repository) Insert(ctx context.Context, a Account) (Account, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO accounts
(tenant_id, code, name, type, level, parent_code, nature, requires_third_party, requires_cost_center, is_active, is_system)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id, created_at, updated_at`,
		a.TenantID, a.Code, a.Name, a.Type, a.Level, a.ParentCode, a.Nature,
		a.RequiresThirdParty, a.RequiresCostCenter, a.IsActive, a.IsSystem)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, httpx.ErrDuplicate
		}
		return Account{}, err
	}
	return a, nil
}

// Update modifies mutable account attributes. Type and nature stay fixed once
// postings exist, so only name and flags are writable here.
func (r *Repository) Update(ctx context.Context, tenantID int64, code, name string, isActive bool) (Account, error) {
	row := r.pool.QueryRow(ctx, `UPDATE accounts SET name=$3, is_active=$4, updated_at=NOW()
WHERE tenant_id=$1 AND code=$2 RETURNING `+accountColumns, tenantID, code, name, isActive)
	return scanAccount(row)
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	var out []Account
	for rows.Next() {
		var a Account
		err := rows.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Type, &a.Level, &a.ParentCode,
			&a.Nature, &a.RequiresThirdParty, &a.RequiresCostCenter, &a.IsActive, &a.IsSystem,
			&a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
