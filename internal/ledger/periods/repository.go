package periods

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPeriodNotFound indicates no period row exists for the bucket.
var ErrPeriodNotFound = errors.New("periods: fiscal period not found")

// Repository persists fiscal periods.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const periodColumns = `id, tenant_id, year, month, status, closed_at, created_at, updated_at`

// Get fetches the period row for (tenant, year, month).
func (r *Repository) Get(ctx context.Context, tenantID int64, year, month int) (FiscalPeriod, error) {
	var p FiscalPeriod
	err := r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods
WHERE tenant_id=$1 AND year=$2 AND month=$3`, tenantID, year, month).
		Scan(&p.ID, &p.TenantID, &p.Year, &p.Month, &p.Status, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FiscalPeriod{}, ErrPeriodNotFound
		}
		return FiscalPeriod{}, err
	}
	return p, nil
}

// Upsert creates the period bucket or updates its status.
func (r *Repository) Upsert(ctx context.Context, tenantID int64, year, month int, status PeriodStatus) (FiscalPeriod, error) {
	var p FiscalPeriod
	err := r.pool.QueryRow(ctx, `INSERT INTO fiscal_periods (tenant_id, year, month, status)
VALUES ($1,$2,$3,$4)
ON CONFLICT (tenant_id, year, month)
DO UPDATE SET status=EXCLUDED.status,
  closed_at=CASE WHEN EXCLUDED.status <> 'OPEN' THEN NOW() ELSE NULL END,
  updated_at=NOW()
RETURNING `+periodColumns, tenantID, year, month, status).
		Scan(&p.ID, &p.TenantID, &p.Year, &p.Month, &p.Status, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return FiscalPeriod{}, err
	}
	return p, nil
}

// List returns a tenant's period buckets for a year ordered by month.
func (r *Repository) List(ctx context.Context, tenantID int64, year int) ([]FiscalPeriod, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+periodColumns+` FROM fiscal_periods
WHERE tenant_id=$1 AND year=$2 ORDER BY month`, tenantID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FiscalPeriod
	for rows.Next() {
		var p FiscalPeriod
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Year, &p.Month, &p.Status, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
