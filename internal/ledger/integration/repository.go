package integration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
	"github.com/cumbre-erp/cumbre/internal/platform/db"
)

// TxStore is the transactional surface RequestVoucher needs: everything a
// voucher write needs plus source link persistence, on one transaction.
type TxStore interface {
	vouchers.TxRepository
	FindSourceLink(ctx context.Context, tenantID int64, module string, documentID uuid.UUID) (SourceLink, error)
	InsertSourceLink(ctx context.Context, link SourceLink) (SourceLink, error)
}

// Repository persists account mappings and source links.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes fn within a repeatable-read transaction whose store also
// carries the voucher write operations.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	if r == nil {
		return errors.New("integration: repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		store := &txStore{TxRepository: vouchers.NewTxRepository(tx), tx: tx}
		return fn(ctx, store)
	})
}

type txStore struct {
	vouchers.TxRepository
	tx pgx.Tx
}

func (s *txStore) FindSourceLink(ctx context.Context, tenantID int64, module string, documentID uuid.UUID) (SourceLink, error) {
	row := s.tx.QueryRow(ctx, `SELECT `+linkColumns+` FROM source_links
WHERE tenant_id=$1 AND source_module=$2 AND source_document_id=$3`, tenantID, module, documentID)
	return scanLink(row)
}

func (s *txStore) InsertSourceLink(ctx context.Context, link SourceLink) (SourceLink, error) {
	row := s.tx.QueryRow(ctx, `INSERT INTO source_links (tenant_id, source_module, source_document_id, voucher_id)
VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		link.TenantID, link.SourceModule, link.SourceDocumentID, link.VoucherID)
	if err := row.Scan(&link.ID, &link.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return SourceLink{}, shared.ErrSourceAlreadyLinked
		}
		return SourceLink{}, err
	}
	return link, nil
}

// FindSourceLink looks up an existing link outside a transaction. Used to
// report the already-linked voucher id on idempotent replays.
func (r *Repository) FindSourceLink(ctx context.Context, tenantID int64, module string, documentID uuid.UUID) (SourceLink, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+linkColumns+` FROM source_links
WHERE tenant_id=$1 AND source_module=$2 AND source_document_id=$3`, tenantID, module, documentID)
	return scanLink(row)
}

// GetMapping resolves one integration key to the tenant's account code.
func (r *Repository) GetMapping(ctx context.Context, tenantID int64, key string) (AccountMapping, error) {
	var m AccountMapping
	row := r.pool.QueryRow(ctx, `SELECT tenant_id, mapping_key, account_code, updated_at
FROM account_mappings WHERE tenant_id=$1 AND mapping_key=$2`, tenantID, key)
	if err := row.Scan(&m.TenantID, &m.Key, &m.AccountCode, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountMapping{}, shared.ErrMappingNotFound
		}
		return AccountMapping{}, err
	}
	return m, nil
}

// ListMappings returns the tenant's mapping table ordered by key.
func (r *Repository) ListMappings(ctx context.Context, tenantID int64) ([]AccountMapping, error) {
	rows, err := r.pool.Query(ctx, `SELECT tenant_id, mapping_key, account_code, updated_at
FROM account_mappings WHERE tenant_id=$1 ORDER BY mapping_key`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountMapping
	for rows.Next() {
		var m AccountMapping
		if err := rows.Scan(&m.TenantID, &m.Key, &m.AccountCode, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertMapping sets or replaces a tenant's mapping for one key.
func (r *Repository) UpsertMapping(ctx context.Context, m AccountMapping) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO account_mappings (tenant_id, mapping_key, account_code)
VALUES ($1,$2,$3)
ON CONFLICT (tenant_id, mapping_key) DO UPDATE SET account_code=EXCLUDED.account_code, updated_at=now()`,
		m.TenantID, m.Key, m.AccountCode)
	return err
}

// SeedMappings inserts the default PUC mappings for a tenant, leaving any
// existing overrides untouched.
func (r *Repository) SeedMappings(ctx context.Context, tenantID int64) error {
	for key, code := range DefaultMappings {
		_, err := r.pool.Exec(ctx, `INSERT INTO account_mappings (tenant_id, mapping_key, account_code)
VALUES ($1,$2,$3) ON CONFLICT (tenant_id, mapping_key) DO NOTHING`, tenantID, key, code)
		if err != nil {
			return err
		}
	}
	return nil
}

const linkColumns = `id, tenant_id, source_module, source_document_id, voucher_id, created_at`

func scanLink(row pgx.Row) (SourceLink, error) {
	var link SourceLink
	err := row.Scan(&link.ID, &link.TenantID, &link.SourceModule, &link.SourceDocumentID, &link.VoucherID, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SourceLink{}, ErrLinkNotFound
		}
		return SourceLink{}, err
	}
	return link, nil
}

// ErrLinkNotFound reports that no source link exists for the document.
var ErrLinkNotFound = errors.New("integration: source link not found")
