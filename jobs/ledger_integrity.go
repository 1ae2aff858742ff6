package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	jobmetrics "github.com/cumbre-erp/cumbre/internal/jobs"
)

// LedgerIntegrityJob re-verifies the invariants the posting path guarantees:
// every posted voucher balances, and per-tenant gross debits equal gross
// credits. Drift means a bug or out-of-band writes, so it is logged at error
// level for alerting rather than repaired.
type LedgerIntegrityJob struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewLedgerIntegrityJob constructs the integrity job.
func NewLedgerIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{pool: pool, logger: logger, metrics: metrics}
}

// Handle processes TaskLedgerIntegrityCheck tasks.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("ledger_integrity_check")

	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	unbalanced, err := j.findUnbalancedVouchers(ctx, payload.TenantID)
	if err != nil {
		return tracker.End(err)
	}
	for _, v := range unbalanced {
		j.metrics.AddImbalances("voucher", v.TenantID, 1)
		j.logger.Error("posted voucher out of balance",
			slog.Int64("tenant_id", v.TenantID),
			slog.Int64("voucher_id", v.VoucherID),
			slog.String("voucher_number", v.Number),
			slog.String("debit", v.Debit.String()),
			slog.String("credit", v.Credit.String()))
	}

	drifted, err := j.findTenantDrift(ctx, payload.TenantID)
	if err != nil {
		return tracker.End(err)
	}
	for _, d := range drifted {
		j.metrics.AddImbalances("tenant", d.TenantID, 1)
		j.logger.Error("tenant ledger drift",
			slog.Int64("tenant_id", d.TenantID),
			slog.String("debit", d.Debit.String()),
			slog.String("credit", d.Credit.String()))
	}

	j.logger.Info("ledger integrity check finished",
		slog.Int64("tenant_id", payload.TenantID),
		slog.Int("unbalanced_vouchers", len(unbalanced)),
		slog.Int("drifted_tenants", len(drifted)))
	return tracker.End(nil)
}

type voucherImbalance struct {
	TenantID  int64
	VoucherID int64
	Number    string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

func (j *LedgerIntegrityJob) findUnbalancedVouchers(ctx context.Context, tenantID int64) ([]voucherImbalance, error) {
	query := `SELECT v.tenant_id, v.id, v.voucher_number,
COALESCE(SUM(e.debit_amount), 0), COALESCE(SUM(e.credit_amount), 0)
FROM vouchers v
JOIN voucher_entries e ON e.voucher_id = v.id
WHERE v.status = 'POSTED'`
	args := []any{}
	if tenantID > 0 {
		query += ` AND v.tenant_id = $1`
		args = append(args, tenantID)
	}
	query += ` GROUP BY v.tenant_id, v.id, v.voucher_number
HAVING COALESCE(SUM(e.debit_amount), 0) <> COALESCE(SUM(e.credit_amount), 0)`

	rows, err := j.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []voucherImbalance
	for rows.Next() {
		var v voucherImbalance
		if err := rows.Scan(&v.TenantID, &v.VoucherID, &v.Number, &v.Debit, &v.Credit); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type tenantDrift struct {
	TenantID int64
	Debit    decimal.Decimal
	Credit   decimal.Decimal
}

func (j *LedgerIntegrityJob) findTenantDrift(ctx context.Context, tenantID int64) ([]tenantDrift, error) {
	query := `SELECT v.tenant_id,
COALESCE(SUM(e.debit_amount), 0), COALESCE(SUM(e.credit_amount), 0)
FROM vouchers v
JOIN voucher_entries e ON e.voucher_id = v.id
WHERE v.status = 'POSTED'`
	args := []any{}
	if tenantID > 0 {
		query += ` AND v.tenant_id = $1`
		args = append(args, tenantID)
	}
	query += ` GROUP BY v.tenant_id
HAVING COALESCE(SUM(e.debit_amount), 0) <> COALESCE(SUM(e.credit_amount), 0)`

	rows, err := j.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tenantDrift
	for rows.Next() {
		var d tenantDrift
		if err := rows.Scan(&d.TenantID, &d.Debit, &d.Credit); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
