package reports

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
	"github.com/cumbre-erp/cumbre/internal/ledger/balance"
	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
)

// RepositoryPort is what Service needs from the movement store.
type RepositoryPort interface {
	JournalRecords(ctx context.Context, tenantID int64, from, toExclusive time.Time, voucherType *vouchers.VoucherType) ([]EntryRecord, error)
	AccountRecords(ctx context.Context, tenantID int64, accountCode string, from, toExclusive time.Time) ([]EntryRecord, error)
	MovementTotals(ctx context.Context, tenantID int64, from, toExclusive time.Time) (map[string]MovementTotal, error)
}

// AccountSource resolves chart-of-accounts data for report assembly.
type AccountSource interface {
	Get(ctx context.Context, tenantID int64, code string) (accounts.Account, error)
	List(ctx context.Context, tenantID int64) ([]accounts.Account, error)
}

// Service generates the five ledger reports from posted movement.
type Service struct {
	repo     RepositoryPort
	registry AccountSource
}

// NewService constructs Service.
func NewService(repo RepositoryPort, registry AccountSource) *Service {
	return &Service{repo: repo, registry: registry}
}

func validateRange(from, to time.Time) error {
	if from.After(to) {
		return shared.ErrInvalidRange
	}
	return nil
}

// sortRecords enforces the deterministic (date, voucher id, line) ordering
// contract regardless of how the store returned the rows. Voucher numbers are
// not usable here: "ING-10000" sorts before "ING-2000" lexicographically.
func sortRecords(records []EntryRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		if records[i].VoucherID != records[j].VoucherID {
			return records[i].VoucherID < records[j].VoucherID
		}
		return records[i].LineNumber < records[j].LineNumber
	})
}

// Journal returns the chronological book of posted entries for [from, to],
// optionally restricted to one voucher type.
func (s *Service) Journal(ctx context.Context, tenantID int64, from, to time.Time, voucherType *vouchers.VoucherType) (Journal, error) {
	if err := validateRange(from, to); err != nil {
		return Journal{}, err
	}
	records, err := s.repo.JournalRecords(ctx, tenantID, from, balance.EndExclusive(to), voucherType)
	if err != nil {
		return Journal{}, err
	}
	sortRecords(records)
	return BuildJournal(from, to, records), nil
}

// GeneralLedger returns one account's movement over [from, to] with a running
// balance column seeded from everything posted before the window.
func (s *Service) GeneralLedger(ctx context.Context, tenantID int64, accountCode string, from, to time.Time) (GeneralLedger, error) {
	if err := validateRange(from, to); err != nil {
		return GeneralLedger{}, err
	}
	account, err := s.registry.Get(ctx, tenantID, accountCode)
	if err != nil {
		return GeneralLedger{}, err
	}

	g, ctx := errgroup.WithContext(ctx)
	var prior, period []EntryRecord
	g.Go(func() error {
		var err error
		prior, err = s.repo.AccountRecords(ctx, tenantID, accountCode, time.Time{}, from)
		return err
	})
	g.Go(func() error {
		var err error
		period, err = s.repo.AccountRecords(ctx, tenantID, accountCode, from, balance.EndExclusive(to))
		return err
	})
	if err := g.Wait(); err != nil {
		return GeneralLedger{}, err
	}

	opening := decimal.Zero
	for _, rec := range prior {
		opening = balance.Apply(account.Nature, opening, rec.Debit, rec.Credit)
	}
	sortRecords(period)
	return BuildGeneralLedger(account, from, to, opening, period), nil
}

// TrialBalance returns every moved account's cumulative position as of the
// given date, split into debit and credit balance columns.
func (s *Service) TrialBalance(ctx context.Context, tenantID int64, asOf time.Time) (TrialBalance, error) {
	accts, totals, err := s.chartAndTotals(ctx, tenantID, balance.EndExclusive(asOf))
	if err != nil {
		return TrialBalance{}, err
	}
	return BuildTrialBalance(asOf, accts, totals), nil
}

// BalanceSheet returns the statement of financial position as of the given
// date, sectioned by the PUC code ranges.
func (s *Service) BalanceSheet(ctx context.Context, tenantID int64, asOf time.Time) (BalanceSheet, error) {
	accts, totals, err := s.chartAndTotals(ctx, tenantID, balance.EndExclusive(asOf))
	if err != nil {
		return BalanceSheet{}, err
	}
	balances := make(map[string]decimal.Decimal, len(totals))
	for _, account := range accts {
		movement, ok := totals[account.Code]
		if !ok {
			continue
		}
		balances[account.Code] = balance.Apply(account.Nature, decimal.Zero, movement.Debit, movement.Credit)
	}
	return BuildBalanceSheet(asOf, accts, balances), nil
}

// IncomeStatement returns the estado de resultados over [from, to]. Result
// accounts aggregate period movement, not cumulative balance.
func (s *Service) IncomeStatement(ctx context.Context, tenantID int64, from, to time.Time) (IncomeStatement, error) {
	if err := validateRange(from, to); err != nil {
		return IncomeStatement{}, err
	}
	g, ctx := errgroup.WithContext(ctx)
	var accts []accounts.Account
	var totals map[string]MovementTotal
	g.Go(func() error {
		var err error
		accts, err = s.registry.List(ctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.repo.MovementTotals(ctx, tenantID, from, balance.EndExclusive(to))
		return err
	})
	if err := g.Wait(); err != nil {
		return IncomeStatement{}, err
	}
	return BuildIncomeStatement(from, to, accts, totals), nil
}

func (s *Service) chartAndTotals(ctx context.Context, tenantID int64, toExclusive time.Time) ([]accounts.Account, map[string]MovementTotal, error) {
	g, ctx := errgroup.WithContext(ctx)
	var accts []accounts.Account
	var totals map[string]MovementTotal
	g.Go(func() error {
		var err error
		accts, err = s.registry.List(ctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.repo.MovementTotals(ctx, tenantID, time.Time{}, toExclusive)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return accts, totals, nil
}
