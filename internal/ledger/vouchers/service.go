package vouchers

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, tenantID, id int64) (Voucher, error)
	List(ctx context.Context, tenantID int64) ([]Voucher, error)
}

// AccountRegistry validates the accounts referenced by entries.
type AccountRegistry interface {
	EnsurePostable(ctx context.Context, tenantID int64, code string) (accounts.Account, error)
}

// PeriodGuard blocks postings into closed or locked fiscal periods.
type PeriodGuard interface {
	EnsureOpenForPosting(ctx context.Context, tenantID int64, date time.Time) error
}

// Service owns the voucher lifecycle: create, update, post, void, delete.
// All transition preconditions live here, not on the data records.
type Service struct {
	repo     RepositoryPort
	registry AccountRegistry
	guard    PeriodGuard
	now      func() time.Time
}

// NewService constructs the lifecycle manager.
func NewService(repo RepositoryPort, registry AccountRegistry, guard PeriodGuard) *Service {
	return &Service{repo: repo, registry: registry, guard: guard, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates entries against the registry and persists a DRAFT voucher
// with the next consecutive number for its (tenant, type). The draft does not
// have to balance; only posting enforces the balance invariant.
func (s *Service) Create(ctx context.Context, input CreateInput) (Voucher, error) {
	if err := input.Validate(); err != nil {
		return Voucher{}, err
	}
	if err := s.CheckEntries(ctx, input.TenantID, input.Entries); err != nil {
		return Voucher{}, err
	}

	var voucher Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		voucher, err = s.CreateInTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return Voucher{}, err
	}
	return voucher, nil
}

// CreateInTx persists a validated draft inside a caller-owned transaction.
// The caller is responsible for having run the same account checks Create
// does, or for calling Create instead.
func (s *Service) CreateInTx(ctx context.Context, tx TxRepository, input CreateInput) (Voucher, error) {
	debit, credit := Totals(input.Entries)
	voucher := Voucher{
		TenantID:     input.TenantID,
		Type:         input.Type,
		Date:         input.Date,
		Description:  input.Description,
		Reference:    input.Reference,
		Status:       StatusDraft,
		FiscalYear:   input.Date.Year(),
		FiscalPeriod: int(input.Date.Month()),
		TotalDebit:   debit,
		TotalCredit:  credit,
	}
	number, err := tx.NextNumber(ctx, input.TenantID, input.Type)
	if err != nil {
		return Voucher{}, err
	}
	voucher.Number = number
	inserted, err := tx.InsertVoucher(ctx, voucher)
	if err != nil {
		return Voucher{}, err
	}
	entries := buildEntries(inserted.ID, input.Entries)
	if err := tx.InsertEntries(ctx, inserted.ID, entries); err != nil {
		return Voucher{}, err
	}
	inserted.Entries = entries
	return inserted, nil
}

// Update replaces a draft voucher's header and entire entry set. Entries are
// deleted and reinserted; totals are recomputed from the new set.
func (s *Service) Update(ctx context.Context, tenantID, id int64, input UpdateInput) (Voucher, error) {
	if err := input.Validate(); err != nil {
		return Voucher{}, err
	}
	if err := s.CheckEntries(ctx, tenantID, input.Entries); err != nil {
		return Voucher{}, err
	}

	var voucher Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetVoucherForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return shared.ErrInvalidState
		}
		debit, credit := Totals(input.Entries)
		current.Date = input.Date
		current.Description = input.Description
		current.Reference = input.Reference
		current.FiscalYear = input.Date.Year()
		current.FiscalPeriod = int(input.Date.Month())
		current.TotalDebit = debit
		current.TotalCredit = credit
		if err := tx.UpdateDraft(ctx, current); err != nil {
			return err
		}
		if err := tx.DeleteEntries(ctx, current.ID); err != nil {
			return err
		}
		entries := buildEntries(current.ID, input.Entries)
		if err := tx.InsertEntries(ctx, current.ID, entries); err != nil {
			return err
		}
		current.Entries = entries
		voucher = current
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}
	return voucher, nil
}

// Post transitions a draft to POSTED. The balance check runs against totals
// recomputed from the stored entries inside the same transaction, so a racing
// Update cannot slip an unbalanced set past the check.
func (s *Service) Post(ctx context.Context, tenantID, id int64) (Voucher, error) {
	var voucher Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		voucher, err = s.PostInTx(ctx, tx, tenantID, id)
		return err
	})
	if err != nil {
		return Voucher{}, err
	}
	return voucher, nil
}

// PostInTx runs the posting transition inside a caller-owned transaction.
func (s *Service) PostInTx(ctx context.Context, tx TxRepository, tenantID, id int64) (Voucher, error) {
	current, err := tx.GetVoucherForUpdate(ctx, tenantID, id)
	if err != nil {
		return Voucher{}, err
	}
	if current.Status != StatusDraft {
		return Voucher{}, shared.ErrInvalidState
	}
	entries, err := tx.GetEntries(ctx, current.ID)
	if err != nil {
		return Voucher{}, err
	}
	if len(entries) < 2 {
		return Voucher{}, fmt.Errorf("%w: posting requires at least two entries", shared.ErrInvalidEntry)
	}
	debit, credit := entryTotals(entries)
	if !debit.Equal(credit) {
		return Voucher{}, shared.ErrUnbalanced
	}
	if s.guard != nil {
		if err := s.guard.EnsureOpenForPosting(ctx, current.TenantID, current.Date); err != nil {
			return Voucher{}, err
		}
	}
	if !current.TotalDebit.Equal(debit) || !current.TotalCredit.Equal(credit) {
		current.TotalDebit = debit
		current.TotalCredit = credit
		if err := tx.UpdateDraft(ctx, current); err != nil {
			return Voucher{}, err
		}
	}
	postedAt := s.now()
	if err := tx.MarkPosted(ctx, current.ID, postedAt); err != nil {
		return Voucher{}, err
	}
	current.Status = StatusPosted
	current.PostedAt = &postedAt
	current.Entries = entries
	return current, nil
}

// Void marks a posted voucher VOID. Entries stay in storage for audit; the
// aggregation engine excludes them by filtering on POSTED status.
func (s *Service) Void(ctx context.Context, tenantID, id int64) (Voucher, error) {
	var voucher Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetVoucherForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if current.Status != StatusPosted {
			return shared.ErrInvalidState
		}
		if err := tx.UpdateStatus(ctx, current.ID, StatusVoid); err != nil {
			return err
		}
		current.Status = StatusVoid
		voucher = current
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}
	return voucher, nil
}

// Delete removes a draft voucher and cascades its entries.
func (s *Service) Delete(ctx context.Context, tenantID, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetVoucherForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return shared.ErrInvalidState
		}
		if err := tx.DeleteEntries(ctx, current.ID); err != nil {
			return err
		}
		return tx.DeleteVoucher(ctx, current.ID)
	})
}

// Get returns a voucher with its entries.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Voucher, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// List returns a tenant's vouchers newest first.
func (s *Service) List(ctx context.Context, tenantID int64) ([]Voucher, error) {
	return s.repo.List(ctx, tenantID)
}

// CheckEntries verifies every referenced account is an active leaf and that
// third-party and cost-center requirements are satisfied.
func (s *Service) CheckEntries(ctx context.Context, tenantID int64, entries []EntryInput) error {
	for idx, entry := range entries {
		account, err := s.registry.EnsurePostable(ctx, tenantID, entry.AccountCode)
		if err != nil {
			return fmt.Errorf("line %d (%s): %w", idx+1, entry.AccountCode, err)
		}
		if account.RequiresThirdParty && entry.ThirdPartyID == nil {
			return fmt.Errorf("line %d (%s): %w", idx+1, entry.AccountCode, shared.ErrThirdPartyRequired)
		}
		if account.RequiresCostCenter && entry.CostCenterID == nil {
			return fmt.Errorf("line %d (%s): %w", idx+1, entry.AccountCode, shared.ErrCostCenterRequired)
		}
	}
	return nil
}

func buildEntries(voucherID int64, inputs []EntryInput) []Entry {
	out := make([]Entry, 0, len(inputs))
	for idx, in := range inputs {
		out = append(out, Entry{
			VoucherID:    voucherID,
			LineNumber:   idx + 1,
			AccountCode:  in.AccountCode,
			ThirdPartyID: in.ThirdPartyID,
			CostCenterID: in.CostCenterID,
			Description:  in.Description,
			Debit:        in.Debit,
			Credit:       in.Credit,
			BaseValue:    in.BaseValue,
			TaxValue:     in.TaxValue,
		})
	}
	return out
}

func entryTotals(entries []Entry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}
