package vouchers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
)

// EntryInput describes one posting line in a create or update request.
type EntryInput struct {
	AccountCode  string
	ThirdPartyID *int64
	CostCenterID *int64
	Description  string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	BaseValue    *decimal.Decimal
	TaxValue     *decimal.Decimal
}

// Validate enforces the debit-xor-credit rule for a single line.
func (in EntryInput) Validate() error {
	if in.AccountCode == "" {
		return fmt.Errorf("%w: missing account code", shared.ErrInvalidEntry)
	}
	if in.Debit.IsNegative() || in.Credit.IsNegative() {
		return fmt.Errorf("%w: negative amount", shared.ErrInvalidEntry)
	}
	hasDebit := in.Debit.IsPositive()
	hasCredit := in.Credit.IsPositive()
	if hasDebit == hasCredit {
		return shared.ErrInvalidEntry
	}
	return nil
}

// CreateInput groups the fields required to open a draft voucher. Balance is
// not required at creation time; drafts may be saved as work in progress.
type CreateInput struct {
	TenantID    int64
	Type        VoucherType
	Date        time.Time
	Description string
	Reference   string
	Entries     []EntryInput
}

// Validate checks structural requirements of the request.
func (in CreateInput) Validate() error {
	if in.TenantID == 0 {
		return fmt.Errorf("%w: tenant required", shared.ErrValidation)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown voucher type %q", shared.ErrValidation, in.Type)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date required", shared.ErrValidation)
	}
	if len(in.Entries) == 0 {
		return fmt.Errorf("%w: at least one entry required", shared.ErrValidation)
	}
	for idx, entry := range in.Entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", idx+1, err)
		}
	}
	return nil
}

// UpdateInput replaces a draft voucher's header fields and entire entry set.
type UpdateInput struct {
	Date        time.Time
	Description string
	Reference   string
	Entries     []EntryInput
}

// Validate checks structural requirements of the request.
func (in UpdateInput) Validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date required", shared.ErrValidation)
	}
	if len(in.Entries) == 0 {
		return fmt.Errorf("%w: at least one entry required", shared.ErrValidation)
	}
	for idx, entry := range in.Entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", idx+1, err)
		}
	}
	return nil
}

// Totals sums the debit and credit columns of an entry set. This is the single
// place voucher totals are derived from line items.
func Totals(entries []EntryInput) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}
