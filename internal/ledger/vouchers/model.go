package vouchers

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType enumerates the accounting voucher kinds.
type VoucherType string

const (
	VoucherTypeIngreso  VoucherType = "INGRESO"
	VoucherTypeEgreso   VoucherType = "EGRESO"
	VoucherTypeAjuste   VoucherType = "AJUSTE"
	VoucherTypeApertura VoucherType = "APERTURA"
	VoucherTypeCierre   VoucherType = "CIERRE"
)

// Valid reports whether the type is a known voucher kind.
func (t VoucherType) Valid() bool {
	switch t {
	case VoucherTypeIngreso, VoucherTypeEgreso, VoucherTypeAjuste, VoucherTypeApertura, VoucherTypeCierre:
		return true
	}
	return false
}

// Prefix returns the consecutive-number prefix for the type.
func (t VoucherType) Prefix() string {
	return string(t)[:3]
}

// VoucherStatus enumerates lifecycle states. DRAFT vouchers are mutable;
// POSTED and VOID are terminal for edits.
type VoucherStatus string

const (
	StatusDraft  VoucherStatus = "DRAFT"
	StatusPosted VoucherStatus = "POSTED"
	StatusVoid   VoucherStatus = "VOID"
)

// Voucher is the transaction header. Totals are derived from the entries and
// recomputed at every mutation boundary, never trusted from storage alone.
type Voucher struct {
	ID           int64
	TenantID     int64
	Type         VoucherType
	Number       string
	Date         time.Time
	Description  string
	Reference    string
	Status       VoucherStatus
	FiscalYear   int
	FiscalPeriod int
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
	CreatedAt    time.Time
	PostedAt     *time.Time
	Entries      []Entry
}

// IsBalanced reports whether total debits equal total credits.
func (v Voucher) IsBalanced() bool {
	return v.TotalDebit.Equal(v.TotalCredit)
}

// Entry is one posting line. Exactly one of Debit or Credit is positive.
type Entry struct {
	ID           int64
	VoucherID    int64
	LineNumber   int
	AccountCode  string
	ThirdPartyID *int64
	CostCenterID *int64
	Description  string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	BaseValue    *decimal.Decimal
	TaxValue     *decimal.Decimal
	CreatedAt    time.Time
}

// IsDebit reports whether the line carries a debit amount.
func (e Entry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// IsCredit reports whether the line carries a credit amount.
func (e Entry) IsCredit() bool {
	return e.Credit.IsPositive()
}
