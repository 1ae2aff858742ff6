package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
	"github.com/cumbre-erp/cumbre/internal/ledger/balance"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
)

// GeneralLedgerRow is one movement of the single-account statement with the
// running balance after applying it.
type GeneralLedgerRow struct {
	Date          time.Time            `json:"date"`
	VoucherType   vouchers.VoucherType `json:"voucherType"`
	VoucherNumber string               `json:"voucherNumber"`
	VoucherID     int64                `json:"voucherId"`
	ThirdPartyID  *int64               `json:"thirdPartyId,omitempty"`
	Description   string               `json:"description,omitempty"`
	Debit         decimal.Decimal      `json:"debit"`
	Credit        decimal.Decimal      `json:"credit"`
	Balance       decimal.Decimal      `json:"balance"`
}

// GeneralLedger is the libro mayor for one account over a window.
type GeneralLedger struct {
	AccountCode    string             `json:"accountCode"`
	AccountName    string             `json:"accountName"`
	Nature         accounts.Nature    `json:"nature"`
	From           time.Time          `json:"from"`
	To             time.Time          `json:"to"`
	InitialBalance decimal.Decimal    `json:"initialBalance"`
	Rows           []GeneralLedgerRow `json:"rows"`
	TotalDebit     decimal.Decimal    `json:"totalDebit"`
	TotalCredit    decimal.Decimal    `json:"totalCredit"`
	FinalBalance   decimal.Decimal    `json:"finalBalance"`
	TotalEntries   int                `json:"totalEntries"`
}

// BuildGeneralLedger folds the window's records into rows with a running
// balance column starting from the opening balance. Records must arrive in
// (date, voucher id) order for the running column to be reproducible.
func BuildGeneralLedger(account accounts.Account, from, to time.Time, opening decimal.Decimal, records []EntryRecord) GeneralLedger {
	gl := GeneralLedger{
		AccountCode:    account.Code,
		AccountName:    account.Name,
		Nature:         account.Nature,
		From:           from,
		To:             to,
		InitialBalance: opening,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		FinalBalance:   opening,
	}
	running := opening
	for _, rec := range records {
		running = balance.Apply(account.Nature, running, rec.Debit, rec.Credit)
		gl.Rows = append(gl.Rows, GeneralLedgerRow{
			Date:          rec.Date,
			VoucherType:   rec.VoucherType,
			VoucherNumber: rec.VoucherNumber,
			VoucherID:     rec.VoucherID,
			ThirdPartyID:  rec.ThirdPartyID,
			Description:   rec.Description,
			Debit:         rec.Debit,
			Credit:        rec.Credit,
			Balance:       running,
		})
		gl.TotalDebit = gl.TotalDebit.Add(rec.Debit)
		gl.TotalCredit = gl.TotalCredit.Add(rec.Credit)
	}
	gl.FinalBalance = running
	gl.TotalEntries = len(gl.Rows)
	return gl
}
