package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
)

// JournalRow is one line of the chronological entry listing (libro diario).
type JournalRow struct {
	Date          time.Time            `json:"date"`
	VoucherType   vouchers.VoucherType `json:"voucherType"`
	VoucherNumber string               `json:"voucherNumber"`
	VoucherID     int64                `json:"voucherId"`
	AccountCode   string               `json:"accountCode"`
	AccountName   string               `json:"accountName"`
	ThirdPartyID  *int64               `json:"thirdPartyId,omitempty"`
	Description   string               `json:"description,omitempty"`
	Debit         decimal.Decimal      `json:"debit"`
	Credit        decimal.Decimal      `json:"credit"`
}

// Journal is the chronological listing of all posted entries in a window.
// There is no balance column; the totals are gross sums for the period.
type Journal struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Rows         []JournalRow    `json:"rows"`
	TotalDebit   decimal.Decimal `json:"totalDebit"`
	TotalCredit  decimal.Decimal `json:"totalCredit"`
	TotalEntries int             `json:"totalEntries"`
}

// BuildJournal converts posted entry records into the journal report.
// Records must arrive ordered by date then voucher id.
func BuildJournal(from, to time.Time, records []EntryRecord) Journal {
	journal := Journal{
		From:        from,
		To:          to,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, rec := range records {
		journal.Rows = append(journal.Rows, JournalRow{
			Date:          rec.Date,
			VoucherType:   rec.VoucherType,
			VoucherNumber: rec.VoucherNumber,
			VoucherID:     rec.VoucherID,
			AccountCode:   rec.AccountCode,
			AccountName:   rec.AccountName,
			ThirdPartyID:  rec.ThirdPartyID,
			Description:   rec.Description,
			Debit:         rec.Debit,
			Credit:        rec.Credit,
		})
		journal.TotalDebit = journal.TotalDebit.Add(rec.Debit)
		journal.TotalCredit = journal.TotalCredit.Add(rec.Credit)
	}
	journal.TotalEntries = len(journal.Rows)
	return journal
}
