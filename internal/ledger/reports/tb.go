package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
)

// TrialBalanceRow shows one account's gross movement and its nature-adjusted
// net balance split into the debit or credit column.
type TrialBalanceRow struct {
	AccountCode    string               `json:"accountCode"`
	AccountName    string               `json:"accountName"`
	AccountType    accounts.AccountType `json:"accountType"`
	Nature         accounts.Nature      `json:"nature"`
	Level          int                  `json:"level"`
	DebitMovement  decimal.Decimal      `json:"debitMovement"`
	CreditMovement decimal.Decimal      `json:"creditMovement"`
	DebitBalance   decimal.Decimal      `json:"debitBalance"`
	CreditBalance  decimal.Decimal      `json:"creditBalance"`
}

// TrialBalance lists every account with movement up to the as-of date. The
// equality of the two balance columns is the end-to-end check that the whole
// ledger is internally consistent.
type TrialBalance struct {
	AsOf               time.Time         `json:"asOf"`
	Rows               []TrialBalanceRow `json:"rows"`
	TotalDebit         decimal.Decimal   `json:"totalDebit"`
	TotalCredit        decimal.Decimal   `json:"totalCredit"`
	TotalDebitBalance  decimal.Decimal   `json:"totalDebitBalance"`
	TotalCreditBalance decimal.Decimal   `json:"totalCreditBalance"`
	IsBalanced         bool              `json:"isBalanced"`
	TotalAccounts      int               `json:"totalAccounts"`
}

// BuildTrialBalance computes the report from the active accounts and their
// gross movement totals. Accounts without movement are left out.
func BuildTrialBalance(asOf time.Time, accts []accounts.Account, totals map[string]MovementTotal) TrialBalance {
	tb := TrialBalance{
		AsOf:               asOf,
		TotalDebit:         decimal.Zero,
		TotalCredit:        decimal.Zero,
		TotalDebitBalance:  decimal.Zero,
		TotalCreditBalance: decimal.Zero,
	}
	for _, account := range accts {
		movement, ok := totals[account.Code]
		if !ok {
			continue
		}
		if movement.Debit.IsZero() && movement.Credit.IsZero() {
			continue
		}

		// Net per nature, then split into whichever column leaves it
		// non-negative. A debit-normal account in credit position shows
		// its absolute value in the credit-balance column.
		var net decimal.Decimal
		if account.Nature == accounts.NatureDebito {
			net = movement.Debit.Sub(movement.Credit)
		} else {
			net = movement.Credit.Sub(movement.Debit)
		}
		debitBalance, creditBalance := decimal.Zero, decimal.Zero
		switch {
		case net.IsPositive():
			if account.Nature == accounts.NatureDebito {
				debitBalance = net
			} else {
				creditBalance = net
			}
		case net.IsNegative():
			if account.Nature == accounts.NatureDebito {
				creditBalance = net.Abs()
			} else {
				debitBalance = net.Abs()
			}
		}

		tb.Rows = append(tb.Rows, TrialBalanceRow{
			AccountCode:    account.Code,
			AccountName:    account.Name,
			AccountType:    account.Type,
			Nature:         account.Nature,
			Level:          account.Level,
			DebitMovement:  movement.Debit,
			CreditMovement: movement.Credit,
			DebitBalance:   debitBalance,
			CreditBalance:  creditBalance,
		})
		tb.TotalDebit = tb.TotalDebit.Add(movement.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(movement.Credit)
		tb.TotalDebitBalance = tb.TotalDebitBalance.Add(debitBalance)
		tb.TotalCreditBalance = tb.TotalCreditBalance.Add(creditBalance)
	}
	tb.IsBalanced = tb.TotalDebitBalance.Equal(tb.TotalCreditBalance)
	tb.TotalAccounts = len(tb.Rows)
	return tb
}
