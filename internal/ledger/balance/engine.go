// Package balance implements the read-side aggregation algorithms of the
// ledger: running balances, opening balances, and gross period movement over
// the set of POSTED entries. Everything here is pure; callers load movements
// from storage and hand them in.
package balance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
)

// Movement is one posted debit-or-credit against an account, stripped down to
// what aggregation needs. VoucherID ties the ordering contract to insertion
// order within a date.
type Movement struct {
	Date      time.Time
	VoucherID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Apply folds one movement into a balance using the account's nature:
// debit-normal accounts accumulate debit − credit, credit-normal accounts
// accumulate credit − debit. Every balance in the system derives from this
// one rule.
func Apply(nature accounts.Nature, balance, debit, credit decimal.Decimal) decimal.Decimal {
	if nature == accounts.NatureDebito {
		return balance.Add(debit).Sub(credit)
	}
	return balance.Sub(debit).Add(credit)
}

// Sort orders movements by date, then owning voucher id. Reports rely on this
// ordering being deterministic so a rerun reproduces the same running column.
func Sort(movements []Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		if movements[i].Date.Equal(movements[j].Date) {
			return movements[i].VoucherID < movements[j].VoucherID
		}
		return movements[i].Date.Before(movements[j].Date)
	})
}

// Balance folds a movement slice into a single figure starting from opening.
func Balance(nature accounts.Nature, opening decimal.Decimal, movements []Movement) decimal.Decimal {
	result := opening
	for _, m := range movements {
		result = Apply(nature, result, m.Debit, m.Credit)
	}
	return result
}

// Running returns the balance after each movement, starting from opening.
// Movements must already be in (date, voucher id) order.
func Running(nature accounts.Nature, opening decimal.Decimal, movements []Movement) []decimal.Decimal {
	out := make([]decimal.Decimal, len(movements))
	current := opening
	for i, m := range movements {
		current = Apply(nature, current, m.Debit, m.Credit)
		out[i] = current
	}
	return out
}

// InitialBalance computes the opening balance for a report window: the
// balance of every movement strictly before from.
func InitialBalance(nature accounts.Nature, movements []Movement, from time.Time) decimal.Decimal {
	result := decimal.Zero
	for _, m := range movements {
		if m.Date.Before(from) {
			result = Apply(nature, result, m.Debit, m.Credit)
		}
	}
	return result
}

// PeriodMovement sums gross debits and credits inside [from, to] without
// netting, as trial-balance style reports present them.
func PeriodMovement(movements []Movement, from, to time.Time) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	end := EndExclusive(to)
	for _, m := range movements {
		if m.Date.Before(from) || !m.Date.Before(end) {
			continue
		}
		debit = debit.Add(m.Debit)
		credit = credit.Add(m.Credit)
	}
	return debit, credit
}

// EndExclusive converts an inclusive as-of date into the exclusive upper
// bound used uniformly by every date window in the ledger: the start of the
// following day. Same-day postings are always included.
func EndExclusive(asOf time.Time) time.Time {
	return asOf.AddDate(0, 0, 1)
}
