package reports

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func day(dayOfMonth int) time.Time {
	return time.Date(2026, time.June, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func leaf(code, name string, accType accounts.AccountType, nature accounts.Nature) accounts.Account {
	return accounts.Account{
		Code:     code,
		Name:     name,
		Type:     accType,
		Level:    accounts.LeafLevel,
		Nature:   nature,
		IsActive: true,
	}
}

func record(dayOfMonth int, voucherID int64, code, debit, credit string) EntryRecord {
	return EntryRecord{
		Date:          day(dayOfMonth),
		VoucherID:     voucherID,
		VoucherType:   vouchers.VoucherTypeIngreso,
		VoucherNumber: fmt.Sprintf("ING-%04d", voucherID),
		AccountCode:   code,
		Debit:         d(debit),
		Credit:        d(credit),
	}
}

func TestBuildJournalTotals(t *testing.T) {
	records := []EntryRecord{
		record(1, 1, "130505", "119000", "0"),
		record(1, 1, "413501", "0", "100000"),
		record(1, 1, "240801", "0", "19000"),
	}
	journal := BuildJournal(day(1), day(30), records)

	assert.Equal(t, 3, journal.TotalEntries)
	assert.True(t, journal.TotalDebit.Equal(d("119000")))
	assert.True(t, journal.TotalCredit.Equal(d("119000")))
	assert.Equal(t, "ING-0001", journal.Rows[0].VoucherNumber)
}

func TestBuildGeneralLedgerRunningBalanceDebitNature(t *testing.T) {
	account := leaf("130505", "Clientes nacionales", accounts.AccountTypeActivo, accounts.NatureDebito)
	records := []EntryRecord{
		record(2, 1, "130505", "119000", "0"),
		record(5, 2, "130505", "0", "50000"),
	}
	gl := BuildGeneralLedger(account, day(1), day(30), d("10000"), records)

	require.Len(t, gl.Rows, 2)
	assert.True(t, gl.InitialBalance.Equal(d("10000")))
	assert.True(t, gl.Rows[0].Balance.Equal(d("129000")))
	assert.True(t, gl.Rows[1].Balance.Equal(d("79000")))
	assert.True(t, gl.FinalBalance.Equal(d("79000")))
	assert.True(t, gl.TotalDebit.Equal(d("119000")))
	assert.True(t, gl.TotalCredit.Equal(d("50000")))
}

func TestBuildGeneralLedgerRunningBalanceCreditNature(t *testing.T) {
	account := leaf("413501", "Venta de mercancias", accounts.AccountTypeIngreso, accounts.NatureCredito)
	records := []EntryRecord{
		record(2, 1, "413501", "0", "100000"),
		record(3, 2, "413501", "20000", "0"),
	}
	gl := BuildGeneralLedger(account, day(1), day(30), decimal.Zero, records)

	assert.True(t, gl.Rows[0].Balance.Equal(d("100000")))
	assert.True(t, gl.Rows[1].Balance.Equal(d("80000")))
}

func salesChart() []accounts.Account {
	return []accounts.Account{
		leaf("130505", "Clientes nacionales", accounts.AccountTypeActivo, accounts.NatureDebito),
		leaf("240801", "IVA generado", accounts.AccountTypePasivo, accounts.NatureCredito),
		leaf("413501", "Venta de mercancias", accounts.AccountTypeIngreso, accounts.NatureCredito),
	}
}

func TestBuildTrialBalanceSalesScenario(t *testing.T) {
	totals := map[string]MovementTotal{
		"130505": {Debit: d("119000"), Credit: decimal.Zero},
		"413501": {Debit: decimal.Zero, Credit: d("100000")},
		"240801": {Debit: decimal.Zero, Credit: d("19000")},
	}
	tb := BuildTrialBalance(day(30), salesChart(), totals)

	require.Equal(t, 3, tb.TotalAccounts)
	assert.True(t, tb.IsBalanced)
	assert.True(t, tb.TotalDebitBalance.Equal(d("119000")))
	assert.True(t, tb.TotalCreditBalance.Equal(d("119000")))
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
}

func TestBuildTrialBalanceSkipsAccountsWithoutMovement(t *testing.T) {
	totals := map[string]MovementTotal{
		"130505": {Debit: d("10"), Credit: d("10")},
	}
	chart := salesChart()
	tb := BuildTrialBalance(day(30), chart, totals)

	// Zero net still shows as movement; accounts absent from totals do not.
	require.Equal(t, 1, tb.TotalAccounts)
	assert.Equal(t, "130505", tb.Rows[0].AccountCode)
	assert.True(t, tb.Rows[0].DebitBalance.IsZero())
	assert.True(t, tb.Rows[0].CreditBalance.IsZero())
}

func TestBuildTrialBalanceContraryPosition(t *testing.T) {
	totals := map[string]MovementTotal{
		"130505": {Debit: d("100"), Credit: d("300")},
	}
	tb := BuildTrialBalance(day(30), salesChart(), totals)

	require.Equal(t, 1, tb.TotalAccounts)
	assert.True(t, tb.Rows[0].DebitBalance.IsZero())
	assert.True(t, tb.Rows[0].CreditBalance.Equal(d("200")))
}

// Random balanced vouchers must always produce a balanced trial balance.
func TestTrialBalanceIdentityProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	chart := salesChart()
	codes := []string{"130505", "240801", "413501"}

	for run := 0; run < 20; run++ {
		totals := make(map[string]MovementTotal)
		for v := 0; v < 30; v++ {
			amount := decimal.NewFromInt(rng.Int63n(1_000_000) + 1)
			from := codes[rng.Intn(len(codes))]
			to := codes[rng.Intn(len(codes))]
			mf := totals[from]
			mf.Debit = mf.Debit.Add(amount)
			totals[from] = mf
			mt := totals[to]
			mt.Credit = mt.Credit.Add(amount)
			totals[to] = mt
		}
		tb := BuildTrialBalance(day(30), chart, totals)
		assert.True(t, tb.IsBalanced, "run %d: debit %s credit %s", run, tb.TotalDebitBalance, tb.TotalCreditBalance)
	}
}
