package balance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func day(dayOfMonth int) time.Time {
	return time.Date(2026, time.March, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func TestApplyDebitNature(t *testing.T) {
	got := Apply(accounts.NatureDebito, d("100"), d("40"), d("15"))
	assert.True(t, got.Equal(d("125")), "got %s", got)
}

func TestApplyCreditNature(t *testing.T) {
	got := Apply(accounts.NatureCredito, d("100"), d("40"), d("15"))
	assert.True(t, got.Equal(d("75")), "got %s", got)
}

func TestBalanceFoldsMovements(t *testing.T) {
	movements := []Movement{
		{Date: day(1), VoucherID: 1, Debit: d("500"), Credit: decimal.Zero},
		{Date: day(2), VoucherID: 2, Debit: decimal.Zero, Credit: d("200")},
		{Date: day(3), VoucherID: 3, Debit: d("50"), Credit: decimal.Zero},
	}
	got := Balance(accounts.NatureDebito, d("100"), movements)
	assert.True(t, got.Equal(d("450")), "got %s", got)
}

func TestRunningProducesPerRowBalances(t *testing.T) {
	movements := []Movement{
		{Date: day(1), VoucherID: 1, Debit: decimal.Zero, Credit: d("1000")},
		{Date: day(2), VoucherID: 2, Debit: d("300"), Credit: decimal.Zero},
		{Date: day(2), VoucherID: 3, Debit: decimal.Zero, Credit: d("100")},
	}
	got := Running(accounts.NatureCredito, decimal.Zero, movements)
	require.Len(t, got, 3)
	assert.True(t, got[0].Equal(d("1000")))
	assert.True(t, got[1].Equal(d("700")))
	assert.True(t, got[2].Equal(d("800")))
}

func TestSortOrdersByDateThenVoucher(t *testing.T) {
	movements := []Movement{
		{Date: day(5), VoucherID: 9},
		{Date: day(1), VoucherID: 7},
		{Date: day(5), VoucherID: 2},
	}
	Sort(movements)
	assert.Equal(t, int64(7), movements[0].VoucherID)
	assert.Equal(t, int64(2), movements[1].VoucherID)
	assert.Equal(t, int64(9), movements[2].VoucherID)
}

func TestInitialBalanceExcludesWindow(t *testing.T) {
	movements := []Movement{
		{Date: day(1), Debit: d("100")},
		{Date: day(9), Debit: d("100")},
		{Date: day(10), Debit: d("999")},
	}
	got := InitialBalance(accounts.NatureDebito, movements, day(10))
	assert.True(t, got.Equal(d("200")), "got %s", got)
}

func TestPeriodMovementIncludesEndDay(t *testing.T) {
	movements := []Movement{
		{Date: day(1), Debit: d("10")},
		{Date: day(15), Credit: d("20")},
		{Date: day(16), Debit: d("500")},
	}
	debit, credit := PeriodMovement(movements, day(1), day(15))
	assert.True(t, debit.Equal(d("10")), "debit %s", debit)
	assert.True(t, credit.Equal(d("20")), "credit %s", credit)
}

func TestEndExclusiveIsNextDay(t *testing.T) {
	assert.Equal(t, day(16), EndExclusive(day(15)))
}
