package reports

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
)

func incomeChart() []accounts.Account {
	return []accounts.Account{
		leaf("413501", "Venta de mercancias", accounts.AccountTypeIngreso, accounts.NatureCredito),
		leaf("421005", "Ingresos financieros", accounts.AccountTypeIngreso, accounts.NatureCredito),
		leaf("480505", "Utilidad en venta de activos", accounts.AccountTypeIngreso, accounts.NatureCredito),
		leaf("510501", "Sueldos", accounts.AccountTypeGasto, accounts.NatureDebito),
		leaf("530505", "Gastos bancarios", accounts.AccountTypeGasto, accounts.NatureDebito),
		leaf("551505", "Gastos extraordinarios", accounts.AccountTypeGasto, accounts.NatureDebito),
		leaf("613501", "Costo venta de mercancias", accounts.AccountTypeCosto, accounts.NatureDebito),
	}
}

func TestBuildIncomeStatement(t *testing.T) {
	totals := map[string]MovementTotal{
		"413501": {Credit: d("1000000"), Debit: d("50000")},
		"421005": {Credit: d("20000")},
		"480505": {Credit: d("5000")},
		"510501": {Debit: d("300000")},
		"530505": {Debit: d("40000")},
		"551505": {Debit: d("10000")},
		"613501": {Debit: d("400000"), Credit: d("15000")},
	}
	is := BuildIncomeStatement(day(1), day(30), incomeChart(), totals)

	assert.True(t, is.OperatingIncome.Equal(d("970000")), "operating income %s", is.OperatingIncome)
	assert.True(t, is.NonOperatingIncome.Equal(d("5000")))
	assert.True(t, is.TotalIncome.Equal(d("975000")))
	assert.True(t, is.CostOfSales.Equal(d("385000")))
	assert.True(t, is.GrossMargin.Equal(d("590000")))
	assert.True(t, is.OperatingExpenses.Equal(d("340000")))
	assert.True(t, is.NonOperatingExpenses.Equal(d("10000")))
	assert.True(t, is.TotalExpenses.Equal(d("350000")))
	assert.True(t, is.NetResult.Equal(d("240000")))
}

func TestSumRangeIgnoresOutsideGroups(t *testing.T) {
	totals := map[string]MovementTotal{
		"413501": {Credit: d("100")},
		"510501": {Debit: d("40")},
	}
	got := SumRange(SpecOperatingIncome, incomeChart(), totals)
	assert.True(t, got.Equal(d("100")), "got %s", got)
}

func TestSumRangeZeroWhenNoMovement(t *testing.T) {
	got := SumRange(SpecCostOfSales, incomeChart(), map[string]MovementTotal{})
	assert.True(t, got.Equal(decimal.Zero))
}
