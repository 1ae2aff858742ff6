package reports

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
)

func balanceSheetChart() []accounts.Account {
	group := accounts.Account{Code: "13", Name: "Deudores", Type: accounts.AccountTypeActivo, Level: 2, Nature: accounts.NatureDebito, IsActive: true}
	return []accounts.Account{
		leaf("110505", "Caja general", accounts.AccountTypeActivo, accounts.NatureDebito),
		group,
		leaf("130505", "Clientes nacionales", accounts.AccountTypeActivo, accounts.NatureDebito),
		leaf("150405", "Maquinaria y equipo", accounts.AccountTypeActivo, accounts.NatureDebito),
		leaf("220505", "Proveedores nacionales", accounts.AccountTypePasivo, accounts.NatureCredito),
		leaf("281005", "Ingresos recibidos por anticipado", accounts.AccountTypePasivo, accounts.NatureCredito),
		leaf("310505", "Capital autorizado", accounts.AccountTypePatrimonio, accounts.NatureCredito),
	}
}

func TestBuildBalanceSheetSections(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"110505": d("500000"),
		"13":     d("999999"),
		"130505": d("300000"),
		"150405": d("700000"),
		"220505": d("600000"),
		"281005": d("150000"),
		"310505": d("750000"),
	}
	bs := BuildBalanceSheet(day(30), balanceSheetChart(), balances)

	assert.True(t, bs.CurrentAssets.Total.Equal(d("800000")), "current assets %s", bs.CurrentAssets.Total)
	assert.True(t, bs.NonCurrentAssets.Total.Equal(d("700000")))
	assert.True(t, bs.CurrentLiabilities.Total.Equal(d("600000")))
	assert.True(t, bs.NonCurrentLiabilities.Total.Equal(d("150000")))
	assert.True(t, bs.TotalEquity.Equal(d("750000")))
	assert.True(t, bs.TotalAssets.Equal(d("1500000")))
	assert.True(t, bs.TotalLiabilities.Equal(d("750000")))
	assert.True(t, bs.IsBalanced)

	// The level-2 group is never listed even though it carries a balance.
	for _, a := range bs.CurrentAssets.Accounts {
		assert.NotEqual(t, "13", a.Code)
	}
}

func TestBuildSectionSkipsZeroBalances(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"110505": decimal.Zero,
		"130505": d("300000"),
	}
	section := BuildSection(SpecCurrentAssets, balanceSheetChart(), balances)

	require.Len(t, section.Accounts, 1)
	assert.Equal(t, "130505", section.Accounts[0].Code)
	assert.True(t, section.Total.Equal(d("300000")))
}

func TestBuildBalanceSheetUnbalanced(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"110505": d("100"),
		"220505": d("40"),
	}
	bs := BuildBalanceSheet(day(30), balanceSheetChart(), balances)
	assert.False(t, bs.IsBalanced)
}
