package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
)

// BalanceSheetAccount is one account with its nature-signed balance.
type BalanceSheetAccount struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Level   int             `json:"level"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceSheetSection groups accounts into one classification bucket.
type BalanceSheetSection struct {
	Name     string                `json:"name"`
	Accounts []BalanceSheetAccount `json:"accounts"`
	Total    decimal.Decimal       `json:"total"`
}

// BalanceSheet buckets leaf accounts into the five PUC sections by account
// type and code range. The assets = liabilities + equity identity is a
// report-level sanity property, not enforced at write time.
type BalanceSheet struct {
	AsOf                  time.Time           `json:"asOf"`
	CurrentAssets         BalanceSheetSection `json:"currentAssets"`
	NonCurrentAssets      BalanceSheetSection `json:"nonCurrentAssets"`
	CurrentLiabilities    BalanceSheetSection `json:"currentLiabilities"`
	NonCurrentLiabilities BalanceSheetSection `json:"nonCurrentLiabilities"`
	Equity                BalanceSheetSection `json:"equity"`
	TotalAssets           decimal.Decimal     `json:"totalAssets"`
	TotalLiabilities      decimal.Decimal     `json:"totalLiabilities"`
	TotalEquity           decimal.Decimal     `json:"totalEquity"`
	IsBalanced            bool                `json:"isBalanced"`
}

// SectionSpec names a balance sheet bucket and its selection policy.
type SectionSpec struct {
	Name        string
	AccountType accounts.AccountType
	CodeStart   string
	CodeEnd     string
}

// Balance sheet bucket policies for the PUC chart. Code comparison is
// lexicographic, matching the hierarchical numbering.
var (
	SpecCurrentAssets         = SectionSpec{Name: "ACTIVOS CORRIENTES", AccountType: accounts.AccountTypeActivo, CodeStart: "11", CodeEnd: "139999"}
	SpecNonCurrentAssets      = SectionSpec{Name: "ACTIVOS NO CORRIENTES", AccountType: accounts.AccountTypeActivo, CodeStart: "14", CodeEnd: "199999"}
	SpecCurrentLiabilities    = SectionSpec{Name: "PASIVOS CORRIENTES", AccountType: accounts.AccountTypePasivo, CodeStart: "21", CodeEnd: "259999"}
	SpecNonCurrentLiabilities = SectionSpec{Name: "PASIVOS NO CORRIENTES", AccountType: accounts.AccountTypePasivo, CodeStart: "26", CodeEnd: "299999"}
	SpecEquity                = SectionSpec{Name: "PATRIMONIO", AccountType: accounts.AccountTypePatrimonio, CodeStart: "31", CodeEnd: "399999"}
)

// BuildSection selects the section's accounts with a non-zero balance and
// sums them. Accounts must arrive ordered by code.
func BuildSection(spec SectionSpec, accts []accounts.Account, balances map[string]decimal.Decimal) BalanceSheetSection {
	section := BalanceSheetSection{Name: spec.Name, Total: decimal.Zero}
	for _, account := range accts {
		if !account.IsLeaf() || account.Type != spec.AccountType {
			continue
		}
		if account.Code < spec.CodeStart || account.Code > spec.CodeEnd {
			continue
		}
		bal, ok := balances[account.Code]
		if !ok || bal.IsZero() {
			continue
		}
		section.Accounts = append(section.Accounts, BalanceSheetAccount{
			Code:    account.Code,
			Name:    account.Name,
			Level:   account.Level,
			Balance: bal,
		})
		section.Total = section.Total.Add(bal)
	}
	return section
}

// BuildBalanceSheet assembles the five sections and the cross-check totals.
func BuildBalanceSheet(asOf time.Time, accts []accounts.Account, balances map[string]decimal.Decimal) BalanceSheet {
	bs := BalanceSheet{
		AsOf:                  asOf,
		CurrentAssets:         BuildSection(SpecCurrentAssets, accts, balances),
		NonCurrentAssets:      BuildSection(SpecNonCurrentAssets, accts, balances),
		CurrentLiabilities:    BuildSection(SpecCurrentLiabilities, accts, balances),
		NonCurrentLiabilities: BuildSection(SpecNonCurrentLiabilities, accts, balances),
		Equity:                BuildSection(SpecEquity, accts, balances),
	}
	bs.TotalAssets = bs.CurrentAssets.Total.Add(bs.NonCurrentAssets.Total)
	bs.TotalLiabilities = bs.CurrentLiabilities.Total.Add(bs.NonCurrentLiabilities.Total)
	bs.TotalEquity = bs.Equity.Total
	bs.IsBalanced = bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity))
	return bs
}
