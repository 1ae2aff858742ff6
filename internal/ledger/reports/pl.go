package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
)

// IncomeStatement is the estado de resultados for a period. Gross margin and
// net result are derived arithmetic, never stored.
type IncomeStatement struct {
	From                 time.Time       `json:"from"`
	To                   time.Time       `json:"to"`
	OperatingIncome      decimal.Decimal `json:"operatingIncome"`
	NonOperatingIncome   decimal.Decimal `json:"nonOperatingIncome"`
	TotalIncome          decimal.Decimal `json:"totalIncome"`
	CostOfSales          decimal.Decimal `json:"costOfSales"`
	GrossMargin          decimal.Decimal `json:"grossMargin"`
	OperatingExpenses    decimal.Decimal `json:"operatingExpenses"`
	NonOperatingExpenses decimal.Decimal `json:"nonOperatingExpenses"`
	TotalExpenses        decimal.Decimal `json:"totalExpenses"`
	NetResult            decimal.Decimal `json:"netResult"`
}

// RangeSpec selects leaf accounts by code range and tells how their movement
// contributes: income ranges as credit − debit, cost/expense as debit − credit.
type RangeSpec struct {
	CodeStart string
	CodeEnd   string
	IsCredit  bool
}

// Income statement range policies for the PUC chart.
var (
	SpecOperatingIncome      = RangeSpec{CodeStart: "41", CodeEnd: "47", IsCredit: true}
	SpecNonOperatingIncome   = RangeSpec{CodeStart: "48", CodeEnd: "49", IsCredit: true}
	SpecCostOfSales          = RangeSpec{CodeStart: "61", CodeEnd: "69", IsCredit: false}
	SpecOperatingExpenses    = RangeSpec{CodeStart: "51", CodeEnd: "54", IsCredit: false}
	SpecNonOperatingExpenses = RangeSpec{CodeStart: "55", CodeEnd: "59", IsCredit: false}
)

// SumRange folds the movement of leaf accounts whose PUC group (first two
// digits of the code) falls inside the range.
func SumRange(spec RangeSpec, accts []accounts.Account, totals map[string]MovementTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, account := range accts {
		if !account.IsLeaf() || len(account.Code) < 2 {
			continue
		}
		group := account.Code[:2]
		if group < spec.CodeStart || group > spec.CodeEnd {
			continue
		}
		movement, ok := totals[account.Code]
		if !ok {
			continue
		}
		if spec.IsCredit {
			sum = sum.Add(movement.Credit).Sub(movement.Debit)
		} else {
			sum = sum.Add(movement.Debit).Sub(movement.Credit)
		}
	}
	return sum
}

// BuildIncomeStatement assembles the report from leaf accounts and their
// gross movement over [from, to].
func BuildIncomeStatement(from, to time.Time, accts []accounts.Account, totals map[string]MovementTotal) IncomeStatement {
	is := IncomeStatement{
		From:                 from,
		To:                   to,
		OperatingIncome:      SumRange(SpecOperatingIncome, accts, totals),
		NonOperatingIncome:   SumRange(SpecNonOperatingIncome, accts, totals),
		CostOfSales:          SumRange(SpecCostOfSales, accts, totals),
		OperatingExpenses:    SumRange(SpecOperatingExpenses, accts, totals),
		NonOperatingExpenses: SumRange(SpecNonOperatingExpenses, accts, totals),
	}
	is.TotalIncome = is.OperatingIncome.Add(is.NonOperatingIncome)
	is.GrossMargin = is.TotalIncome.Sub(is.CostOfSales)
	is.TotalExpenses = is.OperatingExpenses.Add(is.NonOperatingExpenses)
	is.NetResult = is.GrossMargin.Sub(is.TotalExpenses)
	return is
}
