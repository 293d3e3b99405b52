package processor

import (
	"math"

	tpl "sec_insights/pkg/core/templates"
)

// Derived line items.
const (
	WorkingCapital         = "Working Capital"
	TotalAssetsCalculated  = "Total Assets (Calculated)"
	DebtToEquityRatio      = "Debt to Equity Ratio"
	GrossProfitMargin      = "Gross Profit Margin"
	OperatingMargin        = "Operating Margin"
	NetProfitMargin        = "Net Profit Margin"
	FreeCashFlow           = "Free Cash Flow"
	TotalCashFlow          = "Total Cash Flow"
	OperatingCashFlowRatio = "Operating Cash Flow Ratio"
)

type definition struct {
	template *tpl.Template
	required []string
	derived  []derived
	check    func(*Statement) []IntegrityCheck
}

// derived computes a column from existing ones. The column is added only
// when every input column exists; a period with a missing input or a
// non-finite result stays empty.
type derived struct {
	name   string
	inputs []string
	// when set, the column is skipped unless the statement passes
	guard func(*Statement) bool
	calc  func(v []float64) float64
}

func (d derived) apply(st *Statement) {
	for _, in := range d.inputs {
		if !st.HasColumn(in) {
			return
		}
	}
	if d.guard != nil && !d.guard(st) {
		return
	}

	col := make([]*float64, st.Len())
	args := make([]float64, len(d.inputs))
	for i := range col {
		complete := true
		for j, in := range d.inputs {
			v, ok := st.Value(in, i)
			if !ok {
				complete = false
				break
			}
			args[j] = v
		}
		if !complete {
			continue
		}
		if r := d.calc(args); finite(r) {
			col[i] = &r
		}
	}
	st.addColumn(d.name, col)
}

func ratio(v []float64) float64 { return v[0] / v[1] }

func percent(v []float64) float64 { return v[0] / v[1] * 100 }

func anyNonZero(column string) func(*Statement) bool {
	return func(st *Statement) bool {
		for _, v := range st.Column(column) {
			if v != nil && *v != 0 {
				return true
			}
		}
		return false
	}
}

var definitions = map[Kind]definition{
	BalanceSheet: {
		template: tpl.BalanceSheet(),
		required: []string{tpl.TotalAssets, tpl.TotalLiabilities, tpl.TotalStockholdersEquity},
		derived: []derived{
			{
				name:   WorkingCapital,
				inputs: []string{tpl.TotalCurrentAssets, tpl.TotalCurrentLiabilities},
				calc:   func(v []float64) float64 { return v[0] - v[1] },
			},
			{
				name:   TotalAssetsCalculated,
				inputs: []string{tpl.TotalCurrentAssets, tpl.TotalNonCurrentAssets},
				calc:   func(v []float64) float64 { return v[0] + v[1] },
			},
			{
				name:   DebtToEquityRatio,
				inputs: []string{tpl.TotalLiabilities, tpl.TotalStockholdersEquity},
				calc:   ratio,
			},
		},
		check: func(st *Statement) []IntegrityCheck {
			return VerifyIntegrity(st, tpl.TotalAssets, TotalAssetsCalculated)
		},
	},
	IncomeStatement: {
		template: tpl.IncomeStatement(),
		required: []string{tpl.Revenue, tpl.GrossProfit, tpl.OperatingIncome, tpl.NetIncome},
		derived: []derived{
			{name: GrossProfitMargin, inputs: []string{tpl.GrossProfit, tpl.Revenue}, calc: percent},
			{name: OperatingMargin, inputs: []string{tpl.OperatingIncome, tpl.Revenue}, calc: percent},
			{name: NetProfitMargin, inputs: []string{tpl.NetIncome, tpl.Revenue}, calc: percent},
		},
	},
	CashFlow: {
		template: tpl.CashFlow(),
		required: []string{tpl.OperatingCashFlow, tpl.InvestingCashFlow, tpl.FinancingCashFlow},
		derived: []derived{
			{
				name:   FreeCashFlow,
				inputs: []string{tpl.OperatingCashFlow, tpl.CapitalExpenditures},
				calc:   func(v []float64) float64 { return v[0] - math.Abs(v[1]) },
			},
			{
				name:   TotalCashFlow,
				inputs: []string{tpl.OperatingCashFlow, tpl.InvestingCashFlow, tpl.FinancingCashFlow},
				calc:   func(v []float64) float64 { return v[0] + v[1] + v[2] },
			},
			{
				name:   OperatingCashFlowRatio,
				inputs: []string{tpl.OperatingCashFlow, tpl.TotalCurrentLiabilities},
				guard:  anyNonZero(tpl.TotalCurrentLiabilities),
				calc:   ratio,
			},
		},
	},
}
