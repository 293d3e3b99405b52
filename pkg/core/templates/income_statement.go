package templates

// Income statement line items.
const (
	Revenue         = "Revenue"
	CostOfRevenue   = "Cost of Revenue"
	GrossProfit     = "Gross Profit"
	OperatingIncome = "Operating Income"
	IncomeBeforeTax = "Income Before Tax"
	NetIncome       = "Net Income"
)

var incomeStatement = newTemplate("income statement", []Entry{
	{"Revenues", Revenue, path("revenues")},
	{"RevenueFromContractWithCustomerExcludingAssessedTax", Revenue, path("revenues")},
	{"SalesRevenueNet", Revenue, path("revenues", "net_sales")},
	{"OtherRevenue", "Other Revenue", path("revenues", "other_revenue")},

	{"CostOfGoodsAndServicesSold", CostOfRevenue, path("costs_and_expenses", "cost_of_goods_sold")},
	{"CostOfRevenue", CostOfRevenue, path("costs_and_expenses", "cost_of_goods_sold")},
	{"OperatingExpenses", "Total Operating Expenses", path("costs_and_expenses", "operating_expenses")},
	{"SellingGeneralAndAdministrativeExpense", "Selling, General and Administrative", path("costs_and_expenses", "operating_expenses", "selling_general_admin")},
	{"ResearchAndDevelopmentExpense", "Research and Development", path("costs_and_expenses", "operating_expenses", "research_development")},
	{"DepreciationAndAmortization", "Depreciation and Amortization", path("costs_and_expenses", "operating_expenses", "depreciation_amortization")},
	{"OtherOperatingExpenses", "Other Operating Expenses", path("costs_and_expenses", "operating_expenses", "other_operating_expenses")},

	{"InterestIncome", "Interest Income", path("other_income_expense", "interest_income")},
	{"InvestmentIncomeInterest", "Interest Income", path("other_income_expense", "interest_income")},
	{"InterestExpense", "Interest Expense", path("other_income_expense", "interest_expense")},
	{"OtherNonoperatingIncomeExpense", "Other Non Operating Income", path("other_income_expense", "other_non_operating_income")},
	{"NonoperatingIncomeExpense", "Other Non Operating Income", path("other_income_expense", "other_non_operating_income")},

	{"IncomeTaxExpenseBenefit", "Income Tax Expense", path("income_taxes")},
	{"CurrentIncomeTaxExpenseBenefit", "Current Tax Expense", path("income_taxes", "current_tax_expense")},
	{"CurrentIncomeTaxExpense", "Current Tax Expense", path("income_taxes", "current_tax_expense")},
	{"DeferredIncomeTaxExpenseBenefit", "Deferred Tax Expense", path("income_taxes", "deferred_tax_expense")},
	{"DeferredIncomeTaxExpense", "Deferred Tax Expense", path("income_taxes", "deferred_tax_expense")},

	{"GrossProfit", GrossProfit, path("gross_profit")},
	{"OperatingIncomeLoss", OperatingIncome, path("operating_income")},
	{"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest", IncomeBeforeTax, path("income_before_tax")},
	{"IncomeLossFromContinuingOperationsBeforeIncomeTaxesMinorityInterestAndIncomeLossFromEquityMethodInvestments", IncomeBeforeTax, path("income_before_tax")},
	{"NetIncomeLoss", NetIncome, path("net_income")},
	{"ProfitLoss", NetIncome, path("net_income")},
	{"EarningsPerShareBasic", "EPS Basic", path("earnings_per_share", "basic")},
	{"EarningsPerShareDiluted", "EPS Diluted", path("earnings_per_share", "diluted")},
})
