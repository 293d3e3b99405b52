package templates

// Cash flow statement line items.
const (
	OperatingCashFlow   = "Cash Flow from Operating Activities"
	InvestingCashFlow   = "Cash Flow from Investing Activities"
	FinancingCashFlow   = "Cash Flow from Financing Activities"
	CapitalExpenditures = "Capital Expenditures"
)

var cashFlow = newTemplate("cash flow statement", []Entry{
	{"NetIncomeLoss", NetIncome, path("operating_activities", "net_income")},
	{"DepreciationDepletionAndAmortization", "Depreciation and Amortization", path("operating_activities", "adjustments", "depreciation_amortization")},
	{"ShareBasedCompensation", "Stock Based Compensation", path("operating_activities", "adjustments", "stock_based_compensation")},
	{"DeferredIncomeTaxExpenseBenefit", "Deferred Income Taxes", path("operating_activities", "adjustments", "deferred_taxes")},
	{"AssetImpairmentCharges", "Asset Impairment", path("operating_activities", "adjustments", "asset_impairment")},
	{"GainLossOnSaleOfBusinessAssets", "Gain (Loss) on Sale of Assets", path("operating_activities", "adjustments", "gain_loss_on_sale")},
	{"GainLossOnSaleOfPropertyPlantEquipment", "Gain (Loss) on Sale of Assets", path("operating_activities", "adjustments", "gain_loss_on_sale")},

	{"IncreaseDecreaseInAccountsReceivable", "Change in Accounts Receivable", path("operating_activities", "changes_in_working_capital", "accounts_receivable")},
	{"IncreaseDecreaseInInventories", "Change in Inventory", path("operating_activities", "changes_in_working_capital", "inventory")},
	{"IncreaseDecreaseInAccountsPayable", "Change in Accounts Payable", path("operating_activities", "changes_in_working_capital", "accounts_payable")},
	{"IncreaseDecreaseInAccruedLiabilities", "Change in Accrued Liabilities", path("operating_activities", "changes_in_working_capital", "accrued_liabilities")},

	{"PaymentsToAcquirePropertyPlantAndEquipment", CapitalExpenditures, path("investing_activities", "capital_expenditures")},
	{"PaymentsToAcquireBusinessesNetOfCashAcquired", "Acquisitions", path("investing_activities", "acquisitions")},
	{"PaymentsToAcquireInvestments", "Purchases of Investments", path("investing_activities", "purchases_of_investments")},
	{"PaymentsToAcquireAvailableForSaleSecuritiesDebt", "Purchases of Investments", path("investing_activities", "purchases_of_investments")},
	{"ProceedsFromSaleAndMaturityOfInvestments", "Sales of Investments", path("investing_activities", "sales_of_investments")},

	{"ProceedsFromIssuanceOfDebt", "Debt Issuance", path("financing_activities", "debt_issuance")},
	{"ProceedsFromIssuanceOfLongTermDebt", "Debt Issuance", path("financing_activities", "debt_issuance")},
	{"RepaymentsOfDebt", "Debt Repayment", path("financing_activities", "debt_repayment")},
	{"RepaymentsOfLongTermDebt", "Debt Repayment", path("financing_activities", "debt_repayment")},
	{"ProceedsFromIssuanceOfCommonStock", "Stock Issuance", path("financing_activities", "stock_issuance")},
	{"PaymentsForRepurchaseOfCommonStock", "Stock Repurchase", path("financing_activities", "stock_repurchase")},
	{"PaymentsOfDividends", "Dividends Paid", path("financing_activities", "dividends_paid")},
	{"PaymentsOfDividendsCommonStock", "Dividends Paid", path("financing_activities", "dividends_paid")},

	{"NetCashProvidedByUsedInOperatingActivities", OperatingCashFlow, path("net_cash_operating")},
	{"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations", OperatingCashFlow, path("net_cash_operating")},
	{"NetCashProvidedByUsedInInvestingActivities", InvestingCashFlow, path("net_cash_investing")},
	{"NetCashProvidedByUsedInInvestingActivitiesContinuingOperations", InvestingCashFlow, path("net_cash_investing")},
	{"NetCashProvidedByUsedInFinancingActivities", FinancingCashFlow, path("net_cash_financing")},
	{"NetCashProvidedByUsedInFinancingActivitiesContinuingOperations", FinancingCashFlow, path("net_cash_financing")},
	{"CashAndCashEquivalentsPeriodIncreaseDecrease", "Net Change in Cash", path("net_change_in_cash")},
	{"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalentsPeriodIncreaseDecreaseIncludingExchangeRateEffect", "Net Change in Cash", path("net_change_in_cash")},
	{"CashAndCashEquivalentsAtCarryingValuePeriodStart", "Cash at Beginning of Period", path("cash_beginning_period")},
	{"CashAndCashEquivalentsAtCarryingValuePeriodEnd", "Cash at End of Period", path("cash_end_period")},

	// Balance sheet figure used by the operating cash flow ratio.
	{"LiabilitiesCurrent", TotalCurrentLiabilities, path("supplemental", "current_liabilities")},
})
