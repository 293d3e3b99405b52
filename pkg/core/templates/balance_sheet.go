package templates

// Balance sheet line items.
const (
	TotalAssets                  = "Total Assets"
	TotalCurrentAssets           = "Total Current Assets"
	TotalNonCurrentAssets        = "Total Non Current Assets"
	TotalLiabilities             = "Total Liabilities"
	TotalCurrentLiabilities      = "Total Current Liabilities"
	TotalNonCurrentLiabilities   = "Total Non Current Liabilities"
	TotalStockholdersEquity      = "Total Stockholders Equity"
	CashAndCashEquivalents       = "Cash and Cash Equivalents"
	PropertyPlantAndEquipmentNet = "Property, Plant and Equipment"
)

var balanceSheet = newTemplate("balance sheet", []Entry{
	{"Assets", TotalAssets, path("assets")},
	{"AssetsCurrent", TotalCurrentAssets, path("assets", "current_assets")},
	{"CashAndCashEquivalentsAtCarryingValue", CashAndCashEquivalents, path("assets", "current_assets", "cash_and_equivalents")},
	{"ShortTermInvestments", "Short Term Investments", path("assets", "current_assets", "short_term_investments")},
	{"MarketableSecuritiesCurrent", "Short Term Investments", path("assets", "current_assets", "short_term_investments")},
	{"AccountsReceivableNetCurrent", "Accounts Receivable", path("assets", "current_assets", "accounts_receivable")},
	{"AccountsReceivableNet", "Accounts Receivable", path("assets", "current_assets", "accounts_receivable")},
	{"InventoryNet", "Inventory", path("assets", "current_assets", "inventory")},
	{"PrepaidExpenseCurrent", "Prepaid Expenses", path("assets", "current_assets", "prepaid_expenses")},
	{"PrepaidExpense", "Prepaid Expenses", path("assets", "current_assets", "prepaid_expenses")},
	{"OtherAssetsCurrent", "Other Current Assets", path("assets", "current_assets", "other_current_assets")},

	{"AssetsNoncurrent", TotalNonCurrentAssets, path("assets", "non_current_assets")},
	{"LongTermInvestments", "Long Term Investments", path("assets", "non_current_assets", "long_term_investments")},
	{"MarketableSecuritiesNoncurrent", "Long Term Investments", path("assets", "non_current_assets", "long_term_investments")},
	{"PropertyPlantAndEquipmentNet", PropertyPlantAndEquipmentNet, path("assets", "non_current_assets", "property_plant_equipment")},
	{"IntangibleAssetsNetExcludingGoodwill", "Intangible Assets", path("assets", "non_current_assets", "intangible_assets")},
	{"IntangibleAssetsNet", "Intangible Assets", path("assets", "non_current_assets", "intangible_assets")},
	{"Goodwill", "Goodwill", path("assets", "non_current_assets", "goodwill")},
	{"OtherAssetsNoncurrent", "Other Non Current Assets", path("assets", "non_current_assets", "other_non_current_assets")},

	{"Liabilities", TotalLiabilities, path("liabilities")},
	{"LiabilitiesCurrent", TotalCurrentLiabilities, path("liabilities", "current_liabilities")},
	{"AccountsPayableCurrent", "Accounts Payable", path("liabilities", "current_liabilities", "accounts_payable")},
	{"ShortTermBorrowings", "Short Term Debt", path("liabilities", "current_liabilities", "short_term_debt")},
	{"LongTermDebtCurrent", "Short Term Debt", path("liabilities", "current_liabilities", "short_term_debt")},
	{"AccruedLiabilitiesCurrent", "Accrued Expenses", path("liabilities", "current_liabilities", "accrued_expenses")},
	{"DeferredRevenueCurrent", "Deferred Revenue", path("liabilities", "current_liabilities", "deferred_revenue")},
	{"ContractWithCustomerLiabilityCurrent", "Deferred Revenue", path("liabilities", "current_liabilities", "deferred_revenue")},
	{"OtherLiabilitiesCurrent", "Other Current Liabilities", path("liabilities", "current_liabilities", "other_current_liabilities")},

	{"LiabilitiesNoncurrent", TotalNonCurrentLiabilities, path("liabilities", "non_current_liabilities")},
	{"LongTermDebtNoncurrent", "Long Term Debt", path("liabilities", "non_current_liabilities", "long_term_debt")},
	{"LongTermDebt", "Long Term Debt", path("liabilities", "non_current_liabilities", "long_term_debt")},
	{"DeferredTaxLiabilitiesNoncurrent", "Deferred Tax Liabilities", path("liabilities", "non_current_liabilities", "deferred_tax_liabilities")},
	{"PensionAndOtherPostretirementBenefitPlansLiabilities", "Pension Obligations", path("liabilities", "non_current_liabilities", "pension_obligations")},
	{"OtherLiabilitiesNoncurrent", "Other Non Current Liabilities", path("liabilities", "non_current_liabilities", "other_non_current_liabilities")},

	{"StockholdersEquity", TotalStockholdersEquity, path("equity")},
	{"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest", TotalStockholdersEquity, path("equity")},
	{"CommonStockValue", "Common Stock", path("equity", "common_stock")},
	{"AdditionalPaidInCapital", "Additional Paid In Capital", path("equity", "additional_paid_in_capital")},
	{"AdditionalPaidInCapitalCommonStock", "Additional Paid In Capital", path("equity", "additional_paid_in_capital")},
	{"RetainedEarningsAccumulatedDeficit", "Retained Earnings", path("equity", "retained_earnings")},
	{"TreasuryStockValue", "Treasury Stock", path("equity", "treasury_stock")},
	{"AccumulatedOtherComprehensiveIncomeLossNetOfTax", "Accumulated Other Comprehensive Income", path("equity", "accumulated_other_comprehensive_income")},
	{"MinorityInterest", "Non Controlling Interest", path("equity", "non_controlling_interest")},
})
