package model

// AccountType is the root component of a ledger account name.
type AccountType string

const (
	AccountTypeAssets      AccountType = "Assets"
	AccountTypeLiabilities AccountType = "Liabilities"
	AccountTypeEquity      AccountType = "Equity"
	AccountTypeIncome      AccountType = "Income"
	AccountTypeExpenses    AccountType = "Expenses"
)

// AccountTypes lists the valid account roots in ledger order.
var AccountTypes = []AccountType{
	AccountTypeAssets,
	AccountTypeLiabilities,
	AccountTypeEquity,
	AccountTypeIncome,
	AccountTypeExpenses,
}
