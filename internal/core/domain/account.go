package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset            AccountType = "ASSET"
	AssetReceivable  AccountType = "ASSET_RECEIVABLE"
	Liability        AccountType = "LIABILITY"
	LiabilityPayable AccountType = "LIABILITY_PAYABLE"
	Equity           AccountType = "EQUITY"
	Income           AccountType = "INCOME"
	Expense          AccountType = "EXPENSE"
)

// IsReceivablePayable reports whether the account type is one of the two
// partner-facing types that participate in cross-currency residual
// projection during reconciliation.
func (t AccountType) IsReceivablePayable() bool {
	return t == AssetReceivable || t == LiabilityPayable
}

// Account represents a financial account within the core domain.
type Account struct {
	AccountID    string      `json:"accountID"`    // Primary Key (e.g., UUID)
	Name         string      `json:"name"`         // User-defined name
	AccountType  AccountType `json:"accountType"`  // ASSET, LIABILITY, etc.
	CurrencyCode string      `json:"currencyCode"` // FK -> currencies.code (NON-NULL)
	Description  string      `json:"description"`  // Nullable user description
	IsActive     bool        `json:"isActive"`     // Soft delete or status flag
	AuditFields
}
