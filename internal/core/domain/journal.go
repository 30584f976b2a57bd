package domain

// JournalType classifies a journal by the kind of entries it records.
type JournalType string

const (
	JournalTypeBank    JournalType = "BANK"
	JournalTypeCash    JournalType = "CASH"
	JournalTypeGeneral JournalType = "GENERAL"
)

// IsLiquidity reports whether the journal tracks a liquidity account
// (bank or cash). Only liquidity journals are subject to the payment
// affordability gate.
func (t JournalType) IsLiquidity() bool {
	return t == JournalTypeBank || t == JournalTypeCash
}

// Journal represents an accounting journal (book of entries).
type Journal struct {
	JournalID        string      `json:"journalID"`        // Primary Key (e.g., UUID)
	Name             string      `json:"name"`             // User-facing journal name
	Type             JournalType `json:"type"`             // BANK, CASH or GENERAL
	DefaultAccountID string      `json:"defaultAccountID"` // Liquidity account backing the journal, nullable
	CurrencyCode     string      `json:"currencyCode"`     // Journal currency when it differs from the company's, nullable
	AuditFields
}
