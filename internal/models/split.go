package models

import "github.com/shopspring/decimal"

// SplitItem is one participant's share of a shared transaction.
type SplitItem struct {
	Email      string
	Amount     decimal.Decimal // Share in the original currency
	AmountUSD  decimal.Decimal
	CategoryID Category
	IsExternal bool // External participants require follow-up validation
}

// SplitSuggestion proposes dividing a transaction among participants.
type SplitSuggestion struct {
	TransactionID         string
	SuggestedParticipants []string
	SuggestedSplits       []SplitItem
	ConfidenceScore       int // 0-100
	Reason                string
}
