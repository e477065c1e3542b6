package models

// TransactionMatch scores one candidate transaction against a trip.
type TransactionMatch struct {
	TransactionID   string
	Confidence      int // 0-100
	Reason          string
	IsAlreadyLinked bool
}

// MatchSuggestion groups the retained matches for one trip.
type MatchSuggestion struct {
	TripID                int
	SuggestedTransactions []TransactionMatch
	OverallConfidence     float64 // Mean of retained match confidences, 1 decimal
}
