// Package models provides the data structures used throughout the application.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single financial transaction imported from a
// corporate card feed or expense report.
type Transaction struct {
	ID                    string
	Email                 string          // Owner of the transaction
	Date                  time.Time       // Transaction date
	BookingDate           time.Time       // Date the underlying travel was booked, if known
	CategoryID            Category        // Spend category (closed enumeration)
	Amount                decimal.Decimal // Amount in the original currency
	Currency              string          // ISO currency code
	ExchangeRate          decimal.Decimal // Original currency -> USD
	AmountUSD             decimal.Decimal // Amount converted to USD
	TripID                *int            // Linked trip; nil means unlinked
	SourceTripID          string          // External trip identifier from the booking tool
	Vendor                string
	CabinClass            string // Airfare only
	Participants          string // Comma-delimited email list
	ParticipantsValidated bool
	IsSplit               bool
	OriginalTransactionID string // Set on split parts only
	DocumentURL           string
	IsValid               bool
	DataValidation        string // Free-text validation / review note
	CreatedAt             time.Time
	ModifiedAt            time.Time
	ModifiedBy            string
}

// IsSplitPart reports whether this transaction was created by splitting
// another transaction. Split parts may never be split again.
func (t *Transaction) IsSplitPart() bool {
	return t.OriginalTransactionID != ""
}

// IsLinked reports whether the transaction is currently linked to a trip.
func (t *Transaction) IsLinked() bool {
	return t.TripID != nil
}

// ParticipantList splits the free-text Participants field on commas,
// trimming whitespace and dropping empty entries.
func (t *Transaction) ParticipantList() []string {
	if strings.TrimSpace(t.Participants) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(t.Participants, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// AgeDays returns the whole number of days between the transaction date and
// now. Future-dated transactions return 0.
func (t *Transaction) AgeDays(now time.Time) int {
	days := int(now.Sub(t.Date).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Stamp records modification metadata on the transaction.
func (t *Transaction) Stamp(actor string, now time.Time) {
	t.ModifiedAt = now
	t.ModifiedBy = actor
}

// Clone returns a shallow copy with TripID deep-copied, suitable for
// before/after audit snapshots and store isolation.
func (t *Transaction) Clone() *Transaction {
	clone := *t
	if t.TripID != nil {
		id := *t.TripID
		clone.TripID = &id
	}
	return &clone
}
