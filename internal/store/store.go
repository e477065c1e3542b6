// Package store defines the record-store contract the engines persist
// through, plus an in-memory implementation. Persistence proper is an
// injected collaborator; engines only ever see this interface.
package store

import (
	"time"

	"tripclerk/expense-engine/internal/models"
)

// RecordStore is the narrow persistence surface consumed by the engines.
// Implementations must return isolated copies: mutating a returned record
// has no effect until it is saved back.
type RecordStore interface {
	// Transaction looks up a transaction by id.
	Transaction(id string) (*models.Transaction, bool)

	// Trip looks up a trip by id.
	Trip(id int) (*models.Trip, bool)

	// Trips returns every stored trip, ordered by id.
	Trips() []*models.Trip

	// TransactionsByEmailAndDateRange scans transactions owned by email
	// whose date falls within [from, to] inclusive.
	TransactionsByEmailAndDateRange(email string, from, to time.Time) []*models.Transaction

	// TransactionsByTrip returns the transactions currently linked to a trip.
	TransactionsByTrip(tripID int) []*models.Transaction

	// SplitParts returns the transactions derived from splitting originalID.
	SplitParts(originalID string) []*models.Transaction

	// AllTransactions returns every stored transaction, ordered by id.
	AllTransactions() []*models.Transaction

	// SaveTransactions upserts the given transactions.
	SaveTransactions(txs ...*models.Transaction) error

	// RemoveTransactions deletes the transactions with the given ids.
	RemoveTransactions(ids ...string) error

	// SaveTrip upserts a trip.
	SaveTrip(trip *models.Trip) error

	// RunAtomic executes block against a staged view of the store. All
	// writes inside the block become visible together when it returns nil;
	// a non-nil return discards every staged write.
	RunAtomic(block func(RecordStore) error) error
}
