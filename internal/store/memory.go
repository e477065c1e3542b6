package store

import (
	"sort"
	"sync"
	"time"

	"tripclerk/expense-engine/internal/models"
)

// MemoryStore is the in-memory RecordStore used by the CLI and tests.
// Records are held in id-keyed maps; trip membership and split lineage are
// resolved by scanning foreign-key fields rather than materialized
// back-references.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[string]*models.Transaction
	trips        map[int]*models.Trip
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*models.Transaction),
		trips:        make(map[int]*models.Trip),
	}
}

// Transaction looks up a transaction by id.
func (s *MemoryStore) Transaction(id string) (*models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[id]
	if !ok {
		return nil, false
	}
	return tx.Clone(), true
}

// Trip looks up a trip by id.
func (s *MemoryStore) Trip(id int) (*models.Trip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trip, ok := s.trips[id]
	if !ok {
		return nil, false
	}
	clone := *trip
	return &clone, true
}

// Trips returns every stored trip, ordered by id.
func (s *MemoryStore) Trips() []*models.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Trip, 0, len(s.trips))
	for _, trip := range s.trips {
		clone := *trip
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TransactionsByEmailAndDateRange scans transactions owned by email whose
// date falls within [from, to] inclusive.
func (s *MemoryStore) TransactionsByEmailAndDateRange(email string, from, to time.Time) []*models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, tx := range s.transactions {
		if tx.Email != email {
			continue
		}
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx.Clone())
	}
	sortByID(out)
	return out
}

// TransactionsByTrip returns the transactions currently linked to a trip.
func (s *MemoryStore) TransactionsByTrip(tripID int) []*models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, tx := range s.transactions {
		if tx.TripID != nil && *tx.TripID == tripID {
			out = append(out, tx.Clone())
		}
	}
	sortByID(out)
	return out
}

// SplitParts returns the transactions derived from splitting originalID.
func (s *MemoryStore) SplitParts(originalID string) []*models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, tx := range s.transactions {
		if tx.OriginalTransactionID == originalID {
			out = append(out, tx.Clone())
		}
	}
	sortByID(out)
	return out
}

// AllTransactions returns every stored transaction, ordered by id.
func (s *MemoryStore) AllTransactions() []*models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, tx.Clone())
	}
	sortByID(out)
	return out
}

// SaveTransactions upserts the given transactions.
func (s *MemoryStore) SaveTransactions(txs ...*models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		s.transactions[tx.ID] = tx.Clone()
	}
	return nil
}

// RemoveTransactions deletes the transactions with the given ids.
func (s *MemoryStore) RemoveTransactions(ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.transactions, id)
	}
	return nil
}

// SaveTrip upserts a trip.
func (s *MemoryStore) SaveTrip(trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *trip
	s.trips[trip.ID] = &clone
	return nil
}

// RunAtomic executes block against a staged copy of the store. The staged
// maps replace the live ones only when the block returns nil, so a failing
// block leaves no partial writes behind.
func (s *MemoryStore) RunAtomic(block func(RecordStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := &MemoryStore{
		transactions: make(map[string]*models.Transaction, len(s.transactions)),
		trips:        make(map[int]*models.Trip, len(s.trips)),
	}
	for id, tx := range s.transactions {
		staged.transactions[id] = tx.Clone()
	}
	for id, trip := range s.trips {
		clone := *trip
		staged.trips[id] = &clone
	}

	if err := block(staged); err != nil {
		return err
	}

	s.transactions = staged.transactions
	s.trips = staged.trips
	return nil
}

func sortByID(txs []*models.Transaction) {
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
}
