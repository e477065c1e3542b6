package store

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripclerk/expense-engine/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()

	tripID := 1
	require.NoError(t, s.SaveTrip(&models.Trip{
		ID:        1,
		Email:     "ana@company.example",
		TripName:  "Zurich onsite",
		StartDate: day(2025, 6, 1),
		EndDate:   day(2025, 6, 5),
	}))
	require.NoError(t, s.SaveTransactions(
		&models.Transaction{ID: "T1", Email: "ana@company.example", Date: day(2025, 6, 2), Amount: decimal.NewFromInt(100)},
		&models.Transaction{ID: "T2", Email: "ana@company.example", Date: day(2025, 6, 9), TripID: &tripID},
		&models.Transaction{ID: "T3", Email: "bob@company.example", Date: day(2025, 6, 2)},
		&models.Transaction{ID: "T1_SPLIT_1", Email: "ana@company.example", Date: day(2025, 6, 2), OriginalTransactionID: "T1"},
	))
	return s
}

func TestTransactionLookup(t *testing.T) {
	s := seedStore(t)

	tx, ok := s.Transaction("T1")
	require.True(t, ok)
	assert.Equal(t, "ana@company.example", tx.Email)

	_, ok = s.Transaction("missing")
	assert.False(t, ok)
}

func TestLookupsReturnCopies(t *testing.T) {
	s := seedStore(t)

	tx, ok := s.Transaction("T1")
	require.True(t, ok)
	tx.Email = "tampered@company.example"

	again, _ := s.Transaction("T1")
	assert.Equal(t, "ana@company.example", again.Email, "mutating a lookup result must not affect the store")
}

func TestTransactionsByEmailAndDateRange(t *testing.T) {
	s := seedStore(t)

	txs := s.TransactionsByEmailAndDateRange("ana@company.example", day(2025, 6, 1), day(2025, 6, 5))
	require.Len(t, txs, 2)
	assert.Equal(t, "T1", txs[0].ID)
	assert.Equal(t, "T1_SPLIT_1", txs[1].ID)

	// Range bounds are inclusive.
	txs = s.TransactionsByEmailAndDateRange("ana@company.example", day(2025, 6, 2), day(2025, 6, 2))
	assert.Len(t, txs, 2)

	txs = s.TransactionsByEmailAndDateRange("nobody@company.example", day(2025, 6, 1), day(2025, 6, 30))
	assert.Empty(t, txs)
}

func TestTransactionsByTrip(t *testing.T) {
	s := seedStore(t)

	txs := s.TransactionsByTrip(1)
	require.Len(t, txs, 1)
	assert.Equal(t, "T2", txs[0].ID)

	assert.Empty(t, s.TransactionsByTrip(99))
}

func TestSplitParts(t *testing.T) {
	s := seedStore(t)

	parts := s.SplitParts("T1")
	require.Len(t, parts, 1)
	assert.Equal(t, "T1_SPLIT_1", parts[0].ID)

	assert.Empty(t, s.SplitParts("T2"))
}

func TestRemoveTransactions(t *testing.T) {
	s := seedStore(t)

	require.NoError(t, s.RemoveTransactions("T1", "T3"))
	assert.Len(t, s.AllTransactions(), 2)
	_, ok := s.Transaction("T1")
	assert.False(t, ok)
}

func TestRunAtomicCommit(t *testing.T) {
	s := seedStore(t)

	err := s.RunAtomic(func(staged RecordStore) error {
		if err := staged.SaveTransactions(&models.Transaction{ID: "T9", Email: "ana@company.example"}); err != nil {
			return err
		}
		return staged.RemoveTransactions("T3")
	})
	require.NoError(t, err)

	_, ok := s.Transaction("T9")
	assert.True(t, ok, "committed write must be visible")
	_, ok = s.Transaction("T3")
	assert.False(t, ok, "committed delete must be visible")
}

func TestRunAtomicRollback(t *testing.T) {
	s := seedStore(t)
	boom := errors.New("boom")

	err := s.RunAtomic(func(staged RecordStore) error {
		if err := staged.SaveTransactions(&models.Transaction{ID: "T9"}); err != nil {
			return err
		}
		if err := staged.RemoveTransactions("T1"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok := s.Transaction("T9")
	assert.False(t, ok, "failed unit must leave no partial writes")
	_, ok = s.Transaction("T1")
	assert.True(t, ok, "failed unit must not delete anything")
}

func TestRunAtomicStagedReadsSeeBlockWrites(t *testing.T) {
	s := seedStore(t)

	err := s.RunAtomic(func(staged RecordStore) error {
		if err := staged.SaveTransactions(&models.Transaction{ID: "T9", OriginalTransactionID: "T1"}); err != nil {
			return err
		}
		parts := staged.SplitParts("T1")
		if len(parts) != 2 {
			return errors.New("staged read missed block write")
		}
		return nil
	})
	assert.NoError(t, err)
}
