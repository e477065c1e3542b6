package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripclerk/expense-engine/internal/models"
	"tripclerk/expense-engine/internal/store"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const transactionsCSV = `TransactionId,Email,Date,BookingDate,Category,Amount,Currency,ExchangeRate,AmountUSD,TripId,SourceTripId,Vendor,CabinClass,Participants,ParticipantsValidated,IsSplit,OriginalTransactionId,DocumentUrl,IsValid
T1,ana@company.example,2025-06-02,2025-05-30,Airfare,"1,200.00",USD,1,"1,200.00",,TRIP-442,SwissAir,Business,,false,false,,https://docs.example/r1.pdf,true
T2,ana@company.example,2025-06-03,,Meals,91.50,CHF,1.09,99.74,4,,Zunfthaus,,"ana@company.example,bob@company.example",true,false,,,true
`

const tripsCSV = `TripId,Email,TripName,StartDate,EndDate,Country1
4,ana@company.example,Zurich onsite TRIP-442,2025-06-01,2025-06-05,Switzerland
`

func TestLoadTransactions(t *testing.T) {
	path := writeFixture(t, "transactions.csv", transactionsCSV)

	transactions, err := LoadTransactions(path)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	first := transactions[0]
	assert.Equal(t, "T1", first.ID)
	assert.Equal(t, models.CategoryAirfare, first.CategoryID)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("1200.00")))
	assert.Equal(t, "Business", first.CabinClass)
	assert.Equal(t, "TRIP-442", first.SourceTripID)
	assert.Nil(t, first.TripID)
	assert.Equal(t, 2025, first.Date.Year())
	assert.False(t, first.BookingDate.IsZero())

	second := transactions[1]
	assert.Equal(t, "CHF", second.Currency)
	assert.True(t, second.ExchangeRate.Equal(decimal.RequireFromString("1.09")))
	require.NotNil(t, second.TripID)
	assert.Equal(t, 4, *second.TripID)
	assert.Len(t, second.ParticipantList(), 2)
	assert.True(t, second.BookingDate.IsZero())
}

func TestLoadTransactionsBadDate(t *testing.T) {
	path := writeFixture(t, "transactions.csv",
		"TransactionId,Email,Date,BookingDate,Category,Amount,Currency,ExchangeRate,AmountUSD,TripId,SourceTripId,Vendor,CabinClass,Participants,ParticipantsValidated,IsSplit,OriginalTransactionId,DocumentUrl,IsValid\n"+
			"T1,ana@company.example,whenever,,Meals,10,USD,1,10,,,,,,false,false,,,true\n")

	_, err := LoadTransactions(path)
	assert.Error(t, err)
}

func TestLoadTrips(t *testing.T) {
	path := writeFixture(t, "trips.csv", tripsCSV)

	trips, err := LoadTrips(path)
	require.NoError(t, err)
	require.Len(t, trips, 1)

	trip := trips[0]
	assert.Equal(t, 4, trip.ID)
	assert.Equal(t, "Zurich onsite TRIP-442", trip.TripName)
	assert.Equal(t, "Switzerland", trip.Country1)
	assert.Equal(t, 5, trip.Duration())
}

func TestPopulate(t *testing.T) {
	transactionsPath := writeFixture(t, "transactions.csv", transactionsCSV)
	tripsPath := writeFixture(t, "trips.csv", tripsCSV)

	recordStore := store.NewMemoryStore()
	require.NoError(t, Populate(recordStore, transactionsPath, tripsPath))

	assert.Len(t, recordStore.AllTransactions(), 2)
	assert.Len(t, recordStore.Trips(), 1)

	linked := recordStore.TransactionsByTrip(4)
	require.Len(t, linked, 1)
	assert.Equal(t, "T2", linked[0].ID)
}

func TestPopulateMissingFile(t *testing.T) {
	recordStore := store.NewMemoryStore()
	err := Populate(recordStore, filepath.Join(t.TempDir(), "absent.csv"), "")
	assert.Error(t, err)
}

func TestPopulateEmptyPathsSkip(t *testing.T) {
	recordStore := store.NewMemoryStore()
	require.NoError(t, Populate(recordStore, "", ""))
	assert.Empty(t, recordStore.AllTransactions())
}
