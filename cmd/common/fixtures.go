// Package common holds the CSV fixture loading shared by the CLI commands.
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"tripclerk/expense-engine/internal/currencyutils"
	"tripclerk/expense-engine/internal/dateutils"
	"tripclerk/expense-engine/internal/models"
	"tripclerk/expense-engine/internal/store"
)

// TransactionRecord is the CSV row shape for transaction fixtures. Dates
// and amounts stay strings in the file and are parsed on load.
type TransactionRecord struct {
	ID                    string `csv:"TransactionId"`
	Email                 string `csv:"Email"`
	Date                  string `csv:"Date"`
	BookingDate           string `csv:"BookingDate"`
	Category              string `csv:"Category"`
	Amount                string `csv:"Amount"`
	Currency              string `csv:"Currency"`
	ExchangeRate          string `csv:"ExchangeRate"`
	AmountUSD             string `csv:"AmountUSD"`
	TripID                string `csv:"TripId"`
	SourceTripID          string `csv:"SourceTripId"`
	Vendor                string `csv:"Vendor"`
	CabinClass            string `csv:"CabinClass"`
	Participants          string `csv:"Participants"`
	ParticipantsValidated bool   `csv:"ParticipantsValidated"`
	IsSplit               bool   `csv:"IsSplit"`
	OriginalTransactionID string `csv:"OriginalTransactionId"`
	DocumentURL           string `csv:"DocumentUrl"`
	IsValid               bool   `csv:"IsValid"`
}

// TripRecord is the CSV row shape for trip fixtures.
type TripRecord struct {
	ID        int    `csv:"TripId"`
	Email     string `csv:"Email"`
	TripName  string `csv:"TripName"`
	StartDate string `csv:"StartDate"`
	EndDate   string `csv:"EndDate"`
	Country1  string `csv:"Country1"`
}

// LoadTransactions reads a transaction fixture CSV into domain records.
func LoadTransactions(path string) ([]*models.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transactions file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var records []*TransactionRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("parsing transactions file: %w", err)
	}

	transactions := make([]*models.Transaction, 0, len(records))
	for i, record := range records {
		tx, err := record.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

func (r *TransactionRecord) toTransaction() (*models.Transaction, error) {
	date, err := dateutils.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", r.ID, err)
	}

	amount, err := currencyutils.ParseAmount(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	amountUSD, err := currencyutils.ParseAmount(r.AmountUSD)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	rate, err := currencyutils.ParseAmount(r.ExchangeRate)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", r.ID, err)
	}

	tx := &models.Transaction{
		ID:                    r.ID,
		Email:                 r.Email,
		Date:                  date,
		CategoryID:            models.ParseCategory(r.Category),
		Amount:                amount,
		Currency:              strings.ToUpper(strings.TrimSpace(r.Currency)),
		ExchangeRate:          rate,
		AmountUSD:             amountUSD,
		SourceTripID:          r.SourceTripID,
		Vendor:                r.Vendor,
		CabinClass:            r.CabinClass,
		Participants:          r.Participants,
		ParticipantsValidated: r.ParticipantsValidated,
		IsSplit:               r.IsSplit,
		OriginalTransactionID: r.OriginalTransactionID,
		DocumentURL:           r.DocumentURL,
		IsValid:               r.IsValid,
	}

	if r.BookingDate != "" {
		booked, err := dateutils.ParseDate(r.BookingDate)
		if err != nil {
			return nil, fmt.Errorf("transaction %s booking date: %w", r.ID, err)
		}
		tx.BookingDate = booked
	}

	if r.TripID != "" {
		tripID, err := strconv.Atoi(strings.TrimSpace(r.TripID))
		if err != nil {
			return nil, fmt.Errorf("transaction %s trip id '%s': %w", r.ID, r.TripID, err)
		}
		tx.TripID = &tripID
	}

	return tx, nil
}

// LoadTrips reads a trip fixture CSV into domain records.
func LoadTrips(path string) ([]*models.Trip, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trips file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var records []*TripRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("parsing trips file: %w", err)
	}

	trips := make([]*models.Trip, 0, len(records))
	for i, record := range records {
		start, err := dateutils.ParseDate(record.StartDate)
		if err != nil {
			return nil, fmt.Errorf("row %d trip %d: %w", i+2, record.ID, err)
		}
		end, err := dateutils.ParseDate(record.EndDate)
		if err != nil {
			return nil, fmt.Errorf("row %d trip %d: %w", i+2, record.ID, err)
		}
		trips = append(trips, &models.Trip{
			ID:        record.ID,
			Email:     record.Email,
			TripName:  record.TripName,
			StartDate: start,
			EndDate:   end,
			Country1:  record.Country1,
		})
	}
	return trips, nil
}

// Populate loads both fixture files into the store. Either path may be
// empty, in which case that record type is skipped.
func Populate(recordStore store.RecordStore, transactionsPath, tripsPath string) error {
	if transactionsPath != "" {
		transactions, err := LoadTransactions(transactionsPath)
		if err != nil {
			return err
		}
		if err := recordStore.SaveTransactions(transactions...); err != nil {
			return fmt.Errorf("saving transactions: %w", err)
		}
	}
	if tripsPath != "" {
		trips, err := LoadTrips(tripsPath)
		if err != nil {
			return err
		}
		for _, trip := range trips {
			if err := recordStore.SaveTrip(trip); err != nil {
				return fmt.Errorf("saving trip %d: %w", trip.ID, err)
			}
		}
	}
	return nil
}
