// Package matching scores candidate (transaction, trip) pairs with a
// multi-factor heuristic and performs the link/unlink mutations the
// suggestions lead to.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"tripclerk/expense-engine/internal/audit"
	"tripclerk/expense-engine/internal/dateutils"
	"tripclerk/expense-engine/internal/logging"
	"tripclerk/expense-engine/internal/models"
	"tripclerk/expense-engine/internal/store"
)

// Engine produces ranked link suggestions and applies link/unlink
// mutations with audit entries.
type Engine struct {
	store         store.RecordStore
	sink          audit.Sink
	logger        logging.Logger
	toleranceDays int
	minConfidence int
	now           func() time.Time
}

// NewEngine creates a matching engine. toleranceDays widens the candidate
// date window around a trip's start date; matches scoring below
// minConfidence are discarded.
func NewEngine(recordStore store.RecordStore, sink audit.Sink, toleranceDays, minConfidence int, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if toleranceDays <= 0 {
		toleranceDays = 5
	}
	if minConfidence <= 0 {
		minConfidence = 30
	}
	return &Engine{
		store:         recordStore,
		sink:          sink,
		logger:        logger.WithField("component", "matching"),
		toleranceDays: toleranceDays,
		minConfidence: minConfidence,
		now:           time.Now,
	}
}

// WithClock overrides the engine's clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ScoreMatch computes the 0-100 confidence that a transaction belongs to a
// trip, with the contributing factors in the reason. Email equality is a
// hard gate: a mismatch scores exactly 0.
func (e *Engine) ScoreMatch(tx *models.Transaction, trip *models.Trip) (int, string) {
	if tx.Email != trip.Email {
		return 0, "owner email mismatch"
	}

	score := 0
	var reasons []string

	days := dateutils.DaysApart(tx.Date, trip.StartDate)
	switch {
	case days <= 1:
		score += 40
		reasons = append(reasons, "transaction date within 1 day of trip start")
	case days <= 3:
		score += 30
		reasons = append(reasons, "transaction date within 3 days of trip start")
	case days <= 5:
		score += 20
		reasons = append(reasons, "transaction date within 5 days of trip start")
	case days <= 7:
		score += 10
		reasons = append(reasons, "transaction date within 7 days of trip start")
	}

	if tx.SourceTripID != "" && strings.Contains(strings.ToLower(trip.TripName), strings.ToLower(tx.SourceTripID)) {
		score += 30
		reasons = append(reasons, fmt.Sprintf("external trip id '%s' appears in trip name", tx.SourceTripID))
	}

	if weight := categoryWeight(tx.CategoryID); weight > 0 {
		score += weight
		reasons = append(reasons, fmt.Sprintf("%s category (+%d)", tx.CategoryID, weight))
	}

	if !tx.BookingDate.IsZero() && dateutils.WithinDays(tx.BookingDate, trip.StartDate, 1) {
		score += 10
		reasons = append(reasons, "booked within 1 day of trip start")
	}

	if score > 100 {
		score = 100
	}
	return score, strings.Join(reasons, "; ")
}

func categoryWeight(category models.Category) int {
	switch category {
	case models.CategoryAirfare:
		return 20
	case models.CategoryLodging:
		return 15
	case models.CategoryTransportation, models.CategoryMeals:
		return 10
	case models.CategoryCommunication, models.CategoryOther:
		return 5
	}
	return 0
}

// SuggestionsForTrip scores every candidate transaction in the trip's date
// window, regardless of current link state, and returns the retained
// matches ranked by confidence. Returns nil when nothing clears the
// confidence floor.
func (e *Engine) SuggestionsForTrip(trip *models.Trip) *models.MatchSuggestion {
	window := time.Duration(e.toleranceDays) * 24 * time.Hour
	from := trip.StartDate.Add(-window)
	to := trip.StartDate.Add(window)

	candidates := e.store.TransactionsByEmailAndDateRange(trip.Email, from, to)
	var matches []models.TransactionMatch
	total := 0
	for _, tx := range candidates {
		confidence, reason := e.ScoreMatch(tx, trip)
		if confidence < e.minConfidence {
			continue
		}
		matches = append(matches, models.TransactionMatch{
			TransactionID:   tx.ID,
			Confidence:      confidence,
			Reason:          reason,
			IsAlreadyLinked: tx.IsLinked(),
		})
		total += confidence
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Confidence > matches[j].Confidence })
	mean := float64(total) / float64(len(matches))
	return &models.MatchSuggestion{
		TripID:                trip.ID,
		SuggestedTransactions: matches,
		OverallConfidence:     math.Round(mean*10) / 10,
	}
}

// AutoSuggestions builds suggestions for every trip with zero currently
// linked transactions, ordered by descending overall confidence.
func (e *Engine) AutoSuggestions() []*models.MatchSuggestion {
	var suggestions []*models.MatchSuggestion
	for _, trip := range e.store.Trips() {
		if len(e.store.TransactionsByTrip(trip.ID)) > 0 {
			continue
		}
		if suggestion := e.SuggestionsForTrip(trip); suggestion != nil {
			suggestions = append(suggestions, suggestion)
		}
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].OverallConfidence > suggestions[j].OverallConfidence
	})
	return suggestions
}

// Link sets the transaction's trip reference. Unresolved ids report boolean
// failure so bulk matching workflows stay non-fatal.
func (e *Engine) Link(transactionID string, tripID int, actor string) bool {
	tx, ok := e.store.Transaction(transactionID)
	if !ok {
		e.logger.Warn("link failed: transaction not found",
			logging.Field{Key: "transaction", Value: transactionID})
		return false
	}
	trip, ok := e.store.Trip(tripID)
	if !ok {
		e.logger.Warn("link failed: trip not found",
			logging.Field{Key: "trip", Value: tripID})
		return false
	}

	before := audit.Snapshot(tx)
	tx.TripID = &trip.ID
	tx.Stamp(actor, e.now())
	if err := e.store.SaveTransactions(tx); err != nil {
		e.logger.WithError(err).Error("link failed: save error",
			logging.Field{Key: "transaction", Value: transactionID})
		return false
	}

	entry := audit.NewEntry(actor, audit.ActionLink, "Transaction", tx.ID)
	entry.OldValue = before
	entry.NewValue = audit.Snapshot(tx)
	entry.Comment = fmt.Sprintf("linked to trip %d", trip.ID)
	e.sink.Log(entry)

	e.logger.Info("transaction linked",
		logging.Field{Key: "transaction", Value: tx.ID},
		logging.Field{Key: "trip", Value: trip.ID},
	)
	return true
}

// Unlink clears the transaction's trip reference. The structural inverse of
// Link, with the same boolean failure semantics.
func (e *Engine) Unlink(transactionID, actor string) bool {
	tx, ok := e.store.Transaction(transactionID)
	if !ok {
		e.logger.Warn("unlink failed: transaction not found",
			logging.Field{Key: "transaction", Value: transactionID})
		return false
	}

	before := audit.Snapshot(tx)
	previous := tx.TripID
	tx.TripID = nil
	tx.Stamp(actor, e.now())
	if err := e.store.SaveTransactions(tx); err != nil {
		e.logger.WithError(err).Error("unlink failed: save error",
			logging.Field{Key: "transaction", Value: transactionID})
		return false
	}

	entry := audit.NewEntry(actor, audit.ActionUnlink, "Transaction", tx.ID)
	entry.OldValue = before
	entry.NewValue = audit.Snapshot(tx)
	if previous != nil {
		entry.Comment = fmt.Sprintf("unlinked from trip %d", *previous)
	}
	e.sink.Log(entry)
	return true
}
