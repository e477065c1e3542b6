// Package split detects transactions likely to represent shared spend,
// proposes participant-proportional splits, and applies or undoes a split
// as an atomic, amount-conserving transformation.
package split

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tripclerk/expense-engine/internal/audit"
	"tripclerk/expense-engine/internal/currencyutils"
	"tripclerk/expense-engine/internal/logging"
	"tripclerk/expense-engine/internal/models"
	"tripclerk/expense-engine/internal/store"
)

// Engine proposes and applies transaction splits.
type Engine struct {
	store                store.RecordStore
	sink                 audit.Sink
	logger               logging.Logger
	minAmountUSD         decimal.Decimal
	minConfidence        int
	externalPlaceholder  string
	colleaguePlaceholder string
	now                  func() time.Time
}

// Options tunes candidate detection and suggestion synthesis.
type Options struct {
	MinAmountUSD         decimal.Decimal // Candidates must exceed this (default 50)
	MinConfidence        int             // Suggestions below this are dropped (default 50)
	ExternalPlaceholder  string          // Stand-in email for an unknown external guest
	ColleaguePlaceholder string          // Stand-in email for an unknown internal colleague
}

// NewEngine creates a split engine.
func NewEngine(recordStore store.RecordStore, sink audit.Sink, opts Options, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if opts.MinAmountUSD.IsZero() {
		opts.MinAmountUSD = decimal.NewFromInt(50)
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = 50
	}
	if opts.ExternalPlaceholder == "" {
		opts.ExternalPlaceholder = "external.guest@client.example"
	}
	if opts.ColleaguePlaceholder == "" {
		opts.ColleaguePlaceholder = "colleague@company.example"
	}
	return &Engine{
		store:                recordStore,
		sink:                 sink,
		logger:               logger.WithField("component", "split"),
		minAmountUSD:         opts.MinAmountUSD,
		minConfidence:        opts.MinConfidence,
		externalPlaceholder:  opts.ExternalPlaceholder,
		colleaguePlaceholder: opts.ColleaguePlaceholder,
		now:                  time.Now,
	}
}

// WithClock overrides the engine's clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// isCandidate guards the suggestion pipeline: already-split transactions and
// split parts are never candidates, nor is anything at or below the amount
// floor, nor categories where shared spend is implausible.
func (e *Engine) isCandidate(tx *models.Transaction) bool {
	if tx.IsSplit || tx.IsSplitPart() {
		return false
	}
	if !tx.AmountUSD.GreaterThan(e.minAmountUSD) {
		return false
	}
	if len(tx.ParticipantList()) > 0 {
		return true
	}
	return tx.CategoryID == models.CategoryClientEntertainment || tx.CategoryID == models.CategoryMeals
}

// SplitSuggestions scans the store for split candidates and returns a
// suggestion for each one that clears the confidence floor.
func (e *Engine) SplitSuggestions() []models.SplitSuggestion {
	var suggestions []models.SplitSuggestion
	for _, tx := range e.store.AllTransactions() {
		if !e.isCandidate(tx) {
			continue
		}
		if suggestion := e.SuggestFor(tx); suggestion != nil {
			suggestions = append(suggestions, *suggestion)
		}
	}
	return suggestions
}

// SuggestFor proposes a split for one transaction, or nil when confidence
// stays below the floor. When the transaction names no usable participants,
// the engine synthesizes a two-participant placeholder pairing the owner
// with a generic external guest or internal colleague.
func (e *Engine) SuggestFor(tx *models.Transaction) *models.SplitSuggestion {
	participants := tx.ParticipantList()
	confidence := 0
	reason := ""

	switch {
	case tx.CategoryID == models.CategoryClientEntertainment && len(participants) > 1:
		confidence = 85
		reason = "client entertainment with multiple participants"
	case tx.CategoryID == models.CategoryClientEntertainment && tx.AmountUSD.GreaterThan(decimal.NewFromInt(100)):
		confidence = 60
		reason = "high-value client entertainment; external guest assumed"
		participants = []string{tx.Email, e.externalPlaceholder}
	case tx.CategoryID == models.CategoryMeals && len(participants) > 1:
		confidence = 75
		reason = "meal with multiple participants"
	case tx.CategoryID == models.CategoryMeals && tx.AmountUSD.GreaterThan(decimal.NewFromInt(80)):
		confidence = 65
		reason = "high-value meal; shared with a colleague assumed"
		participants = []string{tx.Email, e.colleaguePlaceholder}
	case len(participants) > 1:
		confidence = 70
		reason = fmt.Sprintf("%s with multiple participants", strings.ToLower(string(tx.CategoryID)))
	}

	if confidence < e.minConfidence || len(participants) < 2 {
		return nil
	}

	return &models.SplitSuggestion{
		TransactionID:         tx.ID,
		SuggestedParticipants: participants,
		SuggestedSplits:       e.equalSplits(tx, participants),
		ConfidenceScore:       confidence,
		Reason:                reason,
	}
}

// equalSplits divides the original-currency amount and the USD amount
// independently among the participants, so each series sums back to its own
// original. Rounding remainders land on the first share.
func (e *Engine) equalSplits(tx *models.Transaction, participants []string) []models.SplitItem {
	n := decimal.NewFromInt(int64(len(participants)))
	shareUSD := tx.AmountUSD.Div(n).Round(2)
	share := tx.Amount.Div(n).Round(2)
	parts := int64(len(participants)) - 1
	firstUSD := tx.AmountUSD.Sub(shareUSD.Mul(decimal.NewFromInt(parts)))
	first := tx.Amount.Sub(share.Mul(decimal.NewFromInt(parts)))

	items := make([]models.SplitItem, 0, len(participants))
	for i, participant := range participants {
		itemUSD, itemAmount := shareUSD, share
		if i == 0 {
			itemUSD, itemAmount = firstUSD, first
		}
		items = append(items, models.SplitItem{
			Email:      participant,
			Amount:     itemAmount,
			AmountUSD:  itemUSD,
			CategoryID: tx.CategoryID,
			IsExternal: e.isExternal(tx.Email, participant),
		})
	}
	return items
}

// isExternal treats a participant as external when their email domain
// differs from the transaction owner's.
func (e *Engine) isExternal(ownerEmail, participant string) bool {
	if strings.EqualFold(ownerEmail, participant) {
		return false
	}
	ownerDomain := emailDomain(ownerEmail)
	participantDomain := emailDomain(participant)
	if ownerDomain == "" || participantDomain == "" {
		return true
	}
	return !strings.EqualFold(ownerDomain, participantDomain)
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}

// ApplySplit divides the original transaction into one new transaction per
// item inside a single atomic unit. The original is retained and marked
// IsSplit; each part carries OriginalTransactionID back to it. Failure at
// any step, including the amount-conservation check, leaves the store
// untouched and emits no audit entries.
func (e *Engine) ApplySplit(transactionID string, items []models.SplitItem, actor string) bool {
	if len(items) == 0 {
		e.logger.Warn("split rejected: no items",
			logging.Field{Key: "transaction", Value: transactionID})
		return false
	}

	var entries []audit.Entry
	err := e.store.RunAtomic(func(staged store.RecordStore) error {
		original, ok := staged.Transaction(transactionID)
		if !ok {
			return fmt.Errorf("transaction %s not found", transactionID)
		}
		// Hard invariants, independent of the suggestion pipeline's
		// candidate filter: an original may be split at most once, and a
		// split part may never be split again.
		if original.IsSplit {
			return fmt.Errorf("transaction %s is already split", transactionID)
		}
		if original.IsSplitPart() {
			return fmt.Errorf("transaction %s is a split part of %s", transactionID, original.OriginalTransactionID)
		}

		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.AmountUSD)
		}
		if !currencyutils.WithinCentTolerance(total, original.AmountUSD) {
			return fmt.Errorf("split items sum to %s, original is %s", total.StringFixed(2), original.AmountUSD.StringFixed(2))
		}

		before := audit.Snapshot(original)
		original.IsSplit = true
		original.Stamp(actor, e.now())
		if err := staged.SaveTransactions(original); err != nil {
			return fmt.Errorf("saving split original: %w", err)
		}

		entry := audit.NewEntry(actor, audit.ActionSplit, "Transaction", original.ID)
		entry.OldValue = before
		entry.NewValue = audit.Snapshot(original)
		entry.Comment = fmt.Sprintf("split into %d parts", len(items))
		entries = append(entries, entry)

		for i, item := range items {
			part := e.buildPart(original, item, i+1, actor)
			if err := staged.SaveTransactions(part); err != nil {
				return fmt.Errorf("saving split part %s: %w", part.ID, err)
			}
			partEntry := audit.NewEntry(actor, audit.ActionSplitPartCreate, "Transaction", part.ID)
			partEntry.NewValue = audit.Snapshot(part)
			entries = append(entries, partEntry)
		}
		return nil
	})
	if err != nil {
		e.logger.WithError(err).Warn("split failed",
			logging.Field{Key: "transaction", Value: transactionID})
		return false
	}

	// Audit entries are emitted only for a committed unit.
	for _, entry := range entries {
		e.sink.Log(entry)
	}
	e.logger.Info("transaction split",
		logging.Field{Key: "transaction", Value: transactionID},
		logging.Field{Key: "parts", Value: len(items)},
	)
	return true
}

// buildPart derives one split-part transaction from the original and a
// split item. External participants always require follow-up validation.
func (e *Engine) buildPart(original *models.Transaction, item models.SplitItem, index int, actor string) *models.Transaction {
	category := item.CategoryID
	if category == "" {
		category = original.CategoryID
	}
	part := &models.Transaction{
		ID:                    fmt.Sprintf("%s_SPLIT_%d", original.ID, index),
		Email:                 original.Email,
		Date:                  original.Date,
		BookingDate:           original.BookingDate,
		CategoryID:            category,
		Amount:                item.Amount,
		Currency:              original.Currency,
		ExchangeRate:          original.ExchangeRate,
		AmountUSD:             item.AmountUSD,
		SourceTripID:          original.SourceTripID,
		Vendor:                original.Vendor,
		Participants:          item.Email,
		ParticipantsValidated: !item.IsExternal,
		OriginalTransactionID: original.ID,
		DocumentURL:           original.DocumentURL,
		IsValid:               !item.IsExternal,
		CreatedAt:             e.now(),
	}
	if original.TripID != nil {
		tripID := *original.TripID
		part.TripID = &tripID
	}
	part.Stamp(actor, e.now())
	return part
}

// UndoSplit removes every part derived from the original and clears its
// IsSplit flag, all inside one atomic unit. Fails when the original is
// absent or not currently split.
func (e *Engine) UndoSplit(originalID, actor string) bool {
	var entries []audit.Entry
	err := e.store.RunAtomic(func(staged store.RecordStore) error {
		original, ok := staged.Transaction(originalID)
		if !ok {
			return fmt.Errorf("transaction %s not found", originalID)
		}
		if !original.IsSplit {
			return fmt.Errorf("transaction %s is not split", originalID)
		}

		parts := staged.SplitParts(originalID)
		ids := make([]string, 0, len(parts))
		for _, part := range parts {
			ids = append(ids, part.ID)
		}
		if err := staged.RemoveTransactions(ids...); err != nil {
			return fmt.Errorf("removing split parts: %w", err)
		}

		before := audit.Snapshot(original)
		original.IsSplit = false
		original.Stamp(actor, e.now())
		if err := staged.SaveTransactions(original); err != nil {
			return fmt.Errorf("saving restored original: %w", err)
		}

		entry := audit.NewEntry(actor, audit.ActionUndoSplit, "Transaction", original.ID)
		entry.OldValue = before
		entry.NewValue = audit.Snapshot(original)
		entry.Comment = fmt.Sprintf("removed %d parts", len(parts))
		entries = append(entries, entry)

		for _, part := range parts {
			partEntry := audit.NewEntry(actor, audit.ActionUndoSplitDelete, "Transaction", part.ID)
			partEntry.OldValue = audit.Snapshot(part)
			entries = append(entries, partEntry)
		}
		return nil
	})
	if err != nil {
		e.logger.WithError(err).Warn("undo split failed",
			logging.Field{Key: "transaction", Value: originalID})
		return false
	}

	for _, entry := range entries {
		e.sink.Log(entry)
	}
	e.logger.Info("split undone", logging.Field{Key: "transaction", Value: originalID})
	return true
}
