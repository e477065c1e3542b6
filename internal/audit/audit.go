// Package audit defines the audit-trail sink every mutating engine
// operation writes through. One entry is emitted per logical mutation with
// immutable before/after snapshots.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tripclerk/expense-engine/internal/logging"
)

// Action identifies the logical mutation an entry records.
type Action string

const (
	ActionLink             Action = "link"
	ActionUnlink           Action = "unlink"
	ActionSplit            Action = "split"
	ActionSplitPartCreate  Action = "split_part_create"
	ActionUndoSplit        Action = "undo_split"
	ActionUndoSplitDelete  Action = "undo_split_delete"
	ActionFlag             Action = "flag"
	ActionApproveException Action = "approve_exception"
)

// Entry is a single audit-trail record.
type Entry struct {
	ID         string
	Timestamp  time.Time
	Actor      string
	Action     Action
	EntityType string
	EntityID   string
	OldValue   string // Serialized snapshot before the mutation, if any
	NewValue   string // Serialized snapshot after the mutation, if any
	Comment    string
}

// Sink receives audit entries. Implementations must not fail the calling
// operation; delivery problems are their own concern.
type Sink interface {
	Log(entry Entry)
}

// NewEntry builds an entry with a fresh id and timestamp.
func NewEntry(actor string, action Action, entityType, entityID string) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
}

// Snapshot serializes a record for OldValue/NewValue. Serialization failures
// degrade to an empty snapshot rather than failing the mutation.
func Snapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// LogSink writes audit entries to the structured log.
type LogSink struct {
	logger logging.Logger
}

// NewLogSink creates a Sink backed by the given logger.
func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.WithField("component", "audit")}
}

// Log writes one entry at info level.
func (s *LogSink) Log(entry Entry) {
	s.logger.Info("audit entry",
		logging.Field{Key: "actor", Value: entry.Actor},
		logging.Field{Key: "action", Value: string(entry.Action)},
		logging.Field{Key: "entity_type", Value: entry.EntityType},
		logging.Field{Key: "entity_id", Value: entry.EntityID},
		logging.Field{Key: "comment", Value: entry.Comment},
	)
}

// Recorder captures audit entries for tests.
type Recorder struct {
	Entries []Entry
}

// Log appends the entry to the recorder.
func (r *Recorder) Log(entry Entry) {
	r.Entries = append(r.Entries, entry)
}

// ByAction returns the recorded entries with the given action.
func (r *Recorder) ByAction(action Action) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
