// Package notify defines the best-effort notification sink used when a
// transaction fails compliance. Delivery failures never affect the
// compliance result; callers log and move on.
package notify

import (
	"tripclerk/expense-engine/internal/logging"
)

// Sink dispatches policy-violation notifications.
type Sink interface {
	// PolicyViolation notifies the transaction owner about a non-compliant
	// transaction. summary concatenates every violation description.
	PolicyViolation(email, transactionID, summary, link string) error
}

// LogSink writes notifications to the structured log. It stands in for a
// real mail/chat dispatcher, which is out of scope here.
type LogSink struct {
	logger logging.Logger
}

// NewLogSink creates a Sink backed by the given logger.
func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.WithField("component", "notify")}
}

// PolicyViolation logs the notification at info level.
func (s *LogSink) PolicyViolation(email, transactionID, summary, link string) error {
	s.logger.Info("policy violation notification",
		logging.Field{Key: "email", Value: email},
		logging.Field{Key: "transaction", Value: transactionID},
		logging.Field{Key: "summary", Value: summary},
		logging.Field{Key: "link", Value: link},
	)
	return nil
}

// Recorder captures notifications for tests and can simulate delivery
// failure.
type Recorder struct {
	Sent []Notification
	Err  error
}

// Notification is one captured dispatch.
type Notification struct {
	Email         string
	TransactionID string
	Summary       string
	Link          string
}

// PolicyViolation records the notification, returning Err if configured.
func (r *Recorder) PolicyViolation(email, transactionID, summary, link string) error {
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, Notification{Email: email, TransactionID: transactionID, Summary: summary, Link: link})
	return nil
}
