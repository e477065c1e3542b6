package models

import "time"

// Trip represents a business trip that transactions can be linked to.
// Linked transactions are found through the record store's trip index;
// the trip never owns back-references to them.
type Trip struct {
	ID        int
	Email     string // Owner of the trip
	TripName  string
	StartDate time.Time
	EndDate   time.Time
	Country1  string // Primary destination country
}

// Duration returns the inclusive day count of the trip, minimum 1.
func (t *Trip) Duration() int {
	days := int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// Nights returns the number of lodging nights, minimum 1.
func (t *Trip) Nights() int {
	nights := t.Duration() - 1
	if nights < 1 {
		return 1
	}
	return nights
}
