package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTripDuration(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		duration int
		nights   int
	}{
		{
			name:     "three day trip",
			start:    day(2025, 6, 1),
			end:      day(2025, 6, 3),
			duration: 3,
			nights:   2,
		},
		{
			name:     "single day trip still has one night",
			start:    day(2025, 6, 1),
			end:      day(2025, 6, 1),
			duration: 1,
			nights:   1,
		},
		{
			name:     "end before start clamps to one day",
			start:    day(2025, 6, 5),
			end:      day(2025, 6, 1),
			duration: 1,
			nights:   1,
		},
		{
			name:     "week long trip",
			start:    day(2025, 6, 1),
			end:      day(2025, 6, 7),
			duration: 7,
			nights:   6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := Trip{StartDate: tt.start, EndDate: tt.end}
			assert.Equal(t, tt.duration, trip.Duration())
			assert.Equal(t, tt.nights, trip.Nights())
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
	}{
		{"Airfare", CategoryAirfare},
		{"airfare", CategoryAirfare},
		{"  Lodging ", CategoryLodging},
		{"hotel", CategoryLodging},
		{"flight", CategoryAirfare},
		{"entertainment", CategoryClientEntertainment},
		{"Client entertainment", CategoryClientEntertainment},
		{"something unknown", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCategory(tt.input))
		})
	}
}
