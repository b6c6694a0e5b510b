// Package meals owns attendance records: three boolean flags per user per
// calendar date, created lazily on first access.
package meals

import "errors"

// ErrUnknownMeal signals a meal type outside the closed enumeration.
var ErrUnknownMeal = errors.New("unknown meal type")

// Type names one of the three tracked meals.
type Type string

const (
	Breakfast Type = "breakfast"
	Lunch     Type = "lunch"
	Dinner    Type = "dinner"
)

// Types lists the closed enumeration in serving order.
var Types = []Type{Breakfast, Lunch, Dinner}

// ParseType validates a caller-supplied meal name. Anything outside the
// enumeration is rejected here, before it can reach a query.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Breakfast, Lunch, Dinner:
		return Type(s), nil
	}
	return "", ErrUnknownMeal
}

// Day carries one date's flags.
type Day struct {
	Date      string `json:"date"`
	Breakfast bool   `json:"breakfast"`
	Lunch     bool   `json:"lunch"`
	Dinner    bool   `json:"dinner"`
}

// Window is the 3-day attendance view returned by GET /api/meals/:userId.
// The day1..day3 keys are part of the wire contract.
type Window struct {
	Day1 Day `json:"day1"`
	Day2 Day `json:"day2"`
	Day3 Day `json:"day3"`
}

// Days returns the window in order.
func (w Window) Days() [3]Day {
	return [3]Day{w.Day1, w.Day2, w.Day3}
}

// Counts is the per-date headcount maintained by the worker.
type Counts struct {
	Date      string `json:"date"`
	Breakfast int    `json:"breakfast"`
	Lunch     int    `json:"lunch"`
	Dinner    int    `json:"dinner"`
}
