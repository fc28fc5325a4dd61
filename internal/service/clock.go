// Package service contains the business logic for the consultancy registry.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import "time"

// Clock returns the reference day that deadline classification is computed
// against. Implementations return a calendar date at midnight UTC.
type Clock func() time.Time

// TodayIn returns a Clock reporting the current calendar date in loc.
func TodayIn(loc *time.Location) Clock {
	return func() time.Time {
		y, m, d := time.Now().In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

// FixedDay returns a Clock that always reports the given date.
func FixedDay(day time.Time) Clock {
	y, m, d := day.Date()
	fixed := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}
