package domain

import (
	"cmp"
	"slices"
	"time"
)

// Tier is the presentation band of a deadline.
type Tier string

const (
	TierCritical Tier = "critical"
	TierWarning  Tier = "warning"
	TierOK       Tier = "ok"
	TierNeutral  Tier = "neutral"
)

// Bucket is the coarse sort partition of a deadline.
type Bucket int

const (
	BucketOverdue Bucket = iota
	BucketUpcoming
	BucketUndated
)

// Ranked pairs an item with its deadline classification relative to a
// reference day. DaysRemaining is meaningless when HasDueDate is false.
type Ranked[T any] struct {
	Item          T
	DueDate       *time.Time
	HasDueDate    bool
	DaysRemaining int
	Bucket        Bucket
	Tier          Tier
}

// Overdue reports whether the deadline has already passed.
// Tier alone cannot tell this apart from "due within 30 days".
func (r Ranked[T]) Overdue() bool {
	return r.HasDueDate && r.DaysRemaining < 0
}

// RankDeadlines orders items so overdue ones come first (most overdue first),
// then upcoming ones (soonest first), then undated ones in input order, and
// assigns each a Tier. today is supplied by the caller; the clock is never read.
// The input slice is not modified.
func RankDeadlines[T any](items []T, dueDate func(T) *time.Time, today time.Time) []Ranked[T] {
	ranked := make([]Ranked[T], len(items))
	for i, it := range items {
		ranked[i] = classify(it, dueDate(it), today)
	}
	slices.SortStableFunc(ranked, func(a, b Ranked[T]) int {
		if c := cmp.Compare(a.Bucket, b.Bucket); c != 0 {
			return c
		}
		if a.Bucket == BucketUndated {
			return 0
		}
		if c := cmp.Compare(a.DaysRemaining, b.DaysRemaining); c != 0 {
			return c
		}
		return a.DueDate.Compare(*b.DueDate)
	})
	return ranked
}

// DaysUntil returns the whole number of calendar days from today to due.
// Negative when due is in the past. Only the calendar dates are compared.
// Computed on Unix seconds: a time.Duration saturates after about 292 years.
func DaysUntil(due, today time.Time) int {
	d := civilDate(due).Unix()
	t := civilDate(today).Unix()
	return int((d - t) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// TierFor maps days remaining to a Tier. Overdue deadlines are CRITICAL,
// the same tier as those due within 30 days.
func TierFor(daysRemaining int) Tier {
	switch {
	case daysRemaining <= 30:
		return TierCritical
	case daysRemaining <= 60:
		return TierWarning
	case daysRemaining <= 90:
		return TierOK
	default:
		return TierNeutral
	}
}

func classify[T any](item T, due *time.Time, today time.Time) Ranked[T] {
	r := Ranked[T]{Item: item, DueDate: due}
	if due == nil {
		r.Bucket = BucketUndated
		r.Tier = TierNeutral
		return r
	}
	r.HasDueDate = true
	r.DaysRemaining = DaysUntil(*due, today)
	r.Tier = TierFor(r.DaysRemaining)
	if r.DaysRemaining < 0 {
		r.Bucket = BucketOverdue
	} else {
		r.Bucket = BucketUpcoming
	}
	return r
}

// civilDate drops the clock part and zone of t, keeping its calendar date.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
