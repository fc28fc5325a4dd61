package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicAuth_SweepsIdleLimitersPeriodically(t *testing.T) {
	clock := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	a := NewBasicAuth("admin", "s3cret", 5)
	a.now = func() time.Time { return clock }

	a.limiter("10.0.0.1")
	a.limiter("10.0.0.2")
	assert.Len(t, a.clients, 2)

	// Idle, but the last sweep was too recent to run another.
	clock = clock.Add(limiterIdle + time.Minute)
	a.lastSweep = clock.Add(-time.Minute)
	a.limiter("10.0.0.3")
	assert.Len(t, a.clients, 3)

	clock = clock.Add(limiterIdle)
	a.limiter("10.0.0.3")
	assert.Len(t, a.clients, 1)
	assert.Contains(t, a.clients, "10.0.0.3")
	assert.Equal(t, clock, a.lastSweep)
}
