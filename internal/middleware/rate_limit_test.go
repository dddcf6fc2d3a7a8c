package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 3)
	defer rl.Stop()

	subject := "auth0|alice"

	// Burst allows the first three requests
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(subject), "request %d should be allowed", i+1)
	}

	// Fourth request inside the same instant is rejected
	assert.False(t, rl.Allow(subject))
}

func TestRateLimiterIsolatesSubjects(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	assert.True(t, rl.Allow("auth0|alice"))
	assert.False(t, rl.Allow("auth0|alice"))

	// A different subject has its own bucket
	assert.True(t, rl.Allow("auth0|bob"))
}

func TestRateLimiterGetStateUnknownSubject(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 5)
	defer rl.Stop()

	remaining, resetTime := rl.GetState("auth0|unknown")
	assert.Equal(t, 5, remaining)
	assert.WithinDuration(t, time.Now().Add(time.Minute), resetTime, 2*time.Second)
}
