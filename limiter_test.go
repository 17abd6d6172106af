package churchsite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisitorPostsShareBudget(t *testing.T) {
	l := NewLoginLimiter(2, time.Minute)
	const ip = "198.51.100.7"

	assert.True(t, l.Allow(ip))
	assert.True(t, l.Allow(ip))
	assert.False(t, l.Allow(ip), "third post inside the window")
	assert.True(t, l.Allow("198.51.100.8"), "other addresses keep their own budget")
}

func TestBudgetRefillsAfterWindow(t *testing.T) {
	l := NewLoginLimiter(1, 100*time.Millisecond)
	const ip = "198.51.100.9"

	assert.True(t, l.Allow(ip))
	assert.False(t, l.Allow(ip))
	assert.Eventually(t, func() bool { return l.Check(ip) }, time.Second, 20*time.Millisecond)
}

func TestFailedSignInsOnlyCountWhenRecorded(t *testing.T) {
	l := NewLoginLimiter(2, time.Minute)
	const ip = "192.0.2.44"

	for range 5 {
		assert.True(t, l.Check(ip))
	}
	l.Record(ip)
	assert.True(t, l.Check(ip))
	l.Record(ip)
	assert.False(t, l.Check(ip))

	l.Reset(ip)
	assert.True(t, l.Check(ip), "a successful sign-in clears the failures")
}

func TestPurgeForgetsEveryAddress(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	for _, ip := range []string{"192.0.2.1", "192.0.2.2"} {
		l.Record(ip)
		assert.False(t, l.Check(ip))
	}
	l.Purge()
	assert.True(t, l.Check("192.0.2.1"))
	assert.True(t, l.Check("192.0.2.2"))
}
