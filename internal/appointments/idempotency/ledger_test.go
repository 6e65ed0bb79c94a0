package idempotency

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLedger_GetPut(t *testing.T) {
	l := NewLedger(time.Minute, 10)

	_, ok := l.Get("k1")
	assert.False(t, ok)

	l.Put("k1", "appt-1")

	id, ok := l.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "appt-1", id)
}

func TestLedger_Expires(t *testing.T) {
	l := NewLedger(30*time.Millisecond, 10)
	l.Put("k1", "appt-1")

	time.Sleep(80 * time.Millisecond)

	_, ok := l.Get("k1")
	assert.False(t, ok)
}

func TestLedger_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	l := NewLedger(time.Minute, 3)
	for i := range 3 {
		l.Put(fmt.Sprintf("k%d", i), fmt.Sprintf("appt-%d", i))
	}
	_, _ = l.Get("k0") // k1 becomes the oldest

	l.Put("k3", "appt-3")

	_, ok := l.Get("k1")
	assert.False(t, ok)
	_, ok = l.Get("k0")
	assert.True(t, ok)
	assert.Equal(t, 3, l.Len())
}

func TestNewLedger_Defaults(t *testing.T) {
	l := NewLedger(0, 0)
	l.Put("k", "v")

	id, ok := l.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", id)
}
