package idempotency

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultTTL      = 10 * time.Minute
	DefaultCapacity = 10000
)

// Ledger remembers which appointment a given idempotency key produced.
// Entries expire after the TTL or when the capacity forces out the least
// recently used key; nothing else removes them.
type Ledger struct {
	entries *expirable.LRU[string, string]
}

func NewLedger(ttl time.Duration, capacity int) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{entries: expirable.NewLRU[string, string](capacity, nil, ttl)}
}

func (l *Ledger) Get(key string) (string, bool) {
	return l.entries.Get(key)
}

// Put records key -> appointmentID. Callers hold the key's lock.
func (l *Ledger) Put(key, appointmentID string) {
	l.entries.Add(key, appointmentID)
}

func (l *Ledger) Len() int {
	return l.entries.Len()
}
