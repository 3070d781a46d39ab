package ratelimiter

import (
	"testing"
	"time"
)

func TestKeyLimiter_BurstThenDeny(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	if !l.Allow("1.2.3.4", now) || !l.Allow("1.2.3.4", now) {
		t.Fatalf("burst of 2 should be allowed")
	}
	if l.Allow("1.2.3.4", now) {
		t.Fatalf("third request in the same instant must be denied")
	}
	if !l.Allow("5.6.7.8", now) {
		t.Fatalf("other keys have their own bucket")
	}
	if !l.Allow("1.2.3.4", now.Add(2*time.Second)) {
		t.Fatalf("bucket should refill over time")
	}
}

func TestKeyLimiter_NilAllowsAll(t *testing.T) {
	var l *KeyLimiter
	if !l.Allow("x", time.Now()) {
		t.Fatalf("nil limiter must allow")
	}
	if New(0, 1, 0) != nil {
		t.Fatalf("invalid rps must return nil")
	}
}

func TestKeyLimiter_EvictsIdleKeys(t *testing.T) {
	l := New(100, 100, time.Second)
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	l.Allow("old", start)
	later := start.Add(time.Minute)
	for i := 0; i < 300; i++ {
		l.Allow("fresh", later)
	}
	if l.Len() != 1 {
		t.Fatalf("expected idle key evicted, have %d keys", l.Len())
	}
}
