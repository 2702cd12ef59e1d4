package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst absorbs a keystroke flurry",
			rps:      1,
			burst:    5,
			calls:    5,
			wantPass: 5,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    6,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.rps, tt.burst)
			defer l.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if l.Allow("client") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestLimiterIndependentKeys(t *testing.T) {
	l := New(1, 1)
	defer l.Stop()

	l.Allow("10.0.0.1")
	if l.Allow("10.0.0.1") {
		t.Error("10.0.0.1 should be exhausted")
	}

	if !l.Allow("10.0.0.2") {
		t.Error("10.0.0.2 should have its own bucket")
	}
}

func TestLimiterEvictIdle(t *testing.T) {
	l := New(1, 1)
	defer l.Stop()

	l.Allow("stale")
	l.evictIdle(time.Now().Add(time.Second))

	l.mu.Lock()
	_, ok := l.buckets["stale"]
	l.mu.Unlock()
	if ok {
		t.Error("idle bucket should be evicted")
	}

	// A fresh request rebuilds the bucket with a full burst.
	if !l.Allow("stale") {
		t.Error("evicted key should start over with a fresh bucket")
	}
}
