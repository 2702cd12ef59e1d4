package cache

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration) *ResultCache {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	c, err := Open(t.TempDir(), ttl, logger)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

type payload struct {
	Items []string `json:"items"`
}

func TestGetSetRoundTrip(t *testing.T) {
	c := newTestCache(t, time.Minute)

	var out payload
	if err := c.Get("user-1", "sig-a", &out); err != ErrMiss {
		t.Fatalf("expected ErrMiss on empty cache, got %v", err)
	}

	in := payload{Items: []string{"a", "b"}}
	if err := c.Set("user-1", "sig-a", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Get("user-1", "sig-a", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(out.Items) != 2 || out.Items[0] != "a" {
		t.Errorf("round-trip mismatch: %+v", out)
	}

	// Signatures are independent keys.
	if err := c.Get("user-1", "sig-b", &out); err != ErrMiss {
		t.Errorf("expected ErrMiss for other signature, got %v", err)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t, 50*time.Millisecond)

	if err := c.Set("user-1", "sig-a", payload{Items: []string{"a"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(120 * time.Millisecond)

	var out payload
	if err := c.Get("user-1", "sig-a", &out); err != ErrMiss {
		t.Errorf("expected ErrMiss after TTL, got %v", err)
	}
}

func TestInvalidateOwner(t *testing.T) {
	c := newTestCache(t, time.Minute)

	for _, sig := range []string{"a", "b", "c"} {
		if err := c.Set("user-1", sig, payload{Items: []string{sig}}); err != nil {
			t.Fatalf("set %s: %v", sig, err)
		}
	}
	if err := c.Set("user-2", "a", payload{Items: []string{"x"}}); err != nil {
		t.Fatalf("set user-2: %v", err)
	}

	if err := c.InvalidateOwner("user-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	var out payload
	for _, sig := range []string{"a", "b", "c"} {
		if err := c.Get("user-1", sig, &out); err != ErrMiss {
			t.Errorf("expected ErrMiss for user-1 %s, got %v", sig, err)
		}
	}
	// Other owners keep their entries.
	if err := c.Get("user-2", "a", &out); err != nil {
		t.Errorf("user-2 entry should survive, got %v", err)
	}
}
