package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindowLimiter(t *testing.T) {
	l := NewFixedWindowLimiter(2, time.Hour)

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow("1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retryAfter := l.Allow("1.2.3.4")
	if ok {
		t.Fatal("third request in the window should be denied")
	}
	if retryAfter != time.Hour {
		t.Errorf("retry-after = %v, want %v", retryAfter, time.Hour)
	}

	// Other clients keep their own budget.
	if ok, _ := l.Allow("5.6.7.8"); !ok {
		t.Error("a different key must not share the exhausted budget")
	}
}

func TestFixedWindowLimiterResets(t *testing.T) {
	l := NewFixedWindowLimiter(1, 20*time.Millisecond)

	if ok, _ := l.Allow("1.2.3.4"); !ok {
		t.Fatal("first request should be allowed")
	}
	if ok, _ := l.Allow("1.2.3.4"); ok {
		t.Fatal("second request should be denied")
	}

	deadline := time.After(2 * time.Second)
	for {
		if ok, _ := l.Allow("1.2.3.4"); ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("window never reset")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
