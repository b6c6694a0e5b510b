package httpmiddleware

import (
	"testing"
	"time"
)

func TestAllowWithinBudget(t *testing.T) {
	l := NewIPRateLimiter(3)
	now := time.Now()
	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4", now) {
			t.Fatalf("request %d denied within budget", i+1)
		}
	}
	if l.allow("1.2.3.4", now) {
		t.Fatal("request over budget allowed")
	}
	// A different client has its own window.
	if !l.allow("5.6.7.8", now) {
		t.Fatal("independent client denied")
	}
}

func TestWindowResets(t *testing.T) {
	l := NewIPRateLimiter(1)
	now := time.Now()
	if !l.allow("1.2.3.4", now) {
		t.Fatal("first request denied")
	}
	if l.allow("1.2.3.4", now.Add(30*time.Second)) {
		t.Fatal("second request in same window allowed")
	}
	if !l.allow("1.2.3.4", now.Add(61*time.Second)) {
		t.Fatal("request in fresh window denied")
	}
}
