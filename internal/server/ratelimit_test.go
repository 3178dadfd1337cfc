package server

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("sixth request should be blocked")
	}
}

func TestRateLimiterIsPerIP(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)

	if !rl.allow("10.0.0.1") {
		t.Fatal("first IP should be allowed")
	}
	if !rl.allow("10.0.0.2") {
		t.Fatal("second IP should be allowed independently")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("first IP should now be blocked")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)

	if !rl.allow("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("second immediate request should be blocked")
	}

	time.Sleep(20 * time.Millisecond)
	if !rl.allow("10.0.0.1") {
		t.Fatal("request after window should be allowed again")
	}
}
