package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	tests := []struct {
		name    string
		advance time.Duration
		key     string
		want    bool
	}{
		{"first", 0, "a", true},
		{"second", time.Second, "a", true},
		{"over limit", time.Second, "a", false},
		{"other key", 0, "b", true},
		{"window slid", time.Minute, "a", true},
	}
	for _, tt := range tests {
		now = now.Add(tt.advance)
		if got := rl.Allow(tt.key); got != tt.want {
			t.Errorf("%s: Allow(%q) = %v, want %v", tt.name, tt.key, got, tt.want)
		}
	}

	now = now.Add(2 * time.Minute)
	rl.Cleanup()
	if n := len(rl.requests); n != 0 {
		t.Errorf("Cleanup() left %d keys", n)
	}
}
