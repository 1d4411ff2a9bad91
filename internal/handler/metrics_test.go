package handler

import "testing"

func TestResolveWindow(t *testing.T) {
	h := &MetricsHandler{ShortWindow: 12, LongWindow: 48, IntradayWindow: 18}
	tests := []struct {
		raw  string
		want int
	}{
		{"", 12},
		{"short", 12},
		{"long", 48},
		{"LONG", 48},
		{"intraday", 18},
		{"7", 7},
		{" 7 ", 7},
		{"0", 12},
		{"-3", 12},
		{"junk", 12},
	}
	for _, tt := range tests {
		if got := h.resolveWindow(tt.raw); got != tt.want {
			t.Fatalf("resolveWindow(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
