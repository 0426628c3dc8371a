package views

import (
	"testing"
	"time"
	"unicode/utf8"
)

func TestFormatTimestamp(t *testing.T) {
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"today", now, now.Format("15:04")},
		{"yesterday", yesterday, yesterday.Format("01/02")},
		{"last year", now.AddDate(-1, 0, 0), now.AddDate(-1, 0, 0).Format("01/02")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTimestamp(tt.in); got != tt.want {
				t.Errorf("formatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short passes through", "pump 3 is down", 20, "pump 3 is down"},
		{"ascii cut", "casing delivery delayed", 10, "casing de…"},
		{"multibyte not split", "çalışma raporu hazır", 8, "çalışma…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
			}
		})
	}
}

func TestSanitizeForTerminal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "pump 3 is down", "pump 3 is down"},
		{"skin tone modifier", "ok \U0001F44D\U0001F3FD", "ok \U0001F44D"},
		{"zwj sequence", "crew \U0001F468‍\U0001F527", "crew \U0001F468\U0001F527"},
		{"variation selector", "done ✔️", "done ✔"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeForTerminal(tt.in); got != tt.want {
				t.Errorf("sanitizeForTerminal(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
