package main

import (
	"testing"
	"unicode/utf8"

	"github.com/pcarneir0/rigdesk/internal/api"
)

func TestPaginationFooter(t *testing.T) {
	tests := []struct {
		name string
		in   api.Pagination
		want string
	}{
		{"single page", api.Pagination{Page: 1, TotalPages: 1, Total: 3}, "page 1 of 1 (3 total)"},
		{"mid listing", api.Pagination{Page: 2, TotalPages: 5, Total: 94}, "page 2 of 5 (94 total)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paginationFooter(tt.in); got != tt.want {
				t.Errorf("paginationFooter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateToKeepsValidUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short passes through", "pump 3", 10, "pump 3"},
		{"ascii cut", "casing delivery delayed", 10, "casing de…"},
		{"multibyte not split", "çalışma raporu hazır", 8, "çalışma…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateTo(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncateTo(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateTo(%q, %d) produced invalid UTF-8", tt.in, tt.n)
			}
		})
	}
}
