package views

import "time"

// formatTimestamp renders a message time compactly: clock for today,
// month/day otherwise.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

// truncate shortens a preview to maxLen runes. Cutting on rune boundaries
// keeps multi-byte text from field crews' phones valid.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
