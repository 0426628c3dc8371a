package api

import (
	"errors"
	"fmt"
)

// ErrNetwork marks transport failures where no HTTP response was received.
// Callers surface these as a generic "network error" flash.
var ErrNetwork = errors.New("network error")

// ErrUnauthorized marks 401 responses after the unauthorized handler has run.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a server-rejected request (4xx/5xx) carrying the payload message
// when the server provided one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// UserMessage returns the text to surface for err, preferring the server's
// own message and falling back to the given generic text.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrNetwork) {
		return "network error, please try again"
	}
	return fallback
}
