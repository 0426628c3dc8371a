// Package badge holds the shared unread-counter cache behind every badge
// surface. The legacy dashboard let each surface poll its own counter on
// mount, so surfaces drifted apart after a mutation until their next
// remount. Here there is one store per process: surfaces read cached values
// and subscribe to unread.* bus events, and every mutating action funnels
// through Invalidate so all surfaces converge without a remount.
package badge

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pcarneir0/rigdesk/internal/bus"
	"go.uber.org/zap"
)

// Counter identifies one of the two server-computed unread aggregates.
type Counter int

const (
	Messages Counter = iota
	Notifications
)

func (c Counter) String() string {
	if c == Messages {
		return "messages"
	}
	return "notifications"
}

func (c Counter) eventKind() string {
	if c == Messages {
		return bus.KindUnreadMessages
	}
	return bus.KindUnreadNotifications
}

// CountFetcher fetches the two unread counters from the server.
type CountFetcher interface {
	MessagesUnread(ctx context.Context) (int, error)
	NotificationsUnread(ctx context.Context) (int, error)
}

// Store is the invalidatable unread-count cache.
type Store struct {
	mu      sync.RWMutex
	counts  map[Counter]int
	fetched map[Counter]bool

	fetcher CountFetcher
	bus     *bus.Bus
	logger  *zap.Logger
}

// NewStore creates a store backed by the given fetcher.
func NewStore(fetcher CountFetcher, b *bus.Bus, logger *zap.Logger) *Store {
	return &Store{
		counts:  make(map[Counter]int),
		fetched: make(map[Counter]bool),
		fetcher: fetcher,
		bus:     b,
		logger:  logger,
	}
}

// Get returns the cached value for the counter, fetching it once on first
// use. Fetch failures degrade silently to zero; badge reads are best-effort
// and never interrupt the user.
func (s *Store) Get(ctx context.Context, c Counter) int {
	s.mu.RLock()
	done := s.fetched[c]
	n := s.counts[c]
	s.mu.RUnlock()
	if done {
		return n
	}
	return s.refresh(ctx, c)
}

// Peek returns the cached value without triggering a fetch.
func (s *Store) Peek(c Counter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[c]
}

// Invalidate refetches the counter and publishes unread.* so every
// subscribed surface re-renders from the new value.
func (s *Store) Invalidate(ctx context.Context, c Counter) int {
	return s.refresh(ctx, c)
}

func (s *Store) refresh(ctx context.Context, c Counter) int {
	var n int
	var err error
	switch c {
	case Messages:
		n, err = s.fetcher.MessagesUnread(ctx)
	case Notifications:
		n, err = s.fetcher.NotificationsUnread(ctx)
	}
	if err != nil {
		// Silent fallback to zero; the badge simply disappears.
		s.logger.Warn("unread count fetch failed, showing zero",
			zap.String("counter", c.String()),
			zap.Error(err))
		n = 0
	}

	s.mu.Lock()
	s.counts[c] = n
	s.fetched[c] = true
	s.mu.Unlock()

	s.bus.Publish(bus.Event{
		Kind:      c.eventKind(),
		Timestamp: time.Now(),
		Payload:   bus.UnreadChange{Count: n},
	})
	return n
}

// Format renders a count for a badge surface: zero yields an empty string
// (no badge), anything above 99 caps at "99+".
func Format(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > 99:
		return "99+"
	default:
		return strconv.Itoa(n)
	}
}
