package badge

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pcarneir0/rigdesk/internal/bus"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	messages      atomic.Int64
	notifications atomic.Int64
	msgCalls      atomic.Int64
	failMessages  atomic.Bool
}

func (f *fakeFetcher) MessagesUnread(context.Context) (int, error) {
	f.msgCalls.Add(1)
	if f.failMessages.Load() {
		return 0, errors.New("boom")
	}
	return int(f.messages.Load()), nil
}

func (f *fakeFetcher) NotificationsUnread(context.Context) (int, error) {
	return int(f.notifications.Load()), nil
}

func TestFormat(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "1"},
		{99, "99"},
		{100, "99+"},
		{250, "99+"},
		{-3, ""},
	}
	for _, tt := range tests {
		if got := Format(tt.n); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestGetFetchesOnce(t *testing.T) {
	f := &fakeFetcher{}
	f.messages.Store(7)
	s := NewStore(f, bus.New(), zap.NewNop())

	ctx := context.Background()
	if got := s.Get(ctx, Messages); got != 7 {
		t.Errorf("Get = %d, want 7", got)
	}
	// Later reads serve the cache even if the server value moved.
	f.messages.Store(9)
	if got := s.Get(ctx, Messages); got != 7 {
		t.Errorf("cached Get = %d, want 7", got)
	}
	if calls := f.msgCalls.Load(); calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
}

func TestInvalidateRefetchesAndPublishes(t *testing.T) {
	f := &fakeFetcher{}
	f.messages.Store(3)
	b := bus.New()
	s := NewStore(f, b, zap.NewNop())

	ctx := context.Background()
	_ = s.Get(ctx, Messages)

	ch, unsub := b.Subscribe("unread.", 10)
	defer unsub()

	f.messages.Store(0)
	if got := s.Invalidate(ctx, Messages); got != 0 {
		t.Errorf("Invalidate = %d, want 0", got)
	}

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindUnreadMessages {
			t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindUnreadMessages)
		}
		change := evt.Payload.(bus.UnreadChange)
		if change.Count != 0 {
			t.Errorf("published count = %d, want 0", change.Count)
		}
	case <-time.After(time.Second):
		t.Fatal("no unread.changed event published")
	}

	if got := s.Peek(Messages); got != 0 {
		t.Errorf("Peek after invalidate = %d, want 0", got)
	}
}

func TestFetchFailureFallsBackToZero(t *testing.T) {
	f := &fakeFetcher{}
	f.messages.Store(42)
	f.failMessages.Store(true)
	s := NewStore(f, bus.New(), zap.NewNop())

	if got := s.Get(context.Background(), Messages); got != 0 {
		t.Errorf("Get on failure = %d, want 0 (silent fallback)", got)
	}
}

func TestCountersAreIndependent(t *testing.T) {
	f := &fakeFetcher{}
	f.messages.Store(2)
	f.notifications.Store(8)
	s := NewStore(f, bus.New(), zap.NewNop())

	ctx := context.Background()
	if got := s.Get(ctx, Messages); got != 2 {
		t.Errorf("messages = %d, want 2", got)
	}
	if got := s.Get(ctx, Notifications); got != 8 {
		t.Errorf("notifications = %d, want 8", got)
	}
}

func TestRefresherInvalidatesOnConversationRead(t *testing.T) {
	f := &fakeFetcher{}
	f.messages.Store(5)
	b := bus.New()
	s := NewStore(f, b, zap.NewNop())

	ctx := context.Background()
	_ = s.Get(ctx, Messages)

	r := NewRefresher(s, b, zap.NewNop())
	r.Start(ctx)
	defer r.Stop()

	unreadCh, unsub := b.Subscribe("unread.", 10)
	defer unsub()

	f.messages.Store(0)
	b.Publish(bus.Event{Kind: bus.KindConversationRead, Timestamp: time.Now(), Payload: bus.ThreadRef{ThreadID: "t1"}})

	select {
	case evt := <-unreadCh:
		change := evt.Payload.(bus.UnreadChange)
		if change.Count != 0 {
			t.Errorf("converged count = %d, want 0", change.Count)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not invalidate messages counter")
	}
}
