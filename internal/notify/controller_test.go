package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/bus"
	"go.uber.org/zap"
)

type fakeNotifications struct {
	mu    sync.Mutex
	items []api.Notification

	listCalls    int
	lastUnread   bool
	markAllCalls int
}

func (f *fakeNotifications) List(_ context.Context, unreadOnly bool, _ int) ([]api.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastUnread = unreadOnly
	var out []api.Notification
	for _, n := range f.items {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotifications) MarkAllRead(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markAllCalls++
	for i := range f.items {
		f.items[i].IsRead = true
	}
	return nil
}

func (f *fakeNotifications) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	for _, n := range f.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	f.items = kept
	return nil
}

func seed() *fakeNotifications {
	return &fakeNotifications{items: []api.Notification{
		{ID: "n1", Type: api.NotifyReportSubmitted, Title: api.LocalizedText{"en": "Report submitted"}},
		{ID: "n2", Type: api.NotifyProjectAssigned, Title: api.LocalizedText{"en": "Project assigned", "tr": "Proje atandı"}, IsRead: true},
	}}
}

func TestFilterSwitchRefetchesServerSide(t *testing.T) {
	f := seed()
	c := NewController(f, bus.New(), zap.NewNop(), "en")
	ctx := context.Background()

	if err := c.Load(ctx, FilterAll); err != nil {
		t.Fatal(err)
	}
	if len(c.Items()) != 2 {
		t.Errorf("all items = %d, want 2", len(c.Items()))
	}

	if err := c.Load(ctx, FilterUnread); err != nil {
		t.Fatal(err)
	}
	if !f.lastUnread {
		t.Error("unread filter not passed to server")
	}
	items := c.Items()
	if len(items) != 1 || items[0].ID != "n1" {
		t.Errorf("unread items = %v, want [n1]", items)
	}
	if f.listCalls != 2 {
		t.Errorf("list calls = %d, want 2 (filter switch refetches)", f.listCalls)
	}
}

func TestMarkReadUpdatesLocalAndPublishes(t *testing.T) {
	f := seed()
	b := bus.New()
	c := NewController(f, b, zap.NewNop(), "en")
	ctx := context.Background()
	if err := c.Load(ctx, FilterAll); err != nil {
		t.Fatal(err)
	}

	ch, unsub := b.Subscribe("notification.", 10)
	defer unsub()

	if err := c.MarkRead(ctx, "n1"); err != nil {
		t.Fatal(err)
	}
	// Idempotent: marking again is not an error.
	if err := c.MarkRead(ctx, "n1"); err != nil {
		t.Errorf("second MarkRead() error = %v, want nil", err)
	}

	for _, n := range c.Items() {
		if n.ID == "n1" && !n.IsRead {
			t.Error("n1 not flipped to read locally")
		}
	}

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindNotificationRead {
			t.Errorf("event kind = %q", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification.read event published")
	}
}

func TestMarkAllReadRefetches(t *testing.T) {
	f := seed()
	c := NewController(f, bus.New(), zap.NewNop(), "en")
	ctx := context.Background()
	if err := c.Load(ctx, FilterUnread); err != nil {
		t.Fatal(err)
	}
	before := f.listCalls

	if err := c.MarkAllRead(ctx); err != nil {
		t.Fatal(err)
	}
	if f.markAllCalls != 1 {
		t.Errorf("markAll calls = %d, want 1", f.markAllCalls)
	}
	if f.listCalls != before+1 {
		t.Error("mark-all-read must refetch the list")
	}
	if len(c.Items()) != 0 {
		t.Errorf("unread view after mark-all = %v, want empty", c.Items())
	}
}

func TestDeleteRemovesLocally(t *testing.T) {
	f := seed()
	c := NewController(f, bus.New(), zap.NewNop(), "en")
	ctx := context.Background()
	if err := c.Load(ctx, FilterAll); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete(ctx, "n2"); err != nil {
		t.Fatal(err)
	}
	items := c.Items()
	if len(items) != 1 || items[0].ID != "n1" {
		t.Errorf("items after delete = %v, want [n1]", items)
	}
}

func TestLocalizedFallback(t *testing.T) {
	f := seed()
	c := NewController(f, bus.New(), zap.NewNop(), "tr")
	ctx := context.Background()
	if err := c.Load(ctx, FilterAll); err != nil {
		t.Fatal(err)
	}

	items := c.Items()
	// n1 has no Turkish entry; English fallback must render, not panic.
	if got := c.Title(&items[0]); got != "Report submitted" {
		t.Errorf("fallback title = %q, want English text", got)
	}
	if got := c.Title(&items[1]); got != "Proje atandı" {
		t.Errorf("localized title = %q, want Turkish text", got)
	}
}
