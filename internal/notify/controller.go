// Package notify drives the notification list view: server-side filtering,
// per-item and bulk read actions, and localized rendering.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/bus"
	"go.uber.org/zap"
)

// Filter selects which notifications the server returns.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
)

// NotificationAPI is the slice of the REST client the controller needs.
type NotificationAPI interface {
	List(ctx context.Context, unreadOnly bool, limit int) ([]api.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

const listLimit = 50

// Controller owns the notification list state. Switching filter always
// refetches with the filter as a server query param, so the unread view is
// exactly the server's notion of unread at fetch time.
type Controller struct {
	client NotificationAPI
	bus    *bus.Bus
	logger *zap.Logger
	lang   string

	mu      sync.RWMutex
	filter  Filter
	items   []api.Notification
	loading bool
}

// NewController creates a controller starting on the "all" filter.
func NewController(client NotificationAPI, b *bus.Bus, logger *zap.Logger, lang string) *Controller {
	return &Controller{
		client: client,
		bus:    b,
		logger: logger,
		lang:   lang,
		filter: FilterAll,
	}
}

// Filter returns the active filter.
func (c *Controller) Filter() Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// Items returns a snapshot of the loaded notifications.
func (c *Controller) Items() []api.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]api.Notification(nil), c.items...)
}

// Loading reports whether a list fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Load fetches the list for the given filter.
func (c *Controller) Load(ctx context.Context, f Filter) error {
	c.mu.Lock()
	c.filter = f
	c.loading = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	items, err := c.client.List(ctx, f == FilterUnread, listLimit)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// MarkRead marks one notification read. Safe on an already-read item; the
// local copy flips immediately and the unread counter is invalidated
// through the bus.
func (c *Controller) MarkRead(ctx context.Context, id string) error {
	if err := c.client.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].IsRead = true
		}
	}
	c.mu.Unlock()
	c.publishRead()
	return nil
}

// MarkAllRead marks everything read then refetches the full list rather
// than patching each item, trading latency for consistency.
func (c *Controller) MarkAllRead(ctx context.Context) error {
	if err := c.client.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	c.publishRead()
	c.mu.RLock()
	f := c.filter
	c.mu.RUnlock()
	return c.Load(ctx, f)
}

// Delete removes the notification server-side and drops it from the local
// list on success.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.client.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	c.mu.Lock()
	kept := c.items[:0]
	for _, n := range c.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	c.items = kept
	c.mu.Unlock()
	c.publishRead()
	return nil
}

// Title resolves a notification's title in the active language with the
// English fallback.
func (c *Controller) Title(n *api.Notification) string {
	return n.Title.Resolve(c.lang)
}

// Body resolves a notification's message text.
func (c *Controller) Body(n *api.Notification) string {
	return n.Message.Resolve(c.lang)
}

func (c *Controller) publishRead() {
	c.bus.Publish(bus.Event{Kind: bus.KindNotificationRead, Timestamp: time.Now()})
}
