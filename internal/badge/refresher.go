package badge

import (
	"context"

	"github.com/pcarneir0/rigdesk/internal/bus"
	"go.uber.org/zap"
)

// Refresher listens for domain events that change server-side unread
// aggregates and invalidates the matching counter. Views publish what
// happened (a thread was read, a notification deleted); the refresher owns
// the mapping to counters, so no view talks to the store directly for
// invalidation.
type Refresher struct {
	store  *Store
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewRefresher creates a refresher bound to the store.
func NewRefresher(store *Store, b *bus.Bus, logger *zap.Logger) *Refresher {
	return &Refresher{
		store:  store,
		bus:    b,
		logger: logger,
	}
}

// Start subscribes to conversation.*, message.* and notification.* events.
func (r *Refresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	convCh, unsubConv := r.bus.Subscribe("conversation.", 64)
	msgCh, unsubMsg := r.bus.Subscribe("message.", 64)
	notifCh, unsubNotif := r.bus.Subscribe("notification.", 64)

	go func() {
		defer unsubConv()
		defer unsubMsg()
		defer unsubNotif()
		for {
			select {
			case evt := <-convCh:
				r.handle(ctx, evt)
			case evt := <-msgCh:
				r.handle(ctx, evt)
			case evt := <-notifCh:
				r.handle(ctx, evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the refresher loop.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Refresher) handle(ctx context.Context, evt bus.Event) {
	switch evt.Kind {
	case bus.KindConversationRead, bus.KindConversationDeleted, bus.KindMessageSent:
		n := r.store.Invalidate(ctx, Messages)
		r.logger.Info("messages unread refreshed",
			zap.String("trigger", evt.Kind),
			zap.Int("count", n))
	case bus.KindNotificationRead:
		n := r.store.Invalidate(ctx, Notifications)
		r.logger.Info("notifications unread refreshed",
			zap.String("trigger", evt.Kind),
			zap.Int("count", n))
	}
}
