package bus

import "time"

// Event kinds published by rigdesk components. Subscribers filter by
// prefix, so "unread." matches both counter change kinds.
const (
	KindViewChanged         = "view.changed"
	KindConversationRead    = "conversation.read"
	KindConversationDeleted = "conversation.deleted"
	KindMessageSent         = "message.sent"
	KindNotificationRead    = "notification.read"
	KindUnreadMessages      = "unread.messages_changed"
	KindUnreadNotifications = "unread.notifications_changed"
)

// Event represents a client-side event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// UnreadChange is the payload for unread.* events.
type UnreadChange struct {
	Count int
}

// ThreadRef is the payload for conversation.* and message.* events.
type ThreadRef struct {
	ThreadID string
}
