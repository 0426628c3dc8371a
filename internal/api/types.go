package api

import "time"

// UserRef is a lightweight user reference embedded in conversations,
// messages and the recipient allow-list.
type UserRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Roles known to the RigOps backend. Conversation deletion is gated to
// admins server-side; the client mirrors the gate to avoid a doomed call.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperator   = "operator"
)

// Conversation is a message thread as listed in the inbox. The preview
// fields are server-denormalized; the list arrives sorted by lastMessageAt
// and is rendered in that order.
type Conversation struct {
	ThreadID      string    `json:"threadId"`
	Subject       string    `json:"subject"`
	Participants  []UserRef `json:"participants"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
}

// OtherParticipants returns the thread participants excluding the viewer.
// Used to auto-populate reply recipients.
func (c *Conversation) OtherParticipants(viewerID string) []UserRef {
	var others []UserRef
	for _, p := range c.Participants {
		if p.ID != viewerID {
			others = append(others, p)
		}
	}
	return others
}

// Message is a single immutable message within a thread.
type Message struct {
	ID        string    `json:"_id"`
	Sender    UserRef   `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Pagination describes the server-side page window of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ConversationPage is one page of the inbox listing.
type ConversationPage struct {
	Conversations []Conversation `json:"conversations"`
	Pagination    Pagination     `json:"pagination"`
}

// SendRequest is the POST /messages body. An empty ThreadID starts a new
// thread; a set ThreadID appends a reply.
type SendRequest struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	ThreadID   string   `json:"threadId,omitempty"`
}

// Notification types emitted by RigOps domain events.
const (
	NotifyProjectAssigned      = "project_assigned"
	NotifyProjectStatusChanged = "project_status_changed"
	NotifyReportSubmitted      = "report_submitted"
	NotifyReportApproved       = "report_approved"
	NotifyReportRejected       = "report_rejected"
	NotifyUserRoleChanged      = "user_role_changed"
)

// Notification priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// LocalizedText maps language codes to localized strings.
type LocalizedText map[string]string

// Resolve returns the entry for lang, falling back to English, then to any
// entry at all. Missing entries never panic the renderer.
func (t LocalizedText) Resolve(lang string) string {
	if s, ok := t[lang]; ok && s != "" {
		return s
	}
	if s, ok := t["en"]; ok && s != "" {
		return s
	}
	for _, s := range t {
		if s != "" {
			return s
		}
	}
	return ""
}

// Notification is a server-created alert for the viewer.
type Notification struct {
	ID        string        `json:"_id"`
	Type      string        `json:"type"`
	Title     LocalizedText `json:"title"`
	Message   LocalizedText `json:"message"`
	Priority  string        `json:"priority"`
	IsRead    bool          `json:"isRead"`
	CreatedAt time.Time     `json:"createdAt"`
	ActionURL string        `json:"actionUrl,omitempty"`
}
