package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// MessagingService covers the /messages endpoints.
type MessagingService struct {
	c *Client
}

// ListConversations fetches one inbox page, sorted by the server on
// lastMessageAt. The client renders the list as returned.
func (s *MessagingService) ListConversations(ctx context.Context, page, limit int) (*ConversationPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	path := fmt.Sprintf("/messages/conversations?page=%d&limit=%d", page, limit)
	var out ConversationPage
	if err := s.c.get(ctx, path, &out, nil); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return &out, nil
}

// ListMessages fetches the messages of one thread, ascending by createdAt
// as ordered by the server.
func (s *MessagingService) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	path := "/messages/conversations/" + url.PathEscape(threadID) + "/messages"
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := s.c.get(ctx, path, &out, nil); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out.Messages, nil
}

// ListRecipients fetches the server-enforced recipient allow-list. The
// client must not assume every platform user is a valid recipient.
func (s *MessagingService) ListRecipients(ctx context.Context) ([]UserRef, error) {
	var out struct {
		Recipients []UserRef `json:"recipients"`
	}
	if err := s.c.get(ctx, "/messages/recipients", &out, nil); err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	return out.Recipients, nil
}

// Send creates a new thread (empty ThreadID) or appends a reply. A
// client-generated idempotency key guards against duplicate threads on a
// retried submit.
func (s *MessagingService) Send(ctx context.Context, req SendRequest) (*Conversation, error) {
	headers := map[string]string{"X-Idempotency-Key": uuid.New().String()}
	var out Conversation
	if err := s.c.do(ctx, http.MethodPost, "/messages", req, &out, headers); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &out, nil
}

// MarkThreadRead marks every message in the thread read for the viewer.
// The server treats this as idempotent.
func (s *MessagingService) MarkThreadRead(ctx context.Context, threadID string) error {
	path := "/messages/conversations/" + url.PathEscape(threadID) + "/read"
	if err := s.c.do(ctx, http.MethodPatch, path, nil, nil, nil); err != nil {
		return fmt.Errorf("mark thread read: %w", err)
	}
	return nil
}

// DeleteConversation soft-deletes the thread. Role-gated server-side.
func (s *MessagingService) DeleteConversation(ctx context.Context, threadID string) error {
	path := "/messages/conversations/" + url.PathEscape(threadID)
	if err := s.c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// UnreadCount returns the viewer's total unread message count.
func (s *MessagingService) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := s.c.get(ctx, "/messages/unread-count", &out, nil); err != nil {
		return 0, fmt.Errorf("messages unread count: %w", err)
	}
	return out.Count, nil
}
