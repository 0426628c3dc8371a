package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// NotificationService covers the /notifications endpoints.
type NotificationService struct {
	c *Client
}

// List fetches notifications. unreadOnly is passed through as a server-side
// filter so the unread view reflects the server's notion of unread at fetch
// time, not a client-side subset.
func (s *NotificationService) List(ctx context.Context, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	path := fmt.Sprintf("/notifications?unreadOnly=%t&limit=%d", unreadOnly, limit)
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := s.c.get(ctx, path, &out, nil); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out.Notifications, nil
}

// UnreadCount returns the viewer's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := s.c.get(ctx, "/notifications/unread-count", &out, nil); err != nil {
		return 0, fmt.Errorf("notifications unread count: %w", err)
	}
	return out.Count, nil
}

// MarkRead marks a single notification read. Safe on an already-read one.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	path := "/notifications/" + url.PathEscape(id) + "/read"
	if err := s.c.do(ctx, http.MethodPatch, path, nil, nil, nil); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification read for the viewer.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	if err := s.c.do(ctx, http.MethodPatch, "/notifications/mark-all-read", nil, nil, nil); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	path := "/notifications/" + url.PathEscape(id)
	if err := s.c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}
