package views

import (
	"strings"
	"testing"

	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/notify"
	"github.com/pcarneir0/rigdesk/internal/tui/ui"
)

func TestNotificationsEscapesServerText(t *testing.T) {
	theme := ui.DefaultTheme()
	v := NewNotifications(theme, "en")

	v.Update([]api.Notification{
		{
			ID:      "n1",
			Title:   api.LocalizedText{"en": "[red]pump alarm[-]"},
			Message: api.LocalizedText{"en": "pressure [high] on rig 4"},
		},
	}, notify.FilterAll)

	title := v.GetCell(1, 1).Text
	if title != "[red[]pump alarm[-[]" {
		t.Errorf("title cell = %q, want bracketed text escaped", title)
	}
	msg := v.GetCell(1, 2).Text
	if !strings.Contains(msg, "[high[]") {
		t.Errorf("message cell = %q, want [high] escaped", msg)
	}
}

func TestNotificationsRendersPriority(t *testing.T) {
	theme := ui.DefaultTheme()
	v := NewNotifications(theme, "en")

	v.Update([]api.Notification{
		{
			ID:       "n1",
			Title:    api.LocalizedText{"en": "Report rejected"},
			Message:  api.LocalizedText{"en": "resubmit by Friday"},
			Priority: api.PriorityHigh,
		},
		{
			ID:       "n2",
			Title:    api.LocalizedText{"en": "Project assigned"},
			Message:  api.LocalizedText{"en": "well 12-B"},
			Priority: api.PriorityLow,
		},
	}, notify.FilterAll)

	if marker := v.GetCell(1, 0).Text; marker != "!" {
		t.Errorf("high priority marker = %q, want %q", marker, "!")
	}
	if color := v.GetCell(1, 1).Color; color != theme.PriorityHigh {
		t.Errorf("high priority title color = %v, want %v", color, theme.PriorityHigh)
	}
	if marker := v.GetCell(2, 0).Text; marker == "!" {
		t.Error("low priority row rendered the high priority marker")
	}
	if color := v.GetCell(2, 1).Color; color == theme.PriorityHigh {
		t.Error("low priority title rendered in the high priority color")
	}
}
