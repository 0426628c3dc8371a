package views

import (
	"fmt"

	"github.com/pcarneir0/rigdesk/internal/badge"
	"github.com/pcarneir0/rigdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// Header is the top bar: app name, profile, viewer, and unread badges.
// All three badge surfaces read the same store, so the counts never
// disagree between the header, nav menu and status bar.
type Header struct {
	*tview.TextView
	theme   *ui.Theme
	profile string
	viewer  string

	messages      string
	notifications string
}

// NewHeader creates the header bar.
func NewHeader(theme *ui.Theme, profile, viewer string) *Header {
	h := &Header{
		TextView: tview.NewTextView(),
		theme:    theme,
		profile:  profile,
		viewer:   viewer,
	}
	h.SetDynamicColors(true)
	h.SetBackgroundColor(theme.BgColor)
	h.render()
	return h
}

// SetBadges updates the rendered unread badges from the shared store.
func (h *Header) SetBadges(s *badge.Store) {
	h.messages = badge.Format(s.Peek(badge.Messages))
	h.notifications = badge.Format(s.Peek(badge.Notifications))
	h.render()
}

func (h *Header) render() {
	text := fmt.Sprintf(" [%s::b]rigdesk[-:-:-]  [%s]%s[-] · %s",
		ui.ColorName(h.theme.TitleColor),
		ui.ColorName(h.theme.MenuKeyColor), h.profile, h.viewer)
	if h.messages != "" {
		text += fmt.Sprintf("  [%s]✉ %s[-]", ui.ColorName(h.theme.BadgeColor), h.messages)
	}
	if h.notifications != "" {
		text += fmt.Sprintf("  [%s]🔔 %s[-]", ui.ColorName(h.theme.BadgeColor), h.notifications)
	}
	h.SetText(text)
}
