package views

import (
	"fmt"

	"github.com/pcarneir0/rigdesk/internal/badge"
	"github.com/pcarneir0/rigdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar is the bottom line: server, current surface and unread badges.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	server  string
	surface string

	messages      string
	notifications string
}

// NewStatusBar creates the status bar.
func NewStatusBar(theme *ui.Theme, server string) *StatusBar {
	s := &StatusBar{
		TextView: tview.NewTextView(),
		theme:    theme,
		server:   server,
		surface:  "inbox",
	}
	s.SetDynamicColors(true)
	s.SetBackgroundColor(theme.BgColor)
	s.render()
	return s
}

// SetSurface records the surface being shown.
func (s *StatusBar) SetSurface(name string) {
	s.surface = name
	s.render()
}

// SetBadges updates the unread badges from the shared store.
func (s *StatusBar) SetBadges(st *badge.Store) {
	s.messages = badge.Format(st.Peek(badge.Messages))
	s.notifications = badge.Format(st.Peek(badge.Notifications))
	s.render()
}

func (s *StatusBar) render() {
	unread := ""
	if s.messages != "" {
		unread += fmt.Sprintf(" [%s]msg %s[-]", ui.ColorName(s.theme.BadgeColor), s.messages)
	}
	if s.notifications != "" {
		unread += fmt.Sprintf(" [%s]ntf %s[-]", ui.ColorName(s.theme.BadgeColor), s.notifications)
	}
	s.SetText(fmt.Sprintf(" [%s]%s[-] · %s ·%s",
		ui.ColorName(s.theme.FgColor), s.server, s.surface, unread))
}
