package views

import (
	"fmt"

	"github.com/pcarneir0/rigdesk/internal/badge"
	"github.com/pcarneir0/rigdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// NavMenu is the left rail listing the app's surfaces with unread badges.
type NavMenu struct {
	*tview.TextView
	theme  *ui.Theme
	active string

	messages      string
	notifications string
}

// NewNavMenu creates the navigation rail.
func NewNavMenu(theme *ui.Theme) *NavMenu {
	n := &NavMenu{
		TextView: tview.NewTextView(),
		theme:    theme,
		active:   "inbox",
	}
	n.SetDynamicColors(true)
	n.SetBorder(true)
	n.SetBorderColor(theme.BorderColor)
	n.SetBackgroundColor(theme.BgColor)
	n.render()
	return n
}

// SetActive highlights the named surface.
func (n *NavMenu) SetActive(name string) {
	n.active = name
	n.render()
}

// SetBadges updates the unread badges from the shared store.
func (n *NavMenu) SetBadges(s *badge.Store) {
	n.messages = badge.Format(s.Peek(badge.Messages))
	n.notifications = badge.Format(s.Peek(badge.Notifications))
	n.render()
}

func (n *NavMenu) render() {
	entries := []struct {
		name  string
		label string
		badge string
	}{
		{"inbox", "Messages", n.messages},
		{"notifications", "Notifications", n.notifications},
	}

	text := "\n"
	for _, e := range entries {
		marker := "  "
		color := ui.ColorName(n.theme.FgColor)
		if e.name == n.active || (e.name == "inbox" && (n.active == "conversation" || n.active == "compose")) {
			marker = "> "
			color = ui.ColorName(n.theme.MenuKeyColor)
		}
		line := fmt.Sprintf(" %s[%s]%s[-]", marker, color, e.label)
		if e.badge != "" {
			line += fmt.Sprintf(" [%s](%s)[-]", ui.ColorName(n.theme.BadgeColor), e.badge)
		}
		text += line + "\n"
	}
	n.SetText(text)
}
