package views

import (
	"fmt"

	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// Conversation displays the ordered message list of one thread. Messages
// arrive ascending by createdAt from the server and are rendered as-is.
type Conversation struct {
	*tview.TextView
	theme    *ui.Theme
	viewerID string
	subject  string
}

// NewConversation creates the conversation view.
func NewConversation(theme *ui.Theme, viewerID string) *Conversation {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTitle(" Conversation ")
	tv.SetTitleColor(theme.TitleColor)

	return &Conversation{TextView: tv, theme: theme, viewerID: viewerID}
}

// Name implements Component.
func (cv *Conversation) Name() string { return "conversation" }

// Hints implements Component.
func (cv *Conversation) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "r", Description: "Reply"},
		{Key: "d", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetSubject updates the title with the thread subject.
func (cv *Conversation) SetSubject(subject string) {
	cv.subject = subject
	cv.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(subject))))
}

// Update refreshes the view with the thread's messages, oldest first.
func (cv *Conversation) Update(msgs []api.Message) {
	cv.Clear()

	for _, m := range msgs {
		sender := m.Sender.Name
		if m.Sender.ID == cv.viewerID {
			sender = "You"
		}
		ts := formatTimestamp(m.CreatedAt)
		line := fmt.Sprintf("[::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			tview.Escape(sender), ts, tview.Escape(sanitizeForTerminal(m.Body)))
		_, _ = fmt.Fprint(cv, line)
	}

	cv.ScrollToEnd()
}
