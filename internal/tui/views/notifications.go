package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/notify"
	"github.com/pcarneir0/rigdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// Notifications renders the notification list for the active filter.
type Notifications struct {
	*tview.Table
	theme *ui.Theme
	lang  string

	items  []api.Notification
	filter notify.Filter

	onSelect func(id string)
}

// NewNotifications creates the notifications table.
func NewNotifications(theme *ui.Theme, lang string) *Notifications {
	n := &Notifications{
		Table: tview.NewTable(),
		theme: theme,
		lang:  lang,
	}
	n.SetSelectable(true, false)
	n.SetFixed(1, 0)
	n.SetBorder(true)
	n.SetBorderColor(theme.BorderColor)
	n.SetBackgroundColor(theme.BgColor)
	n.SetTitleColor(theme.TitleColor)
	n.SetSelectedFunc(func(row, _ int) {
		if n.onSelect == nil || row < 1 || row > len(n.items) {
			return
		}
		n.onSelect(n.items[row-1].ID)
	})
	n.setTitle()
	return n
}

// Name implements Component.
func (n *Notifications) Name() string { return "notifications" }

// Hints implements Component.
func (n *Notifications) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Mark read"},
		{Key: "u", Description: "Toggle unread"},
		{Key: "a", Description: "Mark all read"},
		{Key: "x", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnSelect sets the callback fired with the selected notification id.
func (n *Notifications) SetOnSelect(fn func(id string)) { n.onSelect = fn }

// SelectedID returns the id of the highlighted notification, or "".
func (n *Notifications) SelectedID() string {
	row, _ := n.GetSelection()
	if row < 1 || row > len(n.items) {
		return ""
	}
	return n.items[row-1].ID
}

// Update replaces the rendered list.
func (n *Notifications) Update(items []api.Notification, filter notify.Filter) {
	n.items = items
	n.filter = filter
	n.setTitle()
	n.render()
}

func (n *Notifications) setTitle() {
	label := "All"
	if n.filter == notify.FilterUnread {
		label = "Unread"
	}
	n.SetTitle(fmt.Sprintf(" Notifications (%s) ", label))
}

func (n *Notifications) render() {
	n.Clear()
	for col, h := range []string{"", "TITLE", "BODY", "TIME"} {
		n.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(n.theme.TitleColor).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold))
	}

	for i, item := range n.items {
		row := i + 1
		marker := " "
		fg := n.theme.FgColor
		if !item.IsRead {
			marker = "●"
			fg = tcell.ColorWhite
		}
		titleColor := fg
		if item.Priority == api.PriorityHigh {
			marker = "!"
			titleColor = n.theme.PriorityHigh
		}
		// Titles and messages are server data; escape them so bracketed
		// substrings never parse as tview color tags.
		n.SetCell(row, 0, tview.NewTableCell(marker).SetTextColor(n.theme.BadgeColor))
		n.SetCell(row, 1, tview.NewTableCell(tview.Escape(sanitizeForTerminal(item.Title.Resolve(n.lang)))).
			SetTextColor(titleColor).SetExpansion(1))
		n.SetCell(row, 2, tview.NewTableCell(tview.Escape(truncate(sanitizeForTerminal(item.Message.Resolve(n.lang)), 60))).
			SetTextColor(fg).SetExpansion(2))
		n.SetCell(row, 3, tview.NewTableCell(formatTimestamp(item.CreatedAt)).SetTextColor(fg))
	}

	if len(n.items) > 0 {
		n.Select(1, 0)
	}
}
