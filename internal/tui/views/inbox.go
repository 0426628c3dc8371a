package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/badge"
	"github.com/pcarneir0/rigdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// Inbox is the conversation list view. Rows keep server order; the filter
// only hides rows, it never re-sorts.
type Inbox struct {
	*tview.Flex
	theme  *ui.Theme
	input  *tview.InputField
	table  *tview.Table
	convs  []api.Conversation
	filter string

	onSelect func(threadID string)
	onFilter func(value string)
}

// NewInbox creates the inbox view.
func NewInbox(theme *ui.Theme) *Inbox {
	input := tview.NewInputField().
		SetLabel(" / ").
		SetFieldWidth(0)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitle(" Inbox ")
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, false).
		AddItem(table, 0, 1, true)

	in := &Inbox{
		Flex:  flex,
		theme: theme,
		input: input,
		table: table,
	}

	input.SetChangedFunc(func(text string) {
		if in.onFilter != nil {
			in.onFilter(text)
		}
	})
	table.SetSelectedFunc(func(row, col int) {
		if id := in.selectedThread(); id != "" && in.onSelect != nil {
			in.onSelect(id)
		}
	})

	return in
}

// Name implements Component.
func (in *Inbox) Name() string { return "inbox" }

// Hints implements Component.
func (in *Inbox) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "c", Description: "Compose"},
		{Key: "n", Description: "Notifications"},
		{Key: "/", Description: "Filter"},
		{Key: "q", Description: "Quit"},
	}
}

// SetOnSelect sets the callback when a conversation is opened.
func (in *Inbox) SetOnSelect(fn func(threadID string)) {
	in.onSelect = fn
}

// SetOnFilter sets the raw keystroke callback; the app debounces it.
func (in *Inbox) SetOnFilter(fn func(value string)) {
	in.onFilter = fn
}

// Input returns the filter input field.
func (in *Inbox) Input() *tview.InputField {
	return in.input
}

// Table returns the conversation table.
func (in *Inbox) Table() *tview.Table {
	return in.table
}

// Update refreshes the conversation list with new data.
func (in *Inbox) Update(convs []api.Conversation) {
	in.convs = convs
	in.render()
}

// SetFilter applies the (debounced) filter text and re-renders.
func (in *Inbox) SetFilter(filter string) {
	in.filter = filter
	in.render()
}

func (in *Inbox) render() {
	in.table.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" SUBJECT", 1},
		{" FROM", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" UNREAD", 0},
	}
	for col, h := range headers {
		in.table.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(in.theme.TableHeaderFg).
			SetBackgroundColor(in.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	row := 1
	for _, conv := range in.convs {
		if in.filter != "" && !matchesFilter(&conv, in.filter) {
			continue
		}

		subject := conv.Subject
		fg := in.theme.FgColor
		if conv.UnreadCount > 0 {
			fg = in.theme.UnreadColor
		}

		in.table.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(subject))).
			SetMaxWidth(30).SetExpansion(1).SetTextColor(fg))
		in.table.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(participantNames(&conv))).
			SetMaxWidth(24).SetExpansion(1).SetTextColor(fg))
		in.table.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(truncate(conv.LastMessage, 80)))).
			SetMaxWidth(50).SetExpansion(2).SetTextColor(fg))
		in.table.SetCell(row, 3, tview.NewTableCell(" "+formatTimestamp(conv.LastMessageAt)).
			SetMaxWidth(12).SetTextColor(fg))

		unread := badge.Format(conv.UnreadCount)
		if unread != "" {
			unread = fmt.Sprintf("[%s::b]%s[-:-:-]", "orange", unread)
		}
		in.table.SetCell(row, 4, tview.NewTableCell(" "+unread).SetMaxWidth(6))
		row++
	}
}

// selectedThread returns the threadID of the highlighted visible row.
func (in *Inbox) selectedThread() string {
	row, _ := in.table.GetSelection()
	idx := row - 1 // header row
	visible := in.visibleConvs()
	if idx >= 0 && idx < len(visible) {
		return visible[idx].ThreadID
	}
	return ""
}

func (in *Inbox) visibleConvs() []api.Conversation {
	if in.filter == "" {
		return in.convs
	}
	var out []api.Conversation
	for _, c := range in.convs {
		if matchesFilter(&c, in.filter) {
			out = append(out, c)
		}
	}
	return out
}

func matchesFilter(c *api.Conversation, filter string) bool {
	if containsFold(c.Subject, filter) || containsFold(c.LastMessage, filter) {
		return true
	}
	for _, p := range c.Participants {
		if containsFold(p.Name, filter) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func participantNames(c *api.Conversation) string {
	var names []string
	for _, p := range c.Participants {
		names = append(names, p.Name)
	}
	return truncate(strings.Join(names, ", "), 60)
}
