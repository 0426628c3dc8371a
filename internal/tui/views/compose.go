package views

import (
	"strings"

	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// Compose is the new-message / reply form. Recipients are typed as names
// and resolved against the server's allow-list; a user outside the list
// never resolves to an id, so the client cannot address arbitrary users.
type Compose struct {
	*tview.Form
	theme      *ui.Theme
	recipients *tview.InputField
	subject    *tview.InputField
	body       *tview.TextArea
	allowlist  []api.UserRef

	onSend   func()
	onCancel func()
}

// NewCompose creates the compose form.
func NewCompose(theme *ui.Theme) *Compose {
	c := &Compose{
		recipients: tview.NewInputField().SetLabel("To (comma-separated)").SetFieldWidth(0),
		subject:    tview.NewInputField().SetLabel("Subject").SetFieldWidth(0),
		body:       tview.NewTextArea().SetLabel("Message"),
		theme:      theme,
	}

	form := tview.NewForm().
		AddFormItem(c.recipients).
		AddFormItem(c.subject).
		AddFormItem(c.body)
	form.AddButton("Send", func() {
		if c.onSend != nil {
			c.onSend()
		}
	})
	form.AddButton("Cancel", func() {
		if c.onCancel != nil {
			c.onCancel()
		}
	})
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" Compose ")
	form.SetTitleColor(theme.TitleColor)

	c.Form = form
	return c
}

// Name implements Component.
func (c *Compose) Name() string { return "compose" }

// Hints implements Component.
func (c *Compose) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// SetOnSend sets the submit callback.
func (c *Compose) SetOnSend(fn func()) { c.onSend = fn }

// SetOnCancel sets the cancel callback.
func (c *Compose) SetOnCancel(fn func()) { c.onCancel = fn }

// SetAllowlist installs the server's valid recipients.
func (c *Compose) SetAllowlist(users []api.UserRef) {
	c.allowlist = users
}

// SetForm loads the form fields, mapping recipient ids back to names.
func (c *Compose) SetForm(recipientIDs []string, subject, body string) {
	var names []string
	for _, id := range recipientIDs {
		if u := c.lookupByID(id); u != nil {
			names = append(names, u.Name)
		}
	}
	c.recipients.SetText(strings.Join(names, ", "))
	c.subject.SetText(subject)
	c.body.SetText(body, false)
}

// RecipientIDs resolves the typed names against the allow-list. Unresolved
// tokens come back separately so the app can surface them.
func (c *Compose) RecipientIDs() (ids []string, unresolved []string) {
	for _, tok := range strings.Split(c.recipients.GetText(), ",") {
		name := strings.TrimSpace(tok)
		if name == "" {
			continue
		}
		if u := c.lookupByName(name); u != nil {
			ids = append(ids, u.ID)
		} else {
			unresolved = append(unresolved, name)
		}
	}
	return ids, unresolved
}

// Subject returns the typed subject.
func (c *Compose) Subject() string { return c.subject.GetText() }

// Body returns the typed body.
func (c *Compose) Body() string { return c.body.GetText() }

func (c *Compose) lookupByID(id string) *api.UserRef {
	for i := range c.allowlist {
		if c.allowlist[i].ID == id {
			return &c.allowlist[i]
		}
	}
	return nil
}

func (c *Compose) lookupByName(name string) *api.UserRef {
	for i := range c.allowlist {
		if strings.EqualFold(c.allowlist[i].Name, name) {
			return &c.allowlist[i]
		}
	}
	return nil
}
