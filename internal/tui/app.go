package tui

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/badge"
	"github.com/pcarneir0/rigdesk/internal/bus"
	"github.com/pcarneir0/rigdesk/internal/config"
	"github.com/pcarneir0/rigdesk/internal/debounce"
	"github.com/pcarneir0/rigdesk/internal/notify"
	"github.com/pcarneir0/rigdesk/internal/store"
	"github.com/pcarneir0/rigdesk/internal/tui/keys"
	"github.com/pcarneir0/rigdesk/internal/tui/ui"
	"github.com/pcarneir0/rigdesk/internal/tui/views"
	"github.com/pcarneir0/rigdesk/internal/viewstate"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Deps collects everything the TUI needs. Wiring lives in internal/app.
type Deps struct {
	Config   *config.Config
	Profile  string
	Me       *api.UserRef
	Client   *api.Client
	Machine  *viewstate.Machine
	Notifier *notify.Controller
	Badges   *badge.Store
	Drafts   *store.DB
	Bus      *bus.Bus
	Logger   *zap.Logger
}

// App is the terminal application shell. It owns the tview event loop;
// everything that touches a widget after Run goes through QueueUpdateDraw.
type App struct {
	deps  Deps
	theme *ui.Theme

	app   *tview.Application
	pages *tview.Pages
	keys  *keys.Registry

	header        *views.Header
	navmenu       *views.NavMenu
	statusbar     *views.StatusBar
	inbox         *views.Inbox
	conversation  *views.Conversation
	compose       *views.Compose
	notifications *views.Notifications
	menu          *ui.Menu
	flash         *ui.FlashModel
	flashBar      *ui.FlashBar

	surface        string
	searchDebounce *debounce.Debouncer

	cancel context.CancelFunc
}

// NewApp builds the shell and its widgets. Nothing runs until Run.
func NewApp(deps Deps) *App {
	theme := ui.DefaultTheme()
	a := &App{
		deps:    deps,
		theme:   theme,
		app:     tview.NewApplication(),
		pages:   tview.NewPages(),
		keys:    keys.NewRegistry(),
		surface: "inbox",
		flash:   ui.NewFlashModel(),
	}

	a.header = views.NewHeader(theme, deps.Profile, deps.Me.Name)
	a.navmenu = views.NewNavMenu(theme)
	a.statusbar = views.NewStatusBar(theme, deps.Config.ServerURL)
	a.inbox = views.NewInbox(theme)
	a.conversation = views.NewConversation(theme, deps.Me.ID)
	a.compose = views.NewCompose(theme)
	a.notifications = views.NewNotifications(theme, deps.Config.Language)
	a.menu = ui.NewMenu(theme)
	a.flashBar = ui.NewFlashBar(theme)

	a.searchDebounce = debounce.New(
		time.Duration(deps.Config.SearchDebounceMs)*time.Millisecond,
		func(value string) {
			a.app.QueueUpdateDraw(func() {
				a.inbox.SetFilter(value)
			})
		})

	a.pages.AddPage("inbox", a.inbox, true, true)
	a.pages.AddPage("conversation", a.conversation, true, false)
	a.pages.AddPage("compose", a.compose, true, false)
	a.pages.AddPage("notifications", a.notifications, true, false)

	middle := tview.NewFlex().
		AddItem(a.navmenu, 22, 0, false).
		AddItem(a.pages, 0, 1, true)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 1, 0, false).
		AddItem(middle, 0, 1, true).
		AddItem(a.menu, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusbar, 1, 0, false)

	a.app.SetRoot(root, true)
	a.bindKeys()
	a.wireCallbacks()
	return a
}

// Run starts the event loop and blocks until Stop or quit.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.watchBus(ctx)
	go a.watchFlash(ctx)
	go a.bootstrap(ctx)

	a.app.SetInputCapture(a.inputCapture)
	return a.app.Run()
}

// Stop tears down the event loop and background goroutines.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.searchDebounce.Stop()
	a.app.Stop()
}

// bootstrap does the initial fetches off the UI goroutine.
func (a *App) bootstrap(ctx context.Context) {
	if err := a.deps.Machine.RefreshInbox(ctx, 1); err != nil {
		a.flash.Err(api.UserMessage(err, "could not load inbox"))
	}
	a.deps.Badges.Get(ctx, badge.Messages)
	a.deps.Badges.Get(ctx, badge.Notifications)
	a.app.QueueUpdateDraw(a.render)
}

func (a *App) wireCallbacks() {
	a.inbox.SetOnSelect(func(threadID string) {
		go func() {
			if err := a.deps.Machine.SelectConversation(context.Background(), threadID); err != nil {
				a.flash.Err(api.UserMessage(err, "could not open conversation"))
			}
			a.app.QueueUpdateDraw(a.render)
		}()
	})
	a.inbox.SetOnFilter(func(value string) {
		a.searchDebounce.Trigger(value)
	})

	a.compose.SetOnSend(func() { a.submitCompose() })
	a.compose.SetOnCancel(func() { a.cancelCompose() })

	a.notifications.SetOnSelect(func(id string) {
		go func() {
			if err := a.deps.Notifier.MarkRead(context.Background(), id); err != nil {
				a.flash.Err(api.UserMessage(err, "could not mark notification read"))
			}
			a.app.QueueUpdateDraw(a.renderNotifications)
		}()
	})
}

func (a *App) bindKeys() {
	a.keys.AddGlobal("quit", &keys.Action{Key: tcell.KeyRune, Rune: 'q', Description: "Quit", Handler: func() {
		a.Stop()
	}})

	a.keys.AddView("inbox", "open", &keys.Action{Key: tcell.KeyRune, Rune: 'n', Description: "Notifications", Handler: func() {
		a.openNotifications()
	}})
	a.keys.AddView("inbox", "compose", &keys.Action{Key: tcell.KeyRune, Rune: 'c', Description: "Compose", Handler: func() {
		a.openCompose()
	}})
	a.keys.AddView("inbox", "filter", &keys.Action{Key: tcell.KeyRune, Rune: '/', Description: "Filter", Handler: func() {
		a.app.SetFocus(a.inbox.Input())
	}})

	a.keys.AddView("conversation", "reply", &keys.Action{Key: tcell.KeyRune, Rune: 'r', Description: "Reply", Handler: func() {
		a.openReply()
	}})
	a.keys.AddView("conversation", "delete", &keys.Action{Key: tcell.KeyRune, Rune: 'd', Description: "Delete", Handler: func() {
		a.confirmDelete()
	}})
	a.keys.AddView("conversation", "back", &keys.Action{Key: tcell.KeyEscape, Description: "Back", Handler: func() {
		a.deps.Machine.Back()
		a.render()
	}})

	a.keys.AddView("notifications", "toggle", &keys.Action{Key: tcell.KeyRune, Rune: 'u', Description: "Toggle unread", Handler: func() {
		a.toggleNotificationFilter()
	}})
	a.keys.AddView("notifications", "markall", &keys.Action{Key: tcell.KeyRune, Rune: 'a', Description: "Mark all read", Handler: func() {
		go func() {
			if err := a.deps.Notifier.MarkAllRead(context.Background()); err != nil {
				a.flash.Err(api.UserMessage(err, "could not mark all read"))
			}
			a.app.QueueUpdateDraw(a.renderNotifications)
		}()
	}})
	a.keys.AddView("notifications", "delete", &keys.Action{Key: tcell.KeyRune, Rune: 'x', Description: "Delete", Handler: func() {
		id := a.notifications.SelectedID()
		if id == "" {
			return
		}
		go func() {
			if err := a.deps.Notifier.Delete(context.Background(), id); err != nil {
				a.flash.Err(api.UserMessage(err, "could not delete notification"))
			}
			a.app.QueueUpdateDraw(a.renderNotifications)
		}()
	}})
	a.keys.AddView("notifications", "back", &keys.Action{Key: tcell.KeyEscape, Description: "Back", Handler: func() {
		a.showSurface("inbox")
	}})

	a.keys.AddView("compose", "cancel", &keys.Action{Key: tcell.KeyEscape, Description: "Cancel", Handler: func() {
		a.cancelCompose()
	}})
}

// inputCapture routes key events through the registry. Text inputs keep
// their runes; only Escape is intercepted while one has focus.
func (a *App) inputCapture(ev *tcell.EventKey) *tcell.EventKey {
	switch a.app.GetFocus().(type) {
	case *tview.InputField, *tview.TextArea:
		if ev.Key() != tcell.KeyEscape {
			return ev
		}
		if a.surface == "inbox" {
			a.app.SetFocus(a.inbox.Table())
			return nil
		}
	}
	if a.keys.HandleEvent(a.surface, ev) {
		return nil
	}
	return ev
}

func (a *App) openNotifications() {
	go func() {
		if err := a.deps.Notifier.Load(context.Background(), a.deps.Notifier.Filter()); err != nil {
			a.flash.Err(api.UserMessage(err, "could not load notifications"))
		}
		a.app.QueueUpdateDraw(func() {
			a.renderNotifications()
			a.showSurface("notifications")
		})
	}()
}

func (a *App) toggleNotificationFilter() {
	next := notify.FilterAll
	if a.deps.Notifier.Filter() == notify.FilterAll {
		next = notify.FilterUnread
	}
	go func() {
		if err := a.deps.Notifier.Load(context.Background(), next); err != nil {
			a.flash.Err(api.UserMessage(err, "could not load notifications"))
		}
		a.app.QueueUpdateDraw(a.renderNotifications)
	}()
}

func (a *App) openCompose() {
	a.deps.Machine.StartCompose()
	a.loadComposeForm("")
}

func (a *App) openReply() {
	if err := a.deps.Machine.StartReply(); err != nil {
		a.flash.Warn(err.Error())
		return
	}
	a.loadComposeForm(a.deps.Machine.Current().Compose.ThreadID)
}

// loadComposeForm fetches the recipient allow-list, restores any saved
// draft for the thread, and shows the form.
func (a *App) loadComposeForm(threadID string) {
	go func() {
		users, err := a.deps.Client.Messaging.ListRecipients(context.Background())
		if err != nil {
			a.flash.Err(api.UserMessage(err, "could not load recipients"))
			return
		}
		form := a.deps.Machine.Current().Compose
		if draft, derr := a.deps.Drafts.GetDraft(threadID); derr == nil && draft != nil {
			if len(form.RecipientIDs) == 0 {
				form.RecipientIDs = draft.RecipientIDs
			}
			if form.Subject == "" {
				form.Subject = draft.Subject
			}
			form.Body = draft.Body
			a.deps.Machine.SetCompose(form.RecipientIDs, form.Subject, form.Body)
		}
		a.app.QueueUpdateDraw(func() {
			a.compose.SetAllowlist(users)
			a.compose.SetForm(form.RecipientIDs, form.Subject, form.Body)
			a.showSurface("compose")
			a.app.SetFocus(a.compose)
		})
	}()
}

func (a *App) submitCompose() {
	ids, unresolved := a.compose.RecipientIDs()
	if len(unresolved) > 0 {
		a.flash.Warn("unknown recipient: " + unresolved[0])
		return
	}
	subject := a.compose.Subject()
	body := a.compose.Body()
	a.deps.Machine.SetCompose(ids, subject, body)
	threadID := a.deps.Machine.Current().Compose.ThreadID

	go func() {
		err := a.deps.Machine.Send(context.Background())
		if err != nil {
			var verr *viewstate.ValidationError
			if errors.As(err, &verr) {
				a.flash.Warn(verr.Reason)
				return
			}
			// The form stays on screen; keep it on disk too so a rejected
			// send survives a restart.
			a.persistDraft(&store.Draft{
				ThreadID:     threadID,
				RecipientIDs: ids,
				Subject:      subject,
				Body:         body,
			})
			a.flash.Err(api.UserMessage(err, "could not send message"))
			return
		}
		if derr := a.deps.Drafts.DeleteDraft(threadID); derr != nil {
			a.deps.Logger.Warn("delete draft", zap.Error(derr))
		}
		a.flash.Info("message sent")
		a.app.QueueUpdateDraw(a.render)
	}()
}

// cancelCompose saves the in-progress form as a draft before leaving.
func (a *App) cancelCompose() {
	form := a.deps.Machine.Current().Compose
	ids, _ := a.compose.RecipientIDs()
	a.persistDraft(&store.Draft{
		ThreadID:     form.ThreadID,
		RecipientIDs: ids,
		Subject:      a.compose.Subject(),
		Body:         a.compose.Body(),
	})
	a.deps.Machine.CancelCompose()
	a.render()
}

// persistDraft writes a non-empty form to the draft store.
func (a *App) persistDraft(d *store.Draft) {
	if d.Subject == "" && d.Body == "" && len(d.RecipientIDs) == 0 {
		return
	}
	if err := a.deps.Drafts.SaveDraft(d); err != nil {
		a.deps.Logger.Warn("save draft", zap.Error(err))
		return
	}
	a.flash.Info("draft saved")
}

func (a *App) confirmDelete() {
	if !a.deps.Machine.CanDelete() {
		a.flash.Warn("only admins can delete conversations")
		return
	}
	active := a.deps.Machine.ActiveConversation()
	if active == nil {
		return
	}
	threadID := active.ThreadID

	modal := tview.NewModal().
		SetText("Delete this conversation for all participants?").
		AddButtons([]string{"Delete", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			a.pages.RemovePage("confirm")
			if label != "Delete" {
				return
			}
			go func() {
				if err := a.deps.Machine.DeleteConversation(context.Background(), threadID); err != nil {
					a.flash.Err(api.UserMessage(err, "could not delete conversation"))
				} else {
					a.flash.Info("conversation deleted")
				}
				a.app.QueueUpdateDraw(a.render)
			}()
		})
	a.pages.AddPage("confirm", modal, true, true)
	a.app.SetFocus(modal)
}

// render syncs the widgets with the machine's current state.
func (a *App) render() {
	state := a.deps.Machine.Current()
	a.inbox.Update(a.deps.Machine.Conversations())

	switch state.Kind {
	case viewstate.KindConversation:
		if c := a.deps.Machine.ActiveConversation(); c != nil {
			a.conversation.SetSubject(c.Subject)
		}
		a.conversation.Update(a.deps.Machine.Messages())
		a.showSurface("conversation")
	case viewstate.KindCompose:
		a.showSurface("compose")
	default:
		a.showSurface("inbox")
		a.app.SetFocus(a.inbox.Table())
	}
}

func (a *App) renderNotifications() {
	a.notifications.Update(a.deps.Notifier.Items(), a.deps.Notifier.Filter())
}

func (a *App) showSurface(name string) {
	a.surface = name
	a.pages.SwitchToPage(name)
	a.navmenu.SetActive(name)
	a.statusbar.SetSurface(name)
	a.menu.Update(a.hintsFor(name))
}

func (a *App) hintsFor(name string) []ui.MenuHint {
	var c ui.Component
	switch name {
	case "conversation":
		c = a.conversation
	case "compose":
		c = a.compose
	case "notifications":
		c = a.notifications
	default:
		c = a.inbox
	}
	return c.Hints()
}

// watchBus re-renders the badge surfaces whenever a counter changes.
func (a *App) watchBus(ctx context.Context) {
	events, unsub := a.deps.Bus.Subscribe("unread.", 16)
	defer unsub()
	for {
		select {
		case <-ctx.Done():
			return
		case <-events:
			a.app.QueueUpdateDraw(func() {
				a.header.SetBadges(a.deps.Badges)
				a.navmenu.SetBadges(a.deps.Badges)
				a.statusbar.SetBadges(a.deps.Badges)
			})
		}
	}
}

// watchFlash pushes flash updates into the bar and clears them on expiry.
func (a *App) watchFlash(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.flash.Watch():
			a.app.QueueUpdateDraw(func() {
				a.flashBar.Update(&msg)
			})
		case <-ticker.C:
			if a.flash.GetMessage() == nil {
				a.app.QueueUpdateDraw(func() {
					a.flashBar.Update(nil)
				})
			}
		}
	}
}
