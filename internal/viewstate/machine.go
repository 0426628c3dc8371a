package viewstate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/bus"
	"go.uber.org/zap"
)

// MessagingAPI is the slice of the REST client the machine needs. Tests
// substitute a fake.
type MessagingAPI interface {
	ListConversations(ctx context.Context, page, limit int) (*api.ConversationPage, error)
	ListMessages(ctx context.Context, threadID string) ([]api.Message, error)
	Send(ctx context.Context, req api.SendRequest) (*api.Conversation, error)
	MarkThreadRead(ctx context.Context, threadID string) error
	DeleteConversation(ctx context.Context, threadID string) error
}

const inboxPageSize = 20

// Machine owns the messages-page view state and every transition between
// Inbox, Conversation and Compose. All methods are safe for concurrent use;
// network completions re-check the fetch generation so a stale thread
// response never overwrites the active one.
type Machine struct {
	msg      MessagingAPI
	bus      *bus.Bus
	logger   *zap.Logger
	viewerID string
	role     string

	mu            sync.RWMutex
	state         State
	conversations []api.Conversation
	pagination    api.Pagination
	messages      []api.Message
	loadingInbox  bool
	loadingThread bool
	fetchGen      uint64
}

// NewMachine creates a machine starting in the Inbox state.
func NewMachine(msg MessagingAPI, b *bus.Bus, logger *zap.Logger, viewerID, role string) *Machine {
	return &Machine{
		msg:      msg,
		bus:      b,
		logger:   logger,
		viewerID: viewerID,
		role:     role,
		state:    State{Kind: KindInbox},
	}
}

// Current returns a snapshot of the active state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	s.Compose.RecipientIDs = append([]string(nil), m.state.Compose.RecipientIDs...)
	return s
}

// Conversations returns a snapshot of the inbox list.
func (m *Machine) Conversations() []api.Conversation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]api.Conversation(nil), m.conversations...)
}

// Messages returns a snapshot of the active thread's messages.
func (m *Machine) Messages() []api.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]api.Message(nil), m.messages...)
}

// Loading reports whether an inbox or thread fetch is in flight.
func (m *Machine) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadingInbox || m.loadingThread
}

// RefreshInbox fetches one page of the conversation list. The list is
// rendered in server order.
func (m *Machine) RefreshInbox(ctx context.Context, page int) error {
	m.mu.Lock()
	m.loadingInbox = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loadingInbox = false
		m.mu.Unlock()
	}()

	resp, err := m.msg.ListConversations(ctx, page, inboxPageSize)
	if err != nil {
		return fmt.Errorf("refresh inbox: %w", err)
	}

	m.mu.Lock()
	m.conversations = resp.Conversations
	m.pagination = resp.Pagination
	m.mu.Unlock()
	return nil
}

// Pagination returns the last inbox page window.
func (m *Machine) Pagination() api.Pagination {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pagination
}

// SelectConversation enters Conversation{threadID}. Re-selecting the
// already-active thread is a no-op so repeated clicks cost nothing. Entry
// runs strictly in order: clear stale messages, fetch the thread, mark it
// read, refetch the inbox. Mark-read only fires after the messages actually
// arrived.
func (m *Machine) SelectConversation(ctx context.Context, threadID string) error {
	m.mu.Lock()
	if m.state.Kind == KindConversation && m.state.ThreadID == threadID {
		m.mu.Unlock()
		return nil
	}
	m.state = State{Kind: KindConversation, ThreadID: threadID}
	m.messages = nil
	m.fetchGen++
	gen := m.fetchGen
	m.loadingThread = true
	m.mu.Unlock()

	m.publish(bus.KindViewChanged, m.stateKind())
	defer func() {
		m.mu.Lock()
		if gen == m.fetchGen {
			m.loadingThread = false
		}
		m.mu.Unlock()
	}()

	msgs, err := m.msg.ListMessages(ctx, threadID)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}

	m.mu.Lock()
	// A later selection supersedes this fetch; its response must not render.
	if gen != m.fetchGen || m.state.Kind != KindConversation || m.state.ThreadID != threadID {
		m.mu.Unlock()
		m.logger.Info("discarding stale thread fetch", zap.String("thread", threadID))
		return nil
	}
	m.messages = msgs
	m.mu.Unlock()

	if err := m.msg.MarkThreadRead(ctx, threadID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	m.publish(bus.KindConversationRead, bus.ThreadRef{ThreadID: threadID})

	// Sequential with the steps above; updates the inbox unread badges.
	if err := m.RefreshInbox(ctx, 1); err != nil {
		// Non-critical read; the list catches up on the next refresh.
		m.logger.Warn("inbox refetch after read failed", zap.Error(err))
	}
	return nil
}

// Back leaves Conversation for Inbox, clearing the selected thread.
func (m *Machine) Back() {
	m.mu.Lock()
	m.state = State{Kind: KindInbox}
	m.messages = nil
	m.fetchGen++
	m.mu.Unlock()
	m.publish(bus.KindViewChanged, m.stateKind())
}

// StartCompose enters Compose for a brand-new thread.
func (m *Machine) StartCompose() {
	m.mu.Lock()
	m.state = State{Kind: KindCompose, Compose: ComposeForm{}}
	m.mu.Unlock()
	m.publish(bus.KindViewChanged, m.stateKind())
}

// StartReply enters Compose pre-filled from the active conversation:
// recipients are the other participants (the viewer excluded), the subject
// gets the "Re: " prefix, the body starts empty.
func (m *Machine) StartReply() error {
	m.mu.Lock()
	if m.state.Kind != KindConversation {
		m.mu.Unlock()
		return fmt.Errorf("reply requires an open conversation")
	}
	threadID := m.state.ThreadID
	conv := m.findConversationLocked(threadID)
	if conv == nil {
		m.mu.Unlock()
		return fmt.Errorf("conversation %s not in inbox", threadID)
	}

	var recipients []string
	for _, p := range conv.OtherParticipants(m.viewerID) {
		recipients = append(recipients, p.ID)
	}
	subject := conv.Subject
	if !strings.HasPrefix(subject, "Re: ") {
		subject = "Re: " + subject
	}
	m.state = State{
		Kind: KindCompose,
		Compose: ComposeForm{
			ThreadID:     threadID,
			RecipientIDs: recipients,
			Subject:      subject,
		},
	}
	m.mu.Unlock()
	m.publish(bus.KindViewChanged, m.stateKind())
	return nil
}

// SetCompose replaces the editable form fields. The TUI syncs the form
// before submitting; ThreadID is fixed by how compose was entered.
func (m *Machine) SetCompose(recipientIDs []string, subject, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Kind != KindCompose {
		return
	}
	m.state.Compose.RecipientIDs = append([]string(nil), recipientIDs...)
	m.state.Compose.Subject = subject
	m.state.Compose.Body = body
}

// CancelCompose discards the compose view and returns to Inbox. The caller
// may persist the form as a draft first.
func (m *Machine) CancelCompose() {
	m.mu.Lock()
	m.state = State{Kind: KindInbox}
	m.mu.Unlock()
	m.publish(bus.KindViewChanged, m.stateKind())
}

// Send validates and submits the compose form. Validation failures and
// server rejections leave the user in Compose with the entered data intact.
// On success a new message lands in Inbox (refetched) and a reply returns
// to its Conversation (messages refetched, inbox untouched).
func (m *Machine) Send(ctx context.Context) error {
	m.mu.RLock()
	if m.state.Kind != KindCompose {
		m.mu.RUnlock()
		return fmt.Errorf("send requires the compose view")
	}
	form := m.state.Compose
	form.RecipientIDs = append([]string(nil), m.state.Compose.RecipientIDs...)
	m.mu.RUnlock()

	if err := form.Validate(); err != nil {
		return err
	}

	conv, err := m.msg.Send(ctx, api.SendRequest{
		Recipients: form.RecipientIDs,
		Subject:    trimmed(form.Subject),
		Body:       trimmed(form.Body),
		ThreadID:   form.ThreadID,
	})
	if err != nil {
		// State untouched: the user keeps the form.
		return err
	}

	threadID := form.ThreadID
	if threadID == "" && conv != nil {
		threadID = conv.ThreadID
	}
	m.publish(bus.KindMessageSent, bus.ThreadRef{ThreadID: threadID})

	if form.ThreadID == "" {
		// New-thread path lands back in the inbox.
		m.mu.Lock()
		m.state = State{Kind: KindInbox}
		m.mu.Unlock()
		m.publish(bus.KindViewChanged, m.stateKind())
		if err := m.RefreshInbox(ctx, 1); err != nil {
			m.logger.Warn("inbox refetch after send failed", zap.Error(err))
		}
		return nil
	}

	// Reply path re-enters the conversation and refetches its messages.
	m.mu.Lock()
	m.state = State{Kind: KindConversation, ThreadID: form.ThreadID}
	m.fetchGen++
	gen := m.fetchGen
	m.mu.Unlock()
	m.publish(bus.KindViewChanged, m.stateKind())

	msgs, err := m.msg.ListMessages(ctx, form.ThreadID)
	if err != nil {
		m.logger.Warn("thread refetch after reply failed", zap.Error(err))
		return nil
	}
	m.mu.Lock()
	if gen == m.fetchGen && m.state.Kind == KindConversation && m.state.ThreadID == form.ThreadID {
		m.messages = msgs
	}
	m.mu.Unlock()
	return nil
}

// CanDelete reports whether the viewer's role permits conversation deletion.
// The server enforces the same gate; mirroring it avoids a doomed call.
func (m *Machine) CanDelete() bool {
	return m.role == api.RoleAdmin
}

// DeleteConversation deletes the thread after the UI's confirmation. If the
// deleted thread is the active one, the view force-transitions to Inbox so
// a dead thread never stays on screen.
func (m *Machine) DeleteConversation(ctx context.Context, threadID string) error {
	if !m.CanDelete() {
		return fmt.Errorf("only admins can delete conversations")
	}
	if err := m.msg.DeleteConversation(ctx, threadID); err != nil {
		return err
	}

	m.mu.Lock()
	active := (m.state.Kind == KindConversation && m.state.ThreadID == threadID) ||
		(m.state.Kind == KindCompose && m.state.Compose.ThreadID == threadID)
	if active {
		m.state = State{Kind: KindInbox}
		m.messages = nil
		m.fetchGen++
	}
	m.mu.Unlock()

	m.publish(bus.KindConversationDeleted, bus.ThreadRef{ThreadID: threadID})
	if active {
		m.publish(bus.KindViewChanged, m.stateKind())
	}
	if err := m.RefreshInbox(ctx, 1); err != nil {
		m.logger.Warn("inbox refetch after delete failed", zap.Error(err))
	}
	return nil
}

// ActiveConversation returns the inbox entry for the open thread, or nil.
func (m *Machine) ActiveConversation() *api.Conversation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state.Kind != KindConversation {
		return nil
	}
	return m.findConversationLocked(m.state.ThreadID)
}

func (m *Machine) findConversationLocked(threadID string) *api.Conversation {
	for i := range m.conversations {
		if m.conversations[i].ThreadID == threadID {
			c := m.conversations[i]
			return &c
		}
	}
	return nil
}

func (m *Machine) stateKind() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Kind.String()
}

func (m *Machine) publish(kind string, payload any) {
	m.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
