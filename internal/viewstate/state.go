package viewstate

// Kind identifies which sub-screen of the messages page is active.
type Kind int

const (
	KindInbox Kind = iota
	KindConversation
	KindCompose
)

func (k Kind) String() string {
	switch k {
	case KindConversation:
		return "conversation"
	case KindCompose:
		return "compose"
	default:
		return "inbox"
	}
}

// ComposeForm holds the in-progress message. ThreadID is empty for a new
// thread and set for a reply. The form survives a failed send untouched.
type ComposeForm struct {
	ThreadID     string
	RecipientIDs []string
	Subject      string
	Body         string
}

// State is the tagged union governing the active view. ThreadID is only
// meaningful for KindConversation, Compose only for KindCompose. It is
// ephemeral, owned by one Machine, and resets to Inbox on page re-entry.
type State struct {
	Kind     Kind
	ThreadID string
	Compose  ComposeForm
}

// ValidationError reports the first failing compose field. Checks run in
// the order recipients, subject, body and short-circuit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validate checks the form without touching the network.
func (f *ComposeForm) Validate() error {
	if len(f.RecipientIDs) == 0 {
		return &ValidationError{Field: "recipients", Reason: "select at least one recipient"}
	}
	if trimmed(f.Subject) == "" {
		return &ValidationError{Field: "subject", Reason: "subject is required"}
	}
	if trimmed(f.Body) == "" {
		return &ValidationError{Field: "body", Reason: "message body is required"}
	}
	return nil
}
