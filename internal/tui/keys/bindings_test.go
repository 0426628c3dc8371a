package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestHandleEventViewPrecedence(t *testing.T) {
	r := NewRegistry()
	var fired string
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { fired = "global" }})
	r.AddView("inbox", "quiet", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { fired = "view" }})

	ev := tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)
	if !r.HandleEvent("inbox", ev) {
		t.Fatal("HandleEvent() = false, want true")
	}
	if fired != "view" {
		t.Errorf("fired = %q, want view binding to shadow global", fired)
	}

	fired = ""
	if !r.HandleEvent("compose", ev) {
		t.Fatal("HandleEvent() = false for global fallback")
	}
	if fired != "global" {
		t.Errorf("fired = %q, want global", fired)
	}
}

func TestHandleEventUnbound(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() {}})

	ev := tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)
	if r.HandleEvent("inbox", ev) {
		t.Error("HandleEvent() = true for unbound key, want false")
	}
}

func TestActionMatches(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		ev     *tcell.EventKey
		want   bool
	}{
		{"rune match", Action{Key: tcell.KeyRune, Rune: 'r'}, tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), true},
		{"rune mismatch", Action{Key: tcell.KeyRune, Rune: 'r'}, tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), false},
		{"special key", Action{Key: tcell.KeyEscape}, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), true},
		{"special vs rune", Action{Key: tcell.KeyEscape}, tcell.NewEventKey(tcell.KeyRune, 'e', tcell.ModNone), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.Matches(tt.ev); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
