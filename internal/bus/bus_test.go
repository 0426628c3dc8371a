package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("unread.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindUnreadMessages, Timestamp: time.Now(), Payload: UnreadChange{Count: 3}})

	select {
	case evt := <-ch:
		if evt.Kind != KindUnreadMessages {
			t.Errorf("got kind %q, want %q", evt.Kind, KindUnreadMessages)
		}
		change, ok := evt.Payload.(UnreadChange)
		if !ok {
			t.Fatalf("payload type = %T, want UnreadChange", evt.Payload)
		}
		if change.Count != 3 {
			t.Errorf("count = %d, want 3", change.Count)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPrefixFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("conversation.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindUnreadMessages})
	b.Publish(Event{Kind: KindConversationRead})

	select {
	case evt := <-ch:
		if evt.Kind != KindConversationRead {
			t.Errorf("got kind %q, want %q", evt.Kind, KindConversationRead)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// Ensure the unread event was not delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: no more events.
	}
}

func TestUnreadPrefixMatchesBothCounters(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("unread.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindUnreadMessages})
	b.Publish(Event{Kind: KindUnreadNotifications})

	for _, want := range []string{KindUnreadMessages, KindUnreadNotifications} {
		select {
		case evt := <-ch:
			if evt.Kind != want {
				t.Errorf("got kind %q, want %q", evt.Kind, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("unread.", 10)
	unsub()

	b.Publish(Event{Kind: KindUnreadMessages})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("view.", 1)
	defer unsub()

	// Fill buffer.
	b.Publish(Event{Kind: KindViewChanged, Payload: "first"})
	// This should be dropped (non-blocking).
	b.Publish(Event{Kind: KindViewChanged, Payload: "second"})

	evt := <-ch
	if evt.Payload != "first" {
		t.Errorf("got %v, want first", evt.Payload)
	}
}
