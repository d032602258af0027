package feed

import "testing"

func TestHubDeliversToEveryListener(t *testing.T) {
	h := NewHub()
	defer h.Close()

	_, ch1 := h.Register()
	_, ch2 := h.Register()

	h.Publish(Event{Kind: KindVisible})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Kind != KindVisible {
				t.Fatalf("listener %d: wrong kind %s", i, ev.Kind)
			}
		default:
			t.Fatalf("listener %d: no event delivered", i)
		}
	}
}

func TestHubDropsWhenListenerBufferFull(t *testing.T) {
	h := NewHub()
	defer h.Close()

	_, ch := h.Register()
	for i := 0; i < listenerBuffer+10; i++ {
		h.Publish(Event{Kind: KindProgress})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != listenerBuffer {
		t.Fatalf("expected %d buffered events, got %d", listenerBuffer, received)
	}
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	h := NewHub()
	defer h.Close()

	id, ch := h.Register()
	h.Unregister(id)
	if _, open := <-ch; open {
		t.Fatal("channel should be closed after Unregister")
	}
	if n := h.ListenerCount(); n != 0 {
		t.Fatalf("expected no listeners, got %d", n)
	}
}

func TestHubRegisterAfterClose(t *testing.T) {
	h := NewHub()
	h.Close()
	_, ch := h.Register()
	if _, open := <-ch; open {
		t.Fatal("register after close should hand back a closed channel")
	}
	// Publishing after close must not panic
	h.Publish(Event{Kind: KindVisible})
}
