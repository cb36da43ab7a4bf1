package realtime

import "testing"

func TestHub_EmitReachesRoomSubscribers(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe("provider:p1")
	other := h.Subscribe("provider:p2")

	h.Emit("provider:p1", "price.accepted", map[string]any{"bookingId": "bk1"})

	select {
	case ev := <-ch:
		if ev.Name != "price.accepted" || ev.Payload["bookingId"] != "bk1" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("subscriber missed its event")
	}
	select {
	case ev := <-other:
		t.Fatalf("event leaked across rooms: %+v", ev)
	default:
	}
}

func TestHub_EmitNeverBlocks(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe("provider:p1")

	// overflow the buffer; emits past capacity are dropped, not blocked
	for i := 0; i < 100; i++ {
		h.Emit("provider:p1", "parts.linked", nil)
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected full buffer (%d), got %d", cap(ch), len(ch))
	}

	// emitting to an empty room is a no-op
	h.Emit("provider:nobody", "parts.linked", nil)

	h.Unsubscribe("provider:p1", ch)
	if _, open := <-ch; open {
		// buffered events drain first; channel closes after
		for range ch {
		}
	}
}
