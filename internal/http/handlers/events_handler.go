package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"fixbay/internal/realtime"
	"fixbay/internal/services"
)

type EventsHandler struct {
	Hub *realtime.Hub
}

// Stream pushes the caller's provider-room events over SSE. Best-effort: a
// disconnected client simply stops receiving; nothing upstream notices.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	room := services.ProviderRoom(actor.ID)
	ch := h.Hub.Subscribe(room)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer h.Hub.Unsubscribe(room, ch)
		keepalive := time.NewTicker(25 * time.Second)
		defer keepalive.Stop()
		for {
			select {
			case ev, open := <-ch:
				if !open {
					return
				}
				b, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, b)
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepalive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}
