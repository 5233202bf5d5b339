// Package ws streams a run's relayed output lines to the frontend over
// a websocket, fed from the event bus. The poll endpoint stays the
// source of truth; this is the push variant for a live log view.
package ws

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ytdesk/ytdesk/server/events"
	"github.com/ytdesk/ytdesk/server/internal/runner"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the process only listens on localhost
	CheckOrigin: func(r *http.Request) bool { return true },
}

type message struct {
	Type     string        `json:"type"`
	Line     *runner.Line  `json:"line,omitempty"`
	Status   runner.Status `json:"status,omitempty"`
	ExitCode *int          `json:"exit_code,omitempty"`
}

func Output(bus *events.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.Any("err", err))
			return
		}
		defer conn.Close()

		// non-blocking sends: a stalled client must never hold up the
		// event bus; the poll queue still has every line
		feed := make(chan message, 512)

		onLine := func(e events.LineEvent) {
			if e.Id != id {
				return
			}
			line := e.Line
			select {
			case feed <- message{Type: "line", Line: &line}:
			default:
			}
		}

		onCompleted := func(e events.CompletedEvent) {
			if e.Id != id {
				return
			}
			code := e.ExitCode
			select {
			case feed <- message{Type: "completed", Status: e.Status, ExitCode: &code}:
			default:
			}
		}

		if err := bus.SubscribeLines(onLine); err != nil {
			return
		}
		defer bus.UnsubscribeLines(onLine)

		if err := bus.SubscribeCompleted(onCompleted); err != nil {
			return
		}
		defer bus.UnsubscribeCompleted(onCompleted)

		clientGone := make(chan struct{})
		go func() {
			defer close(clientGone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-clientGone:
				return
			case m := <-feed:
				if err := conn.WriteJSON(m); err != nil {
					return
				}
				if m.Type == "completed" {
					return
				}
			}
		}
	}
}
