package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/quizterra/quizterra/internal/docstore"
)

const liveSessionTimeout = 2 * time.Hour

// handleLive streams full game snapshots over a websocket. Clients never
// receive diffs; each message is the complete document.
func handleLive(store *docstore.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pin := chi.URLParam(r, "pin")

		if !streamPrecheck(w, r, store, pin) {
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), liveSessionTimeout)
		defer cancel()

		snaps, unsubscribe := store.Subscribe(ctx, pin)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "session timeout")
				return
			case g, open := <-snaps:
				if !open {
					conn.Close(websocket.StatusNormalClosure, "stream closed")
					return
				}
				data, err := json.Marshal(g)
				if err != nil {
					logger.Error("snapshot marshal failed", "error", err)
					return
				}
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
