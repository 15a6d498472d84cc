package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizterra/quizterra/internal/docstore"
	"github.com/quizterra/quizterra/internal/game"
)

const pingInterval = 30 * time.Second

// streamPrecheck resolves the game before a stream is opened, translating
// the store sentinel into the operation taxonomy so an unknown PIN is a 404.
func streamPrecheck(w http.ResponseWriter, r *http.Request, store *docstore.Store, pin string) bool {
	_, err := store.Get(r.Context(), pin)
	if errors.Is(err, docstore.ErrNotFound) {
		err = game.ErrGameNotFound
	}
	if err != nil {
		writeGameError(w, err)
		return false
	}
	return true
}

func handleEvents(store *docstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pin := chi.URLParam(r, "pin")

		if !streamPrecheck(w, r, store, pin) {
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		snaps, unsubscribe := store.Subscribe(r.Context(), pin)
		defer unsubscribe()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case g, open := <-snaps:
				if !open {
					return
				}
				data, err := json.Marshal(g)
				if err != nil {
					return
				}
				fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
