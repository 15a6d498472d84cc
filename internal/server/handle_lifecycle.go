package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizterra/quizterra/internal/service"
)

// StartRequest is the request body for POST /api/games/{pin}/start. A zero
// countdown starts the game immediately.
type StartRequest struct {
	CountdownSeconds int `json:"countdownSeconds"`
}

func handleStartGame(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CountdownSeconds < 0 {
			writeError(w, http.StatusBadRequest, "countdownSeconds must not be negative")
			return
		}

		countdown := time.Duration(req.CountdownSeconds) * time.Second
		g, err := svc.StartGame(r.Context(), chi.URLParam(r, "pin"), identityFrom(r), countdown)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func handleEndGame(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := svc.EndGame(r.Context(), chi.URLParam(r, "pin"), identityFrom(r))
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func handleResetGame(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := svc.ResetGame(r.Context(), chi.URLParam(r, "pin"), identityFrom(r))
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}
