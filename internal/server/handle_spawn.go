package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizterra/quizterra/internal/service"
)

// SpawnRequest is the request body for POST /api/games/{pin}/spawn.
type SpawnRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

func handleSpawnSession(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SpawnRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		g, err := svc.SpawnSession(r.Context(), chi.URLParam(r, "pin"), identityFrom(r), req.PlayerID, req.Name)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}
