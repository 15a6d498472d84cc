package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizterra/quizterra/internal/service"
)

// JoinRequest is the request body for POST /api/games/{pin}/join.
type JoinRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	TeamName string `json:"teamName"`
}

func handleJoinGame(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		g, err := svc.JoinTeam(r.Context(), chi.URLParam(r, "pin"), identityFrom(r), req.PlayerID, req.Name, req.TeamName)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}
