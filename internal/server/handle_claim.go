package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizterra/quizterra/internal/game"
	"github.com/quizterra/quizterra/internal/service"
)

// ClaimRequest is the request body for POST /api/games/{pin}/claims.
type ClaimRequest struct {
	SquareID int `json:"squareId"`
}

// ClaimResponse reports the outcome of a territory claim or skip.
type ClaimResponse struct {
	Skipped        bool      `json:"skipped"`
	AlreadyColored bool      `json:"alreadyColored"`
	SquareID       int       `json:"squareId"`
	ColoredBy      string    `json:"coloredBy,omitempty"`
	Game           game.Game `json:"game"`
}

func handleClaimSquare(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClaimRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, g, err := svc.ClaimTerritory(r.Context(), chi.URLParam(r, "pin"), identityFrom(r), req.SquareID)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, claimResponse(result, g))
	}
}

func handleSkipClaim(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, g, err := svc.SkipClaim(r.Context(), chi.URLParam(r, "pin"), identityFrom(r))
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, claimResponse(result, g))
	}
}

func claimResponse(result game.ClaimResult, g game.Game) ClaimResponse {
	return ClaimResponse{
		Skipped:        result.Skipped,
		AlreadyColored: result.AlreadyColored,
		SquareID:       result.SquareID,
		ColoredBy:      result.ColoredBy,
		Game:           g,
	}
}
