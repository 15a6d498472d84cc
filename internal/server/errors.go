package server

import (
	"errors"
	"net/http"

	"github.com/quizterra/quizterra/internal/game"
)

// writeGameError maps the operation error taxonomy to HTTP statuses in one
// place. The taxonomy message itself is user-facing.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, game.ErrTeamNotFound),
		errors.Is(err, game.ErrSquareNotFound):
		writeError(w, http.StatusNotFound, taxonomyMessage(err))
	case errors.Is(err, game.ErrNotJoinable),
		errors.Is(err, game.ErrAlreadyJoined),
		errors.Is(err, game.ErrTeamFull),
		errors.Is(err, game.ErrNoCreditsRemaining),
		errors.Is(err, game.ErrStatusConflict):
		writeError(w, http.StatusConflict, taxonomyMessage(err))
	case errors.Is(err, game.ErrNotAllowed):
		writeError(w, http.StatusForbidden, taxonomyMessage(err))
	case errors.Is(err, game.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, taxonomyMessage(err))
	case errors.Is(err, game.ErrTransactionAborted):
		writeError(w, http.StatusServiceUnavailable, taxonomyMessage(err))
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func taxonomyMessage(err error) string {
	for _, sentinel := range []error{
		game.ErrGameNotFound, game.ErrNotJoinable, game.ErrAlreadyJoined,
		game.ErrTeamNotFound, game.ErrTeamFull, game.ErrNoCreditsRemaining,
		game.ErrSquareNotFound, game.ErrGenerationFailed, game.ErrStatusConflict,
		game.ErrTransactionAborted, game.ErrNotAllowed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
