package game

import "errors"

// Operation errors. A transaction surfacing one of these committed nothing.
var (
	ErrGameNotFound       = errors.New("game not found")
	ErrNotJoinable        = errors.New("game is not joinable")
	ErrAlreadyJoined      = errors.New("identity already joined a team")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamFull           = errors.New("team is at capacity")
	ErrNoCreditsRemaining = errors.New("no coloring credits remaining")
	ErrSquareNotFound     = errors.New("grid square not found")
	ErrGenerationFailed   = errors.New("question generation failed")
	ErrStatusConflict     = errors.New("operation not valid in current game status")
	ErrTransactionAborted = errors.New("transaction aborted after retries")

	// ErrNotAllowed is raised when an identity that is neither the game's
	// admin nor an eligible participant attempts a restricted operation.
	ErrNotAllowed = errors.New("identity not allowed to perform this operation")
)
