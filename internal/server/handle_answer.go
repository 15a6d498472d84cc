package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizterra/quizterra/internal/game"
	"github.com/quizterra/quizterra/internal/service"
)

// AnswerRequest is the request body for POST /api/games/{pin}/answers.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// AnswerResponse pairs the grading outcome with the snapshot it produced.
type AnswerResponse struct {
	Correct       bool      `json:"correct"`
	QuestionIndex int       `json:"questionIndex"`
	CorrectAnswer string    `json:"correctAnswer"`
	GameComplete  bool      `json:"gameComplete"`
	Game          game.Game `json:"game"`
}

func handleSubmitAnswer(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, g, err := svc.SubmitAnswer(r.Context(), chi.URLParam(r, "pin"), identityFrom(r), req.Answer)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AnswerResponse{
			Correct:       result.Correct,
			QuestionIndex: result.QuestionIndex,
			CorrectAnswer: result.CorrectAnswer,
			GameComplete:  result.GameComplete,
			Game:          g,
		})
	}
}
