package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/quizterra/quizterra/internal/game"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps check names to their status.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Quizterra API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Quizterra territory trivia game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/games
	createGame, _ := r.NewOperationContext(http.MethodPost, "/api/games")
	createGame.SetSummary("Create game")
	createGame.SetDescription("Creates a new game session with a fresh PIN. Requires curator_session cookie.")
	createGame.AddReqStructure(CreateGameRequest{})
	createGame.AddRespStructure(game.Game{}, openapi.WithHTTPStatus(http.StatusCreated))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createGame)

	// GET /api/games/{pin}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/api/games/{pin}")
	getGame.SetSummary("Get game snapshot")
	getGame.SetDescription("Returns the full game document for the PIN.")
	getGame.AddRespStructure(game.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getGame)

	// PATCH /api/games/{pin}
	patchGame, _ := r.NewOperationContext(http.MethodPatch, "/api/games/{pin}")
	patchGame.SetSummary("Update game metadata")
	patchGame.SetDescription("Updates title and description without touching live play state. Requires curator_session cookie.")
	patchGame.AddReqStructure(MetadataRequest{})
	patchGame.AddRespStructure(game.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	patchGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	patchGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(patchGame)

	// DELETE /api/games/{pin}
	deleteGame, _ := r.NewOperationContext(http.MethodDelete, "/api/games/{pin}")
	deleteGame.SetSummary("Delete game")
	deleteGame.SetDescription("Removes the game document. Requires curator_session cookie.")
	deleteGame.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteGame)

	// POST /api/games/{pin}/join
	join, _ := r.NewOperationContext(http.MethodPost, "/api/games/{pin}/join")
	join.SetSummary("Join a team")
	join.SetDescription("Adds the caller to a team while the game is in the lobby. Requires Bearer identity.")
	join.AddReqStructure(JoinRequest{})
	join.AddRespStructure(game.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	join.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	join.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(join)

	// POST /api/games/{pin}/start
	start, _ := r.NewOperationContext(http.MethodPost, "/api/games/{pin}/start")
	start.SetSummary("Start the game")
	start.SetDescription("Moves the game out of the lobby, generating questions if none are loaded. Requires Bearer identity.")
	start.AddReqStructure(StartRequest{})
	start.AddRespStructure(game.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	start.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	start.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	start.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(start)

	// POST /api/games/{pin}/answers
	answer, _ := r.NewOperationContext(http.MethodPost, "/api/games/{pin}/answers")
	answer.SetSummary("Submit answer")
	answer.SetDescription("Grades the caller's answer to their current question. Requires Bearer identity.")
	answer.AddReqStructure(AnswerRequest{})
	answer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	answer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	answer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(answer)

	// POST /api/games/{pin}/claims
	claim, _ := r.NewOperationContext(http.MethodPost, "/api/games/{pin}/claims")
	claim.SetSummary("Claim a square")
	claim.SetDescription("Spends one coloring credit to color a grid square. Requires Bearer identity.")
	claim.AddReqStructure(ClaimRequest{})
	claim.AddRespStructure(ClaimResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	claim.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(claim)

	// POST /api/games/{pin}/claims/skip
	skip, _ := r.NewOperationContext(http.MethodPost, "/api/games/{pin}/claims/skip")
	skip.SetSummary("Skip a claim")
	skip.SetDescription("Declines to color a square; the earned credit stays unspent. Requires Bearer identity.")
	skip.AddRespStructure(ClaimResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	skip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(skip)

	// POST /api/games/{pin}/end
	end, _ := r.NewOperationContext(http.MethodPost, "/api/games/{pin}/end")
	end.SetSummary("End the game")
	end.SetDescription("Finishes a playing game. Idempotent once finished. Requires Bearer identity.")
	end.AddRespStructure(game.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	end.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	end.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(end)

	// POST /api/games/{pin}/reset
	reset, _ := r.NewOperationContext(http.MethodPost, "/api/games/{pin}/reset")
	reset.SetSummary("Reset the game")
	reset.SetDescription("Returns a finished game to the lobby with empty rosters and a fresh grid. Requires Bearer identity.")
	reset.AddRespStructure(game.Game{}, openapi.WithHTTPStatus(http.StatusOK))
	reset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(reset)

	// POST /api/games/{pin}/spawn
	spawn, _ := r.NewOperationContext(http.MethodPost, "/api/games/{pin}/spawn")
	spawn.SetSummary("Spawn a solo session")
	spawn.SetDescription("Creates a single-player child session from an individual-mode template. Requires Bearer identity.")
	spawn.AddReqStructure(SpawnRequest{})
	spawn.AddRespStructure(game.Game{}, openapi.WithHTTPStatus(http.StatusCreated))
	spawn.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	spawn.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(spawn)

	// GET /api/games/{pin}/events
	events, _ := r.NewOperationContext(http.MethodGet, "/api/games/{pin}/events")
	events.SetSummary("SSE snapshot stream")
	events.SetDescription("Server-Sent Events stream of full game snapshots.")
	events.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	events.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(events)

	// GET /api/games/{pin}/live
	live, _ := r.NewOperationContext(http.MethodGet, "/api/games/{pin}/live")
	live.SetSummary("WebSocket snapshot stream")
	live.SetDescription("Upgrades to a WebSocket that pushes full game snapshots.")
	live.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	live.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(live)

	// POST /api/curator/login
	login, _ := r.NewOperationContext(http.MethodPost, "/api/curator/login")
	login.SetSummary("Curator login")
	login.SetDescription("Authenticate with email and password. Sets curator_session cookie.")
	login.AddReqStructure(CuratorLoginRequest{})
	login.AddRespStructure(CuratorMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	login.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(login)

	// POST /api/curator/logout
	logout, _ := r.NewOperationContext(http.MethodPost, "/api/curator/logout")
	logout.SetSummary("Curator logout")
	logout.SetDescription("Clears the curator session and cookie.")
	logout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(logout)

	// GET /api/curator/me
	me, _ := r.NewOperationContext(http.MethodGet, "/api/curator/me")
	me.SetSummary("Current curator")
	me.SetDescription("Returns the currently authenticated curator. Requires curator_session cookie.")
	me.AddRespStructure(CuratorMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	me.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(me)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
