package server

import (
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, deps Deps) {
	logger := deps.Logger
	svc := deps.Service
	store := deps.Store
	curators := deps.Curators
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Quizterra API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.DB))

	// Read-only game surface. Snapshots are shared state; no identity needed.
	r.Get("/api/games/{pin}", handleGetGame(svc))
	r.Get("/api/games/{pin}/events", handleEvents(store))
	r.Get("/api/games/{pin}/live", handleLive(store, logger))

	// Player actions — identity carried as an opaque Bearer token.
	r.Group(func(r chi.Router) {
		r.Use(identityMiddleware)
		r.Post("/api/games/{pin}/join", handleJoinGame(svc))
		r.Post("/api/games/{pin}/start", handleStartGame(svc))
		r.Post("/api/games/{pin}/answers", handleSubmitAnswer(svc))
		r.Post("/api/games/{pin}/claims", handleClaimSquare(svc))
		r.Post("/api/games/{pin}/claims/skip", handleSkipClaim(svc))
		r.Post("/api/games/{pin}/end", handleEndGame(svc))
		r.Post("/api/games/{pin}/reset", handleResetGame(svc))
		r.Post("/api/games/{pin}/spawn", handleSpawnSession(svc))
	})

	// Curator auth — session cookie.
	r.Post("/api/curator/login", handleCuratorLogin(curators))
	r.Post("/api/curator/logout", handleCuratorLogout(curators))

	// Curator game management.
	r.Group(func(r chi.Router) {
		r.Use(curatorAuthMiddleware(curators))
		r.Get("/api/curator/me", handleCuratorMe())
		r.Post("/api/games", handleCreateGame(svc))
		r.Patch("/api/games/{pin}", handleUpdateMetadata(svc))
		r.Delete("/api/games/{pin}", handleDeleteGame(svc))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
