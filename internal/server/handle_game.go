package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizterra/quizterra/internal/game"
	"github.com/quizterra/quizterra/internal/service"
)

// TeamRequest describes one team at game creation.
type TeamRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
}

// CreateGameRequest is the request body for POST /api/games.
type CreateGameRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Topic        string          `json:"topic"`
	Difficulty   string          `json:"difficulty"`
	TimerSeconds int             `json:"timerSeconds"`
	SessionType  string          `json:"sessionType"`
	Teams        []TeamRequest   `json:"teams"`
	Questions    []game.Question `json:"questions"`
}

// MetadataRequest is the request body for PATCH /api/games/{pin}.
type MetadataRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

const (
	defaultTimerSeconds = 300
	defaultTeamCapacity = 8
)

func handleCreateGame(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sessionType := game.SessionType(req.SessionType)
		if sessionType == "" {
			sessionType = game.SessionTeam
		}
		if sessionType != game.SessionTeam && sessionType != game.SessionIndividual {
			writeError(w, http.StatusBadRequest, "sessionType must be 'team' or 'individual'")
			return
		}

		teams := make([]game.Team, 0, len(req.Teams))
		seen := map[string]bool{}
		for _, t := range req.Teams {
			name := strings.TrimSpace(t.Name)
			if name == "" {
				writeError(w, http.StatusBadRequest, "team name is required")
				return
			}
			if seen[name] {
				writeError(w, http.StatusBadRequest, "team names must be unique")
				return
			}
			seen[name] = true
			teams = append(teams, game.Team{
				Name:     name,
				Capacity: t.Capacity,
				Color:    t.Color,
				Icon:     t.Icon,
			})
		}
		if len(teams) == 0 {
			writeError(w, http.StatusBadRequest, "at least one team is required")
			return
		}

		timer := req.TimerSeconds
		if timer <= 0 {
			timer = defaultTimerSeconds
		}

		g, err := svc.CreateGame(r.Context(), teams, game.Config{
			Title:        req.Title,
			Description:  req.Description,
			Topic:        req.Topic,
			Difficulty:   req.Difficulty,
			TimerSeconds: timer,
			TeamCapacity: defaultTeamCapacity,
			SessionType:  sessionType,
			AdminID:      curatorFrom(r).CuratorID,
			Questions:    req.Questions,
		})
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

func handleGetGame(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := svc.Get(r.Context(), chi.URLParam(r, "pin"))
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func handleUpdateMetadata(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MetadataRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		g, err := svc.UpdateMetadata(r.Context(), chi.URLParam(r, "pin"), req.Title, req.Description)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func handleDeleteGame(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteGame(r.Context(), chi.URLParam(r, "pin")); err != nil {
			writeGameError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
