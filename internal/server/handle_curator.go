package server

import (
	"net/http"
	"strings"
	"time"
)

// CuratorLoginRequest is the request body for POST /api/curator/login.
type CuratorLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CuratorMeResponse is the response for GET /api/curator/me.
type CuratorMeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func handleCuratorLogin(curators *CuratorStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CuratorLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		curatorID, err := curators.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sessionID, err := curators.CreateSession(r.Context(), curatorID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     curatorCookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(7 * 24 * time.Hour / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, CuratorMeResponse{
			ID:    curatorID,
			Email: req.Email,
		})
	}
}

func handleCuratorLogout(curators *CuratorStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(curatorCookieName); err == nil && cookie.Value != "" {
			curators.DeleteSession(r.Context(), cookie.Value)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     curatorCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		w.WriteHeader(http.StatusOK)
	}
}

func handleCuratorMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := curatorFrom(r)
		writeJSON(w, http.StatusOK, CuratorMeResponse{
			ID:    sess.CuratorID,
			Email: sess.Email,
		})
	}
}
