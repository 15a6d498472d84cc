package server

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const (
	ctxKeyIdentity ctxKey = iota
	ctxKeyCurator
)

// identityMiddleware extracts the opaque identity token the external
// identity provider issued. The token is the stable identity string itself;
// the core needs no other contract from the provider.
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := bearerToken(r)
		if identity == "" {
			writeError(w, http.StatusUnauthorized, "identity token required")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyIdentity, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

func identityFrom(r *http.Request) string {
	identity, _ := r.Context().Value(ctxKeyIdentity).(string)
	return identity
}

func curatorAuthMiddleware(curators *CuratorStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(curatorCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := curators.CuratorFromSession(r.Context(), cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyCurator, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func curatorFrom(r *http.Request) curatorSession {
	sess, _ := r.Context().Value(ctxKeyCurator).(curatorSession)
	return sess
}
