package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/services/accounts"
)

type ctxKey int

const sessionKey ctxKey = iota

// withSession resolves the bearer token into a session and stores it on the
// request context. Requests without a valid session are rejected here.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.respondError(w, r, errs.Authf("missing bearer token"))
			return
		}
		sess, err := s.accounts.SessionFromToken(r.Context(), token)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return s.requireKind(accounts.KindUser, next)
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return s.requireKind(accounts.KindAdmin, next)
}

func (s *Server) requireKind(kind string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r.Context())
		if sess == nil || sess.Kind != kind {
			respondJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
			s.respondError(w, r, errs.Authf("invalid api key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(ctx context.Context) *accounts.Session {
	sess, _ := ctx.Value(sessionKey).(*accounts.Session)
	return sess
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
