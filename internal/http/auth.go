package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/leoperezgr/Leofy/internal/httperr"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to the request context by
// the auth gate.
type Identity struct {
	ID    string
	Email string
}

// IdentityFromContext returns the verified caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// authenticated is the auth gate: it extracts the bearer token, verifies it,
// and hands the resolved identity to the handler. Verification is purely
// cryptographic; the store is never consulted, so a token outlives account
// deactivation until it expires.
func (s *Server) authenticated(next func(w http.ResponseWriter, r *http.Request, who Identity) error) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return httperr.ErrUnauthenticated
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			return httperr.ErrUnauthenticated
		}

		verified, err := s.tokens.Verify(token)
		if err != nil {
			return httperr.ErrUnauthenticated
		}

		who := Identity{ID: verified.UserID, Email: verified.Email}
		r = r.WithContext(context.WithValue(r.Context(), identityKey, who))
		return next(w, r, who)
	}
}
