// Package auth verifies the bearer credentials presented on REST calls and
// live-channel handshakes. Issuing credentials happens elsewhere.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
)

// Verifier resolves a bearer token to the id of the user it was issued to.
// Failures are apperr.KindAuth errors.
type Verifier interface {
	Verify(ctx context.Context, token string) (uint, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.Auth("missing authorization header", nil)
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", apperr.Auth("authorization header must be in Bearer format", nil)
	}
	return parts[1], nil
}

// TokenFromRequest reads the bearer header, falling back to the token query
// parameter browsers use for websocket handshakes.
func TokenFromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		return BearerToken(h)
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t, nil
	}
	return "", apperr.Auth("missing credential", nil)
}
