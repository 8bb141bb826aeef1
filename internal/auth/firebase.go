package auth

import (
	"context"
	"errors"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
)

// FirebaseVerifier checks Firebase ID tokens and maps the Firebase UID to a local user.
type FirebaseVerifier struct {
	client *fbauth.Client
	users  repositories.UserRepository
}

func NewFirebaseVerifier(client *fbauth.Client, users repositories.UserRepository) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: users}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (uint, error) {
	if idToken == "" {
		return 0, apperr.Auth("missing token", nil)
	}
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		if fbauth.IsIDTokenExpired(err) {
			return 0, apperr.Auth("token expired", err)
		}
		return 0, apperr.Auth("invalid or expired ID token", err)
	}

	user, err := v.users.GetUserByFirebaseUID(ctx, token.UID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, apperr.Auth("authenticated user not found", err)
		}
		return 0, apperr.Internal(err)
	}
	return user.ID, nil
}
