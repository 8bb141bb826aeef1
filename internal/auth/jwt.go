package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// JWTVerifier checks HMAC-signed tokens carrying models.JwtCustomClaims.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, apperr.Auth("missing token", nil)
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, apperr.Auth("token expired", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return 0, apperr.Auth("malformed token", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, apperr.Auth("invalid token signature", err)
		default:
			return 0, apperr.Auth("invalid token", err)
		}
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, apperr.Auth("invalid token", nil)
	}
	return claims.UserID, nil
}
