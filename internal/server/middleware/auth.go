package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"cid"`
	UserID    string `json:"uid"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
}

// Auth validates the Bearer token and loads the current actor from the
// repository, so role or deactivation changes take effect on the next request
// rather than at token expiry.
func Auth(jwtSecret string, actors domain.ActorRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := extractBearer(r); tok != "" {
				ctx, ok := authenticateJWT(r.Context(), tok, jwtSecret, actors)
				if ok {
					ctx = context.WithValue(ctx, ContextKeyClientIP, r.RemoteAddr)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
		})
	}
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}

func authenticateJWT(ctx context.Context, tokenStr, secret string, actors domain.ActorRepository) (context.Context, bool) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return ctx, false
	}

	// Refresh tokens cannot be used as access tokens.
	if claims.TokenType != "access" {
		return ctx, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ctx, false
	}

	actor, err := actors.GetByID(ctx, userID)
	if err != nil || !actor.IsActive {
		return ctx, false
	}

	ctx = context.WithValue(ctx, ContextKeyUserID, actor.ID)
	ctx = context.WithValue(ctx, ContextKeyActor, actor)
	ctx = context.WithValue(ctx, ContextKeyUserRole, actor.Role)
	return ctx, true
}
