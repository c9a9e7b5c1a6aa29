package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/complyra/complyra/internal/domain"
)

type contextKey string

const (
	ContextKeyUserID   contextKey = "user_id"
	ContextKeyActor    contextKey = "actor"
	ContextKeyUserRole contextKey = "role"
	ContextKeyClientIP contextKey = "client_ip"
)

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

// ActorFromContext returns the authenticated actor loaded by Auth.
func ActorFromContext(ctx context.Context) (*domain.Actor, bool) {
	v, ok := ctx.Value(ContextKeyActor).(*domain.Actor)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(string)
	return v, ok
}

// ClientIPFromContext returns the request's remote address, recorded for the
// audit trail.
func ClientIPFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyClientIP).(string)
	return v
}

// ClientIP stores the request's remote address in the context. Used on
// unauthenticated route groups, where Auth does not run but login audit rows
// still want the source address.
func ClientIP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ContextKeyClientIP, r.RemoteAddr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
