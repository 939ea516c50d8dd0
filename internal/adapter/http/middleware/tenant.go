package middleware

import (
	"context"
	"net/http"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	// BusinessContextKey carries the authenticated business ID.
	BusinessContextKey ContextKey = "business_id"
	// ActorContextKey carries the acting user's ID when provided.
	ActorContextKey ContextKey = "actor"

	// BusinessIDHeader scopes every API request to one tenant.
	BusinessIDHeader = "X-Business-ID"
	// ActorHeader optionally identifies the acting user for audit logs.
	ActorHeader = "X-Actor-ID"
)

// Tenant requires the business ID header on every request and stores it in
// the request context. Handlers never see a request without a tenant.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		businessID := r.Header.Get(BusinessIDHeader)
		if businessID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"validation_failed","message":"missing ` + BusinessIDHeader + ` header"}`))
			return
		}

		ctx := context.WithValue(r.Context(), BusinessContextKey, businessID)
		if actor := r.Header.Get(ActorHeader); actor != "" {
			ctx = context.WithValue(ctx, ActorContextKey, actor)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BusinessID extracts the tenant from a request context.
func BusinessID(ctx context.Context) string {
	id, _ := ctx.Value(BusinessContextKey).(string)
	return id
}

// Actor extracts the acting user from a request context.
func Actor(ctx context.Context) string {
	actor, _ := ctx.Value(ActorContextKey).(string)
	return actor
}
