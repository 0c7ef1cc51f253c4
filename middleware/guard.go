package middleware

import (
	"context"
	"net/http"

	goCognito "github.com/MrEthical07/goCognito"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id propagated into audit events.
const RequestIDHeader = "X-Request-ID"

type identityContextKey struct{}

// IdentityFromContext returns the identity attached by Guard or Attach.
func IdentityFromContext(ctx context.Context) (*goCognito.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*goCognito.Identity)
	return id, ok
}

// Guard rejects requests with 401 unless source yields an authenticated identity.
func Guard(source goCognito.IdentitySource) func(http.Handler) http.Handler {
	return identityMiddleware(source, func(id *goCognito.Identity) int {
		if !id.IsAuthenticated() {
			return http.StatusUnauthorized
		}
		return 0
	})
}

func identityMiddleware(source goCognito.IdentitySource, check func(*goCognito.Identity) int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if source == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := withRequestID(r)
			id := source.GetIdentity(ctx)
			if status := check(id); status != 0 {
				http.Error(w, http.StatusText(status), status)
				return
			}

			ctx = context.WithValue(ctx, identityContextKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func withRequestID(r *http.Request) context.Context {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	return goCognito.WithCorrelationID(r.Context(), id)
}
