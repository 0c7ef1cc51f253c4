package middleware

import (
	"net/http"

	goCognito "github.com/MrEthical07/goCognito"
)

// Attach resolves the current identity, authenticated or not, and passes every
// request through.
func Attach(source goCognito.IdentitySource) func(http.Handler) http.Handler {
	return identityMiddleware(source, func(*goCognito.Identity) int { return 0 })
}

// RequireServiceCredentials behaves like Guard and additionally answers 403 when the
// identity carries no identity pool credentials.
func RequireServiceCredentials(source goCognito.IdentitySource) func(http.Handler) http.Handler {
	return identityMiddleware(source, func(id *goCognito.Identity) int {
		if !id.IsAuthenticated() {
			return http.StatusUnauthorized
		}
		if id.Credentials().Service == nil {
			return http.StatusForbidden
		}
		return 0
	})
}
