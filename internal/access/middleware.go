package access

import (
	"net/http"

	"ms-tripbooking/internal/auth"
)

// RequireCapability gates a route on a capability. It must sit behind the
// auth middleware so the principal is already in the request context.
func (c *Checker) RequireCapability(capability Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principalID, ok := auth.PrincipalID(r.Context())
			if !ok {
				http.Error(w, "missing principal", http.StatusUnauthorized)
				return
			}

			if err := c.Require(r.Context(), principalID, capability); err != nil {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
