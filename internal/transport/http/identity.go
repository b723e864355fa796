package http

import (
	"context"
	"net/http"

	"github.com/AlexP3rez/biblioteca-api/internal/domain"
)

// Identity headers set by the authentication gateway in front of this
// service. The core never verifies credentials itself; it trusts the
// forwarded identity and applies role and eligibility checks only.
const (
	userIDHeader   = "X-User-Id"
	userRoleHeader = "X-User-Role"
)

type identityKey struct{}

// Identity is the authenticated caller forwarded by the gateway.
type Identity struct {
	UserID string
	Role   domain.UserRole
}

// RequireIdentity rejects requests that carry no forwarded identity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userIDHeader)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, codeIdentityRequired, "missing identity headers")
			return
		}

		id := Identity{
			UserID: userID,
			Role:   domain.UserRole(r.Header.Get(userRoleHeader)),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

// IdentityFrom returns the caller identity stored by RequireIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// requireAdmin guards administrative operations.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeIdentityRequired, "missing identity headers")
		return false
	}
	if id.Role != domain.RoleAdministrator {
		writeError(w, http.StatusForbidden, codeForbidden, "administrator role required")
		return false
	}
	return true
}
