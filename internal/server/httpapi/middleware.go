package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/akapustin/itemhub/internal/common"
	"github.com/akapustin/itemhub/internal/server/auth"
	"github.com/akapustin/itemhub/internal/server/models"
)

type ctxKey string

const principalKey ctxKey = "principal"

// principalFromContext returns the authenticated user stored by requireUser.
func principalFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(principalKey).(*models.User)
	return user, ok
}

// requireUser validates the bearer token and resolves its subject to a user,
// which is stored in the request context. Missing, malformed or expired
// tokens are rejected with 401; a token whose subject no longer exists with
// 404.
func (s *HTTPServer) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			writeError(w, common.ErrUnauthorized, "Not authenticated")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, err, "Could not validate credentials")
			return
		}

		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				writeError(w, common.ErrNotFound, "User not found")
				return
			}
			writeError(w, common.ErrInternal, "Internal error")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireActive rejects requests from deactivated accounts.
func (s *HTTPServer) requireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, common.ErrUnauthorized, "Not authenticated")
			return
		}
		if !user.IsActive {
			writeError(w, common.ErrInactiveUser, "Inactive user")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSuperuser rejects requests from principals without elevated
// privileges.
func (s *HTTPServer) requireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := principalFromContext(r.Context())
		if !ok {
			writeError(w, common.ErrUnauthorized, "Not authenticated")
			return
		}
		if !user.IsSuperuser {
			writeError(w, common.ErrForbidden, "The user doesn't have enough privileges")
			return
		}
		next.ServeHTTP(w, r)
	})
}
