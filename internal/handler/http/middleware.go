package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/service"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/httputil"
	"github.com/utafrali/shopfront/pkg/middleware"
)

type contextKey string

const userKey contextKey = "user"

// LoadUser loads the account named by the token claims and stores it in the
// request context. The claims' role is refreshed from the stored account so
// role checks see demotions made after the token was issued. It must run
// after middleware.Auth.
func LoadUser(users *service.UserService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := middleware.ClaimsFromContext(r.Context())
			if claims == nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("Please Login to access this resource"), logger)
				return
			}

			user, err := users.GetUser(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					err = apperrors.Unauthorized("Please Login to access this resource")
				}
				httputil.WriteError(w, r, err, logger)
				return
			}

			refreshed := *claims
			refreshed.Role = user.Role
			ctx := middleware.WithClaims(r.Context(), &refreshed)
			ctx = context.WithValue(ctx, userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFromContext returns the account stored by LoadUser, or nil.
func userFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}
