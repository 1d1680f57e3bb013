package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pingliu/service-rental-go/internal/user/entity"
	"github.com/pingliu/service-rental-go/pkg/utilities"
)

// AccountSource resolves a token's claimed identifier into a live account.
type AccountSource interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

type contextKey struct{}

var userKey contextKey

// UserFrom returns the account the gate attached to the request context.
func UserFrom(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(userKey).(*entity.User)
	return u, ok
}

// Middleware is the auth gate: it extracts the bearer token, verifies it,
// resolves the account and attaches it to the request context. Any failure
// rejects the request before the handler runs. Accounts disabled after
// token issuance are rejected here as well, so a still-valid token stops
// working the moment the account is disabled.
func Middleware(tokens *TokenService, accounts AccountSource, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				utilities.WriteError(w, http.StatusUnauthorized, "unauthorized, please log in")
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				switch {
				case errors.Is(err, ErrTokenExpired):
					utilities.WriteError(w, http.StatusUnauthorized, "token expired, please log in again")
				default:
					utilities.WriteError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			u, err := accounts.GetByID(r.Context(), claims.UserID)
			if err != nil {
				// a token may outlive its account
				logger.Debugw("token for unknown account", "userId", claims.UserID, "err", err)
				utilities.WriteError(w, http.StatusUnauthorized, "account does not exist")
				return
			}
			if u.Status == entity.StatusDisabled {
				utilities.WriteError(w, http.StatusForbidden, "account disabled, contact administrator")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

// RequireRole restricts a gated route to accounts holding the given role.
// It must run after Middleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFrom(r.Context())
			if !ok {
				utilities.WriteError(w, http.StatusUnauthorized, "unauthorized, please log in")
				return
			}
			if u.Role != role {
				utilities.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
