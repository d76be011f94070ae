package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	"github.com/cmlabs-hris/crm-attendance/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type actingUserKey struct{}

// WithUser stores the acting user on ctx.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, actingUserKey{}, u)
}

// UserFromContext returns the acting user resolved by ResolveUser.
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(actingUserKey{}).(user.User)
	return u, ok
}

// ResolveUser loads the user named by the token's user_id claim. Unknown
// users get 404 and blocked accounts 403.
func ResolveUser(users user.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			actor, err := users.GetByID(r.Context(), userID)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if actor.IsBlocked {
				response.HandleError(w, auth.ErrAccountBlocked)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), actor)))
		})
	}
}
