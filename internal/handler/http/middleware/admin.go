package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	"github.com/cmlabs-hris/crm-attendance/internal/handler/http/response"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := UserFromContext(r.Context())
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		if !actor.IsAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
