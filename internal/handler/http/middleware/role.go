package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/user"
	"github.com/presensi-hq/presensi-backend-go/internal/handler/http/response"
)

// RequireOwner requires owner role
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrOwnerAccessRequired)
			return
		}

		role, ok := claims["role"].(string)
		if !ok || user.Role(role) != user.RoleOwner {
			response.HandleError(w, user.ErrOwnerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}

		role, ok := claims["role"].(string)
		if !ok || !user.CanManageRoster(user.Role(role)) {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
