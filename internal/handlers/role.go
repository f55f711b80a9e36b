package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kev405/toolflow-backend/internal/services"
)

// RoleRouter registers the role enumeration endpoint.
func RoleRouter(r chi.Router, userService *services.UserService) {
	r.With(RequireAuth).Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, userService.Roles())
	})
}
