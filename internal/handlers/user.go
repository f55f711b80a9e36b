package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kev405/toolflow-backend/internal/services"
	"github.com/kev405/toolflow-backend/types"
)

// UserHandler exposes administrative user management endpoints.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes. Every operation here is restricted to
// ADMINISTRATOR.
func UserRouter(r chi.Router, userService *services.UserService) {
	handler := NewUserHandler(userService)

	r.Use(RequireRoles(types.RoleAdministrator))
	r.Post("/", handler.Register)
	r.Get("/", handler.ListUsers)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
	})
}

// UserListResponse is the paginated user listing payload.
type UserListResponse struct {
	Items []services.UserResponse `json:"items"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
	Total int                     `json:"total"`
}

// Register creates a new user account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ListUsers returns a page of active users with optional column search.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, _, err := parsePagination(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	sortColumn, sortDesc := parseSort(r.URL.Query().Get("sort"))

	users, total, err := h.userService.List(r.Context(), services.ListUsersParams{
		Page:         page,
		Limit:        limit,
		SortColumn:   sortColumn,
		SortDesc:     sortDesc,
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		SearchColumn: strings.TrimSpace(r.URL.Query().Get("searchColumn")),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		Items: users,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	req, err := decodeUserRequest(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	user, err := h.userService.Update(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser soft-deletes a user account.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	identity, _ := identityFromContext(r.Context())
	if err := h.userService.Delete(r.Context(), id, identity.ID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeUserRequest(r *http.Request) (services.UserRequest, error) {
	var req services.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return services.UserRequest{}, err
	}
	return req, nil
}

// parseSort interprets "column" or "column,desc" sort parameters.
func parseSort(raw string) (column string, desc bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	parts := strings.SplitN(raw, ",", 2)
	column = strings.TrimSpace(parts[0])
	if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
		desc = true
	}
	return column, desc
}
