package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kev405/toolflow-backend/internal/services"
)

// AuthHandler exposes login, token validation and profile endpoints.
type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService) {
	handler := NewAuthHandler(authService)

	r.Post("/authenticate", handler.Authenticate)
	r.Get("/validate-token", handler.ValidateToken)
	r.With(RequireAuth).Get("/profile", handler.Profile)
}

type AuthenticationRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthenticationResponse struct {
	JWT string `json:"jwt"`
}

// Authenticate verifies credentials and returns a signed token.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", errors.New("missing credentials"))
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthenticationResponse{JWT: token})
}

// ValidateToken is a boolean probe over the jwt query parameter.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("jwt"))
	writeJSON(w, http.StatusOK, h.authService.ValidateToken(token))
}

// Profile returns the current authenticated user's public fields.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeAPIError(w, r, http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), identity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
