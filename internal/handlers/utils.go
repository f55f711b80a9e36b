package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kev405/toolflow-backend/internal/auth"
	"github.com/kev405/toolflow-backend/internal/services"
	"github.com/kev405/toolflow-backend/internal/store"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// identityFromContext returns the identity bound by the authentication
// middleware, if any.
func identityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(contextIdentityKey).(auth.Identity)
	return identity, ok
}

// withIdentity binds an authenticated identity to the request context.
func withIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, identity)
}

// ApiError is the structured error payload returned on every failure: a
// user-facing message plus the raw backend message for diagnostics.
type ApiError struct {
	BackendMessage string    `json:"backendMessage"`
	Message        string    `json:"message"`
	URL            string    `json:"url"`
	Method         string    `json:"method"`
	Timestamp      time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeAPIError renders an ApiError with a generic user-facing message and
// the backend error text kept separate.
func writeAPIError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	backend := ""
	if err != nil {
		backend = err.Error()
	}
	writeJSON(w, status, ApiError{
		BackendMessage: backend,
		Message:        message,
		URL:            r.URL.Path,
		Method:         r.Method,
		Timestamp:      time.Now(),
	})
}

// writeDomainError maps a domain error to its fixed HTTP status and a
// generic user-facing message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, store.ErrAlreadyExists):
		writeAPIError(w, r, http.StatusConflict, "resource already exists", err)
	case errors.Is(err, services.ErrInvalidPassword),
		errors.Is(err, services.ErrInvalidRoleAssignment),
		errors.Is(err, services.ErrInvalidSearchColumn):
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
	case errors.Is(err, services.ErrBadCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeAPIError(w, r, http.StatusUnauthorized, "unauthorized", err)
	default:
		writeAPIError(w, r, http.StatusInternalServerError, "internal server error", err)
	}
}

// Healthz is a liveness probe.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("invalid page")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, errors.New("invalid limit")
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	offset = (page - 1) * limit
	return page, limit, offset, nil
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
