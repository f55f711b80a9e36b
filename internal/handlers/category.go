package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kev405/toolflow-backend/internal/services"
	"github.com/kev405/toolflow-backend/types"
)

// CategoryHandler exposes catalog category endpoints.
type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRouter registers category routes with the same role split as
// products.
func CategoryRouter(r chi.Router, categoryService *services.CategoryService) {
	handler := NewCategoryHandler(categoryService)

	readRoles := RequireRoles(types.RoleAdministrator, types.RoleToolAdministrator)
	adminOnly := RequireRoles(types.RoleAdministrator)

	r.With(readRoles).Get("/", handler.ListCategories)
	r.With(adminOnly).Post("/", handler.CreateCategory)
	r.Route("/{categoryID}", func(r chi.Router) {
		r.With(readRoles).Get("/", handler.GetCategory)
		r.With(readRoles).Put("/", handler.UpdateCategory)
		r.With(adminOnly).Put("/disabled", handler.DisableCategory)
	})
}

// CategoryListResponse is the paginated category listing payload.
type CategoryListResponse struct {
	Items []types.Category `json:"items"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	items, total, err := h.categoryService.List(r.Context(), offset, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CategoryListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	save, err := decodeSaveCategory(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	identity, _ := identityFromContext(r.Context())
	category, err := h.categoryService.Create(r.Context(), save, identity.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	save, err := decodeSaveCategory(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	identity, _ := identityFromContext(r.Context())
	category, err := h.categoryService.Update(r.Context(), id, save, identity.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DisableCategory soft-disables a category.
func (h *CategoryHandler) DisableCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	identity, _ := identityFromContext(r.Context())
	category, err := h.categoryService.Disable(r.Context(), id, identity.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func decodeSaveCategory(r *http.Request) (services.SaveCategory, error) {
	var save services.SaveCategory
	if err := json.NewDecoder(r.Body).Decode(&save); err != nil {
		return services.SaveCategory{}, err
	}
	return save, nil
}
