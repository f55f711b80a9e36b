package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kev405/toolflow-backend/internal/services"
	"github.com/kev405/toolflow-backend/types"
)

const (
	maxImageMemory = 8 << 20
	maxImageBytes  = 16 << 20
	formFieldImage = "image"
)

// ProductHandler exposes catalog product endpoints.
type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductRouter registers product routes. Reads and updates are open to the
// tool administrator as well; creation and disabling are administrator-only.
func ProductRouter(r chi.Router, productService *services.ProductService) {
	handler := NewProductHandler(productService)

	readRoles := RequireRoles(types.RoleAdministrator, types.RoleToolAdministrator)
	adminOnly := RequireRoles(types.RoleAdministrator)

	r.With(readRoles).Get("/", handler.ListProducts)
	r.With(adminOnly).Post("/", handler.CreateProduct)
	r.Route("/{productID}", func(r chi.Router) {
		r.With(readRoles).Get("/", handler.GetProduct)
		r.With(readRoles).Put("/", handler.UpdateProduct)
		r.With(adminOnly).Put("/disabled", handler.DisableProduct)
		r.With(readRoles).Post("/image", handler.UploadImage)
		r.With(readRoles).Get("/image", handler.GetImage)
	})
}

// ProductListResponse is the paginated product listing payload.
type ProductListResponse struct {
	Items []types.Product `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int             `json:"total"`
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	items, total, err := h.productService.List(r.Context(), offset, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ProductListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	save, err := decodeSaveProduct(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	identity, _ := identityFromContext(r.Context())
	product, err := h.productService.Create(r.Context(), save, identity.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	save, err := decodeSaveProduct(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	identity, _ := identityFromContext(r.Context())
	product, err := h.productService.Update(r.Context(), id, save, identity.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DisableProduct soft-disables a product.
func (h *ProductHandler) DisableProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	identity, _ := identityFromContext(r.Context())
	product, err := h.productService.Disable(r.Context(), id, identity.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// UploadImage stores a product image sent as multipart form data.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", errors.New("image file is required"))
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", errors.New("image too large"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	identity, _ := identityFromContext(r.Context())
	if err := h.productService.UploadImage(r.Context(), id, file, header.Size, contentType, identity.ID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetImage streams the product's stored image.
func (h *ProductHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "invalid request", err)
		return
	}

	reader, err := h.productService.OpenImage(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNoImage) {
			writeAPIError(w, r, http.StatusNotFound, "resource not found", err)
			return
		}
		writeDomainError(w, r, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, reader)
}

func decodeSaveProduct(r *http.Request) (services.SaveProduct, error) {
	var save services.SaveProduct
	if err := json.NewDecoder(r.Body).Decode(&save); err != nil {
		return services.SaveProduct{}, err
	}
	return save, nil
}
