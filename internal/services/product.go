package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kev405/toolflow-backend/internal/audit"
	"github.com/kev405/toolflow-backend/internal/storage"
	"github.com/kev405/toolflow-backend/types"
)

// ErrNoImage is returned when a product has no stored image.
var ErrNoImage = errors.New("product has no image")

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Product, int, error)
	Get(ctx context.Context, id int64) (types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) (types.Product, error)
	SetStatus(ctx context.Context, id int64, status types.CatalogStatus) error
	SetImageKey(ctx context.Context, id int64, key string) error
}

// SaveProduct is the create/update payload for products.
type SaveProduct struct {
	Name       string `json:"name"`
	Price      string `json:"price"`
	CategoryID int64  `json:"categoryId"`
}

// ProductService implements catalog product use-cases, including image
// storage in the configured object store.
type ProductService struct {
	repo    ProductRepository
	images  storage.ObjectStorage
	auditor *audit.Publisher
	log     *slog.Logger
}

// NewProductService constructs the service. images may be nil, in which case
// image upload/download is unavailable.
func NewProductService(repo ProductRepository, images storage.ObjectStorage, auditor *audit.Publisher, log *slog.Logger) *ProductService {
	if log == nil {
		log = slog.Default()
	}
	return &ProductService{repo: repo, images: images, auditor: auditor, log: log}
}

func (s *ProductService) List(ctx context.Context, offset, limit int) ([]types.Product, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *ProductService) Get(ctx context.Context, id int64) (types.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, save SaveProduct, actorID int64) (types.Product, error) {
	product := types.Product{
		Name:       strings.TrimSpace(save.Name),
		Price:      strings.TrimSpace(save.Price),
		Status:     types.StatusEnabled,
		CategoryID: save.CategoryID,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return types.Product{}, err
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, "product.created", "product", created.ID, actorID)
	}
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, save SaveProduct, actorID int64) (types.Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}

	product.Name = strings.TrimSpace(save.Name)
	product.Price = strings.TrimSpace(save.Price)
	product.CategoryID = save.CategoryID

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return types.Product{}, err
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, "product.updated", "product", id, actorID)
	}
	return updated, nil
}

// Disable soft-disables a product; the row is kept.
func (s *ProductService) Disable(ctx context.Context, id, actorID int64) (types.Product, error) {
	if err := s.repo.SetStatus(ctx, id, types.StatusDisabled); err != nil {
		return types.Product{}, err
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, "product.disabled", "product", id, actorID)
	}
	return s.repo.Get(ctx, id)
}

// UploadImage stores a product image under a fresh object key and records
// the key on the product. A previously stored image is deleted best-effort.
func (s *ProductService) UploadImage(ctx context.Context, id int64, r io.Reader, size int64, contentType string, actorID int64) error {
	if s.images == nil {
		return errors.New("object storage is not configured")
	}

	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("products/%d/%s", id, uuid.NewString())
	if err := s.images.Put(ctx, key, r, size, contentType); err != nil {
		return err
	}
	if err := s.repo.SetImageKey(ctx, id, key); err != nil {
		return err
	}

	if product.ImageKey != "" {
		if err := s.images.Delete(ctx, product.ImageKey); err != nil {
			s.log.WarnContext(ctx, "delete stale product image", "key", product.ImageKey, "error", err)
		}
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, "product.image_uploaded", "product", id, actorID)
	}
	return nil
}

// OpenImage opens a reader over the product's stored image.
func (s *ProductService) OpenImage(ctx context.Context, id int64) (io.ReadCloser, error) {
	if s.images == nil {
		return nil, errors.New("object storage is not configured")
	}
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.ImageKey == "" {
		return nil, ErrNoImage
	}
	return s.images.Get(ctx, product.ImageKey)
}
