package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kev405/toolflow-backend/internal/store"
	"github.com/kev405/toolflow-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	products map[int64]types.Product
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]types.Product)}
}

func (f *fakeProductRepo) List(_ context.Context, offset, limit int) ([]types.Product, int, error) {
	all := make([]types.Product, 0, len(f.products))
	for _, p := range f.products {
		all = append(all, p)
	}
	return all, len(all), nil
}

func (f *fakeProductRepo) Get(_ context.Context, id int64) (types.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return types.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) Create(_ context.Context, product types.Product) (types.Product, error) {
	f.nextID++
	product.ID = f.nextID
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) Update(_ context.Context, product types.Product) (types.Product, error) {
	if _, ok := f.products[product.ID]; !ok {
		return types.Product{}, store.ErrNotFound
	}
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) SetStatus(_ context.Context, id int64, status types.CatalogStatus) error {
	p, ok := f.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Status = status
	f.products[id] = p
	return nil
}

func (f *fakeProductRepo) SetImageKey(_ context.Context, id int64, key string) error {
	p, ok := f.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.ImageKey = key
	f.products[id] = p
	return nil
}

// fakeObjectStorage keeps uploaded objects in a map.
type fakeObjectStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (f *fakeObjectStorage) EnsureBucket(_ context.Context) error { return nil }

func (f *fakeObjectStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStorage) Bucket() string { return "test-bucket" }

func TestProductCreateAndDisable(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil, nil, nil)

	created, err := svc.Create(context.Background(), SaveProduct{
		Name:       "  Wrench  ",
		Price:      "19.99",
		CategoryID: 3,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Wrench", created.Name, "names are trimmed")
	assert.Equal(t, types.StatusEnabled, created.Status)

	disabled, err := svc.Disable(context.Background(), created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDisabled, disabled.Status)

	_, ok := repo.products[created.ID]
	assert.True(t, ok, "disable keeps the row")
}

func TestProductUpdate_NotFound(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), nil, nil, nil)

	_, err := svc.Update(context.Background(), 42, SaveProduct{Name: "x"}, 1)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUploadImage_RotatesKeyAndDeletesStale(t *testing.T) {
	repo := newFakeProductRepo()
	images := newFakeObjectStorage()
	svc := NewProductService(repo, images, nil, nil)

	created, err := svc.Create(context.Background(), SaveProduct{Name: "Hammer", Price: "5.00", CategoryID: 1}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.UploadImage(context.Background(), created.ID,
		strings.NewReader("first"), 5, "image/png", 1))
	firstKey := repo.products[created.ID].ImageKey
	require.NotEmpty(t, firstKey)
	assert.True(t, strings.HasPrefix(firstKey, "products/1/"))

	require.NoError(t, svc.UploadImage(context.Background(), created.ID,
		strings.NewReader("second"), 6, "image/png", 1))
	secondKey := repo.products[created.ID].ImageKey
	assert.NotEqual(t, firstKey, secondKey, "each upload gets a fresh key")
	assert.Contains(t, images.deleted, firstKey, "stale image is removed")

	rc, err := svc.OpenImage(context.Background(), created.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestOpenImage_NoImage(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, newFakeObjectStorage(), nil, nil)

	created, err := svc.Create(context.Background(), SaveProduct{Name: "Bare", Price: "1.00", CategoryID: 1}, 1)
	require.NoError(t, err)

	_, err = svc.OpenImage(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrNoImage)
}

func TestUploadImage_NoStorageConfigured(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil, nil, nil)

	created, err := svc.Create(context.Background(), SaveProduct{Name: "Saw", Price: "9.00", CategoryID: 1}, 1)
	require.NoError(t, err)

	err = svc.UploadImage(context.Background(), created.ID, strings.NewReader("x"), 1, "image/png", 1)
	require.Error(t, err)
}
