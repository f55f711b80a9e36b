package types

import "time"

// CatalogStatus marks whether a catalog record is visible. Disabled records
// are kept for referential integrity and can be re-enabled later.
type CatalogStatus string

const (
	StatusEnabled  CatalogStatus = "ENABLED"
	StatusDisabled CatalogStatus = "DISABLED"
)

// Category groups products in the catalog.
type Category struct {
	ID        int64         `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Status    CatalogStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Product is a catalog entry belonging to a category.
type Product struct {
	ID int64 `json:"id" db:"id"`

	Name string `json:"name" db:"name"`

	// Price is carried as a decimal string to avoid float rounding; the
	// store persists it as NUMERIC.
	Price string `json:"price" db:"price"`

	Status CatalogStatus `json:"status" db:"status"`

	CategoryID int64 `json:"category_id" db:"category_id"`

	// ImageKey is the object-storage key of the product image, empty when
	// no image has been uploaded.
	ImageKey string `json:"image_key,omitempty" db:"image_key"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
