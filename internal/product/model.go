package product

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Stock        int             `json:"stock" db:"stock"`
	CategoryID   uuid.NullUUID   `json:"category_id" db:"category_id"`
	CategoryName string          `json:"category_name,omitempty" db:"-"`
	ImageURL     string          `json:"image_url" db:"image_url"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Update carries the fields of a partial product update. Nil means
// "leave unchanged".
type Update struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *uuid.UUID
	ImageURL    *string
}
