package models

import "github.com/shopspring/decimal"

// Product is a row of the products table.
type Product struct {
	Base
	Name  string          `gorm:"not null" json:"name"`
	SKU   string          `gorm:"column:sku;index;not null" json:"sku"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock int             `gorm:"not null;default:0" json:"stock"`
	Image string          `json:"image"` // relative path such as "products/<uuid>.png", never a URL

	// ImageURL is derived from Image at read time.
	ImageURL *string `gorm:"-" json:"image_url"`
}

// HasImage reports whether the product references a stored image file.
func (p *Product) HasImage() bool {
	return p.Image != ""
}

// IsDeleted reports whether the product has been soft-deleted.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt.Valid
}
