package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the model for the 'products' table.
type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	CategoryID  *int64          `json:"categoryId,omitempty" gorm:"index"`
	Name        string          `json:"name" gorm:"size:200;not null"`
	Slug        string          `json:"slug" gorm:"size:220;uniqueIndex;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`

	// --- Provenance ---
	Origin   string `json:"origin,omitempty" gorm:"size:120"`
	Era      string `json:"era,omitempty" gorm:"size:120"`
	Material string `json:"material,omitempty" gorm:"size:120"`

	IsActive   bool `json:"isActive" gorm:"not null;index"`
	IsFeatured bool `json:"isFeatured" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	Category *Category        `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Images   []ProductImage   `json:"images,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Variants []ProductVariant `json:"variants,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	// Aggregates (Not in DB table, populated by the store)
	AverageRating float64 `json:"averageRating" gorm:"-"`
	ReviewCount   int64   `json:"reviewCount" gorm:"-"`
}

// PrimaryImage returns the image flagged primary, or the first one.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// ProductImage is the model for the 'product_images' table
type ProductImage struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ProductID int64     `json:"productId" gorm:"index;not null"`
	URL       string    `json:"url" gorm:"size:500;not null"`
	AltText   string    `json:"altText,omitempty" gorm:"size:255"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	IsPrimary bool      `json:"isPrimary" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductVariant is the model for the 'product_variants' table
type ProductVariant struct {
	ID            int64               `json:"id" gorm:"primaryKey"`
	ProductID     int64               `json:"productId" gorm:"index;not null"`
	SKU           string              `json:"sku" gorm:"size:64;uniqueIndex;not null"`
	Name          string              `json:"name" gorm:"size:150;not null"`
	Color         string              `json:"color,omitempty" gorm:"size:60"`
	Size          string              `json:"size,omitempty" gorm:"size:60"`
	PriceOverride decimal.NullDecimal `json:"priceOverride" gorm:"type:decimal(12,2)"`
	Stock         int                 `json:"stock" gorm:"not null;default:0"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`

	Product *Product `json:"product,omitempty"`
}

// EffectivePrice is the variant's own price when set, otherwise the
// product's base price.
func (v *ProductVariant) EffectivePrice(productPrice decimal.Decimal) decimal.Decimal {
	if v.PriceOverride.Valid {
		return v.PriceOverride.Decimal
	}
	return productPrice
}

// DisplayName joins the variant name with its color and size.
func (v *ProductVariant) DisplayName() string {
	name := v.Name
	for _, part := range []string{v.Color, v.Size} {
		if part == "" {
			continue
		}
		if name == "" {
			name = part
		} else {
			name += " / " + part
		}
	}
	return name
}
