package models

import "time"

// Cart defines the struct for the 'carts' table
type Cart struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	UserID    int64      `json:"userId" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Items     []CartItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
}

// CartItem defines the struct for the 'cart_items' table
type CartItem struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CartID    int64     `json:"cartId" gorm:"uniqueIndex:idx_cart_variant;not null"`
	VariantID int64     `json:"variantId" gorm:"uniqueIndex:idx_cart_variant;not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Variant *ProductVariant `json:"variant,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// WishlistItem defines the struct for the 'wishlist_items' table
type WishlistItem struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"userId" gorm:"uniqueIndex:idx_wishlist_user_product;not null"`
	ProductID int64     `json:"productId" gorm:"uniqueIndex:idx_wishlist_user_product;not null"`
	CreatedAt time.Time `json:"createdAt"`

	Product *Product `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
