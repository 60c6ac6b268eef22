package models

import "time"

// Review is the model for the 'reviews' table
type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ProductID int64     `json:"productId" gorm:"uniqueIndex:idx_review_product_user;not null"`
	UserID    int64     `json:"userId" gorm:"uniqueIndex:idx_review_product_user;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Title     string    `json:"title,omitempty" gorm:"size:150"`
	Body      string    `json:"body,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	Product *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	User    *User    `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// Populated from the joined user row.
	ReviewerName string `json:"reviewerName" gorm:"->;-:migration"`
}

// RatingSummary aggregates a product's reviews.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
