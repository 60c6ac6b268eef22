package models

import "time"

// Category defines the struct for the 'categories' table
type Category struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:120;not null"`
	Slug        string    `json:"slug" gorm:"size:160;uniqueIndex;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	ImageURL    *string   `json:"imageUrl,omitempty" gorm:"size:500"`
	ParentID    *int64    `json:"parentId,omitempty" gorm:"index"` // Use pointer for NULL
	Position    int       `json:"position" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Virtual Field (Not in DB) - Used for constructing the Tree View in the UI
	Children []Category `json:"children,omitempty" gorm:"-"`
}
