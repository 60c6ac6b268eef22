package models

import "time"

// Notification is the model for the 'notifications' table
type Notification struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"userId" gorm:"index;not null"`
	Message   string    `json:"message" gorm:"size:500;not null"`
	Link      *string   `json:"link,omitempty" gorm:"size:255"`
	IsRead    bool      `json:"isRead" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// AssistantLog is the model for the 'assistant_logs' table
type AssistantLog struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	UserID     int64     `json:"userId" gorm:"index;not null"`
	Question   string    `json:"question" gorm:"type:text;not null"`
	Answer     string    `json:"answer" gorm:"type:text"`
	TokensUsed int       `json:"tokensUsed" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"createdAt"`
}
