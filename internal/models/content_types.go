package models

import "time"

// FooterContent is the single row of the 'footer_contents' table.
type FooterContent struct {
	ID        int64     `json:"-" gorm:"primaryKey"`
	About     string    `json:"about" gorm:"type:text"`
	Email     string    `json:"email" gorm:"size:191"`
	Phone     string    `json:"phone" gorm:"size:50"`
	Address   string    `json:"address" gorm:"size:255"`
	Copyright string    `json:"copyright" gorm:"size:255"`
	UpdatedAt time.Time `json:"updatedAt"`

	Links []FooterLink `json:"links" gorm:"-"`
}

// FooterLink is a row of the 'footer_links' table.
type FooterLink struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Section  string `json:"section" gorm:"size:80;not null;index"`
	Label    string `json:"label" gorm:"size:120;not null"`
	URL      string `json:"url" gorm:"size:500;not null"`
	Position int    `json:"position" gorm:"not null;default:0"`
}

// SiteSetting is a key/value row of the 'site_settings' table.
type SiteSetting struct {
	Key       string    `json:"key" gorm:"column:setting_key;primaryKey;size:100"`
	Value     string    `json:"value" gorm:"column:setting_value;type:text"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SettingMaintenanceMode switches the storefront off when set to "true".
const SettingMaintenanceMode = "maintenance_mode"
