package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// User is the model for the 'users' table.
type User struct {
	ID              int64   `json:"id" gorm:"primaryKey"`
	Email           string  `json:"email" gorm:"size:191;uniqueIndex;not null"`
	FullName        string  `json:"fullName" gorm:"size:150;not null"`
	PasswordHash    *string `json:"-" gorm:"size:255"`
	Role            string  `json:"role" gorm:"size:20;not null;default:customer"`
	AuthProvider    string  `json:"authProvider" gorm:"size:20;not null;default:credentials"`
	ProviderSubject *string `json:"-" gorm:"size:191;index"`
	AvatarURL       *string `json:"avatarUrl,omitempty" gorm:"size:500"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Addresses []Address `json:"addresses,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// IsAdmin reports whether the user may use the back office.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Address is the model for the 'addresses' table.
type Address struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	UserID     int64     `json:"userId" gorm:"index;not null"`
	FullName   string    `json:"fullName" gorm:"size:150;not null"`
	Phone      string    `json:"phone" gorm:"size:30;not null"`
	Line1      string    `json:"line1" gorm:"size:255;not null"`
	Line2      string    `json:"line2,omitempty" gorm:"size:255"`
	City       string    `json:"city" gorm:"size:100;not null"`
	Province   string    `json:"province" gorm:"size:100"`
	PostalCode string    `json:"postalCode,omitempty" gorm:"size:20"`
	Country    string    `json:"country" gorm:"size:80;not null;default:Nepal"`
	IsDefault  bool      `json:"isDefault" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Lines returns the address as printable lines, skipping empty parts.
func (a *Address) Lines() []string {
	lines := []string{a.FullName, a.Line1}
	if a.Line2 != "" {
		lines = append(lines, a.Line2)
	}
	cityLine := a.City
	if a.Province != "" {
		cityLine += ", " + a.Province
	}
	if a.PostalCode != "" {
		cityLine += " " + a.PostalCode
	}
	lines = append(lines, cityLine, a.Country)
	if a.Phone != "" {
		lines = append(lines, "Phone: "+a.Phone)
	}
	return lines
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
