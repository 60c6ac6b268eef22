package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antiquenepal/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// UpsertOAuthUser finds the Google account by subject, then by email (linking
// the subject to an existing credential account), and creates a customer
// otherwise.
func (s *Store) UpsertOAuthUser(ctx context.Context, subject, email, fullName, avatarURL string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if subject == "" || email == "" {
		return nil, fmt.Errorf("%w: oauth profile needs a subject and an email", ErrInvalidInput)
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. --- Known subject ---
		err := tx.Where("provider_subject = ?", subject).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 2. --- Existing email: link ---
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("email = ?", email).First(&user).Error
		if err == nil {
			updates := map[string]any{"provider_subject": subject}
			if user.AvatarURL == nil && avatarURL != "" {
				updates["avatar_url"] = avatarURL
			}
			return tx.Model(&user).Updates(updates).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 3. --- New customer ---
		user = models.User{
			Email:           email,
			FullName:        fullName,
			Role:            models.RoleCustomer,
			AuthProvider:    models.ProviderGoogle,
			ProviderSubject: &subject,
		}
		if avatarURL != "" {
			user.AvatarURL = &avatarURL
		}
		if user.FullName == "" {
			user.FullName = email
		}
		return tx.Omit(clause.Associations).Create(&user).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// --- Addresses ---

func (s *Store) ListAddresses(ctx context.Context, userID int64) ([]models.Address, error) {
	var addrs []models.Address
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("is_default DESC, id ASC").Find(&addrs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addrs, nil
}

func (s *Store) GetAddress(ctx context.Context, userID, id int64) (*models.Address, error) {
	var a models.Address
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, translateError(err)
	}
	return &a, nil
}

func clearDefaultAddress(tx *gorm.DB, userID int64) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// CreateAddress stores a new address. A user's first address becomes the
// default.
func (s *Store) CreateAddress(ctx context.Context, a *models.Address) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", a.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			a.IsDefault = true
		}
		if a.IsDefault && count > 0 {
			if err := clearDefaultAddress(tx, a.UserID); err != nil {
				return err
			}
		}
		return translateError(tx.Create(a).Error)
	})
}

func (s *Store) UpdateAddress(ctx context.Context, a *models.Address) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsDefault {
			if err := clearDefaultAddress(tx, a.UserID); err != nil {
				return err
			}
		}
		res := tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", a.ID, a.UserID).
			Updates(map[string]any{
				"full_name":   a.FullName,
				"phone":       a.Phone,
				"line1":       a.Line1,
				"line2":       a.Line2,
				"city":        a.City,
				"province":    a.Province,
				"postal_code": a.PostalCode,
				"country":     a.Country,
				"is_default":  a.IsDefault,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update address: %w", res.Error)
		}
		return nil
	})
}

// DeleteAddress removes an address and promotes the oldest remaining one
// when the default goes away.
func (s *Store) DeleteAddress(ctx context.Context, userID, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Address
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Delete(&a).Error; err != nil {
			return fmt.Errorf("failed to delete address: %w", err)
		}
		if !a.IsDefault {
			return nil
		}

		var next models.Address
		err := tx.Where("user_id = ?", userID).Order("id ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}

// SetDefaultAddress makes id the user's only default address.
func (s *Store) SetDefaultAddress(ctx context.Context, userID, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Address
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ? AND user_id = ?", id, userID).First(&a).Error
		if err != nil {
			return translateError(err)
		}
		if err := clearDefaultAddress(tx, userID); err != nil {
			return err
		}
		return tx.Model(&a).Update("is_default", true).Error
	})
}
