package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/antiquenepal/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Wishlist ---

func (s *Store) ListWishlist(ctx context.Context, userID int64) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := s.db.WithContext(ctx).
		Preload("Product.Images", orderedByPosition).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}

func ensureActiveProduct(tx *gorm.DB, productID int64) error {
	var p models.Product
	if err := tx.Select("id", "is_active").First(&p, productID).Error; err != nil {
		return translateError(err)
	}
	if !p.IsActive {
		return ErrInactiveProduct
	}
	return nil
}

// AddToWishlist is idempotent.
func (s *Store) AddToWishlist(ctx context.Context, userID, productID int64) error {
	db := s.db.WithContext(ctx)
	if err := ensureActiveProduct(db, productID); err != nil {
		return err
	}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.WishlistItem{UserID: userID, ProductID: productID}).Error
	return translateError(err)
}

func (s *Store) RemoveFromWishlist(ctx context.Context, userID, productID int64) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleWishlist adds the product when absent and removes it otherwise. It
// reports whether the product is on the wishlist afterwards.
func (s *Store) ToggleWishlist(ctx context.Context, userID, productID int64) (bool, error) {
	var added bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		if err := ensureActiveProduct(tx, productID); err != nil {
			return err
		}
		added = true
		return tx.Create(&models.WishlistItem{UserID: userID, ProductID: productID}).Error
	})
	if err != nil {
		return false, translateError(err)
	}
	return added, nil
}

// --- Reviews ---

func (s *Store) reviewsWithAuthor(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Review{}).
		Select("reviews.*, users.full_name AS reviewer_name").
		Joins("JOIN users ON users.id = reviews.user_id")
}

func (s *Store) ListReviews(ctx context.Context, productID int64, p Page) ([]models.Review, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []models.Review
	err := s.reviewsWithAuthor(ctx).
		Where("reviews.product_id = ?", productID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Offset(p.Offset()).
		Limit(p.Size).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (s *Store) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	var r models.Review
	if err := s.reviewsWithAuthor(ctx).Where("reviews.id = ?", id).First(&r).Error; err != nil {
		return nil, translateError(err)
	}
	return &r, nil
}

// CreateReview stores one review per user and product.
func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Notifications ---

func (s *Store) AddNotification(ctx context.Context, userID int64, message, link string) error {
	n := models.Notification{UserID: userID, Message: message}
	if link != "" {
		n.Link = &link
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// ListNotifications returns unread notifications first, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	var ns []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_read ASC, created_at DESC, id DESC").
		Limit(limit).
		Find(&ns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return ns, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	var n models.Notification
	err := s.db.WithContext(ctx).Select("id").Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&n).Update("is_read", true).Error
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (s *Store) SaveAssistantLog(ctx context.Context, l *models.AssistantLog) error {
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("failed to save assistant log: %w", err)
	}
	return nil
}
