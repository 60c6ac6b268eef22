package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/antiquenepal/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetCart returns the user's cart with variants, products and images. A user
// without a cart gets an empty one.
func (s *Store) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", orderedByID).
		Preload("Items.Variant.Product.Images", orderedByPosition).
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &cart, nil
}

// getOrCreateCartID finds the user's cart ID, creating a new cart if one
// doesn't exist.
func getOrCreateCartID(tx *gorm.DB, userID int64) (int64, error) {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Cart{UserID: userID}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to create cart: %w", err)
	}

	var cart models.Cart
	if err := tx.Select("id").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return 0, fmt.Errorf("failed to find cart: %w", err)
	}
	return cart.ID, nil
}

// lockSellableVariant locks a variant row and checks its product is active.
func lockSellableVariant(tx *gorm.DB, variantID int64) (*models.ProductVariant, error) {
	var v models.ProductVariant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Product").First(&v, variantID).Error
	if err != nil {
		return nil, translateError(err)
	}
	if v.Product == nil || !v.Product.IsActive {
		return nil, ErrInactiveProduct
	}
	return &v, nil
}

// AddItem adds quantity of a variant to the cart, merging with an existing
// line. The combined quantity may not exceed stock.
func (s *Store) AddItem(ctx context.Context, userID, variantID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. --- Variant ---
		v, err := lockSellableVariant(tx, variantID)
		if err != nil {
			return err
		}

		// 2. --- Cart ---
		cartID, err := getOrCreateCartID(tx, userID)
		if err != nil {
			return err
		}

		// 3. --- Merge or insert ---
		var item models.CartItem
		err = tx.Where("cart_id = ? AND variant_id = ?", cartID, variantID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity > v.Stock {
				return ErrInsufficientStock
			}
			return tx.Create(&models.CartItem{CartID: cartID, VariantID: variantID, Quantity: quantity}).Error
		case err != nil:
			return fmt.Errorf("failed to find cart item: %w", err)
		}

		newQty := item.Quantity + quantity
		if newQty > v.Stock {
			return ErrInsufficientStock
		}
		return tx.Model(&item).Update("quantity", newQty).Error
	})
}

func findUserCartItem(tx *gorm.DB, userID, itemID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := tx.Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// SetItemQuantity replaces a line's quantity. Zero removes the line.
func (s *Store) SetItemQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findUserCartItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		if quantity == 0 {
			return tx.Delete(item).Error
		}

		v, err := lockSellableVariant(tx, item.VariantID)
		if err != nil {
			return err
		}
		if quantity > v.Stock {
			return ErrInsufficientStock
		}
		return tx.Model(item).Update("quantity", quantity).Error
	})
}

func (s *Store) userCartIDs(userID int64) *gorm.DB {
	return s.db.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
}

func (s *Store) RemoveItem(ctx context.Context, userID, itemID int64) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND cart_id IN (?)", itemID, s.userCartIDs(userID)).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	err := s.db.WithContext(ctx).
		Where("cart_id IN (?)", s.userCartIDs(userID)).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// CountItems sums the quantities in the user's cart.
func (s *Store) CountItems(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Row().Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return n, nil
}
