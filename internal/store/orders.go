package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/pricing"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewOrderNumber returns a customer-facing reference like AN-1A2B3C4D.
func NewOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "AN-" + strings.ToUpper(id[:8])
}

// PlaceOrder turns the user's cart into an order. Stock is checked and
// decremented under row locks and the cart is emptied in the same
// transaction.
func (s *Store) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if !slices.Contains([]string{models.PaymentMethodCOD, models.PaymentMethodEsewa, models.PaymentMethodKhalti}, in.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, in.PaymentMethod)
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. --- Address must belong to the user ---
		var addr models.Address
		if err := tx.Where("id = ? AND user_id = ?", in.AddressID, in.UserID).First(&addr).Error; err != nil {
			return translateError(err)
		}

		// 2. --- Cart lines ---
		var items []models.CartItem
		err := tx.Joins("JOIN carts ON carts.id = cart_items.cart_id").
			Where("carts.user_id = ?", in.UserID).
			Order("cart_items.id ASC").
			Find(&items).Error
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		// 3. --- Lock variants ---
		ids := make([]int64, len(items))
		for i, it := range items {
			ids[i] = it.VariantID
		}
		var variants []models.ProductVariant
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Product").
			Where("id IN ?", ids).
			Find(&variants).Error
		if err != nil {
			return fmt.Errorf("failed to lock variants: %w", err)
		}
		byID := make(map[int64]*models.ProductVariant, len(variants))
		for i := range variants {
			byID[variants[i].ID] = &variants[i]
		}

		// 4. --- Snapshot lines ---
		lines := make([]pricing.Line, 0, len(items))
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			v, ok := byID[it.VariantID]
			if !ok || v.Product == nil || !v.Product.IsActive {
				return fmt.Errorf("%w: variant %d", ErrInactiveProduct, it.VariantID)
			}
			if v.Stock < it.Quantity {
				return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, v.SKU, v.Stock)
			}

			unit := v.EffectivePrice(v.Product.Price)
			line := pricing.Line{UnitPrice: unit, Quantity: it.Quantity}
			lines = append(lines, line)

			variantID, productID := v.ID, v.ProductID
			orderItems = append(orderItems, models.OrderItem{
				VariantID:   &variantID,
				ProductID:   &productID,
				ProductName: v.Product.Name,
				VariantName: v.DisplayName(),
				SKU:         v.SKU,
				UnitPrice:   unit,
				Quantity:    it.Quantity,
				LineTotal:   line.Total(),
			})
		}

		// 5. --- Totals ---
		summary := in.Pricing.Quote(lines)

		// 6. --- Create order ---
		order = models.Order{
			OrderNumber:     NewOrderNumber(),
			UserID:          in.UserID,
			AddressID:       &addr.ID,
			Status:          models.OrderStatusPending,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   models.PaymentUnpaid,
			ShippingName:    addr.FullName,
			ShippingPhone:   addr.Phone,
			ShippingAddress: strings.Join(addr.Lines(), "\n"),
			Subtotal:        summary.Subtotal,
			ShippingFee:     summary.Shipping,
			Tax:             summary.Tax,
			Total:           summary.Total,
			Notes:           strings.TrimSpace(in.Notes),
			Items:           orderItems,
		}
		if err := tx.Create(&order).Error; err != nil {
			return translateError(err)
		}

		// 7. --- Decrement stock ---
		for _, it := range items {
			err := tx.Model(&models.ProductVariant{}).
				Where("id = ?", it.VariantID).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}

		// 8. --- Empty the cart ---
		ids = ids[:0]
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Badge = models.BadgeFor(order.Status)
	return &order, nil
}

func (s *Store) ListUserOrders(ctx context.Context, userID int64, p Page) ([]models.Order, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", orderedByID).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(p.Offset()).
		Limit(p.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *Store) GetUserOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", orderedByID).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

func (s *Store) filterOrders(ctx context.Context, f OrderFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Order{}).Joins("JOIN users ON users.id = orders.user_id")
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.Search != "" {
		like := likePattern(f.Search)
		q = q.Where("(orders.order_number LIKE ? OR users.email LIKE ?)", like, like)
	}
	return q
}

func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	var total int64
	if err := s.filterOrders(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := s.filterOrders(ctx, f).
		Select("orders.*").
		Preload("User").
		Order("orders.created_at DESC, orders.id DESC").
		Offset(f.Page.Offset()).
		Limit(f.Page.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Items", orderedByID).
		First(&o, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

// adjustStock puts an order's quantities back on the shelf (sign +1) or
// takes them off again (sign -1).
func adjustStock(tx *gorm.DB, orderID int64, sign int) error {
	var items []models.OrderItem
	if err := tx.Where("order_id = ? AND variant_id IS NOT NULL", orderID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	for _, it := range items {
		if sign < 0 {
			var v models.ProductVariant
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id", "sku", "stock").First(&v, *it.VariantID).Error
			if err != nil {
				// Variant deleted since purchase; nothing to take back.
				continue
			}
			if v.Stock < it.Quantity {
				return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, v.SKU, v.Stock)
			}
		}
		err := tx.Model(&models.ProductVariant{}).
			Where("id = ?", *it.VariantID).
			UpdateColumn("stock", gorm.Expr("stock + ?", sign*it.Quantity)).Error
		if err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}
	}
	return nil
}

func lockOrder(tx *gorm.DB, id int64) (*models.Order, error) {
	var o models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

// applyStatus moves stock when a locked order enters or leaves "cancelled"
// and writes the new status. A status equal to the current one writes
// nothing.
func applyStatus(tx *gorm.DB, o *models.Order, status string) error {
	if o.Status == status {
		return nil
	}

	switch {
	case status == models.OrderStatusCancelled:
		if err := adjustStock(tx, o.ID, +1); err != nil {
			return err
		}
	case o.Status == models.OrderStatusCancelled:
		if err := adjustStock(tx, o.ID, -1); err != nil {
			return err
		}
	}

	if err := tx.Model(o).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// UpdateOrderStatus writes any known status. Entering "cancelled" restores
// stock and leaving it takes the stock again. It also returns the status the
// order had under the row lock, so callers can tell whether anything changed.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, string, error) {
	if !slices.Contains(models.OrderStatuses, status) {
		return nil, "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	var previous string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		previous = o.Status
		return applyStatus(tx, o, status)
	})
	if err != nil {
		return nil, "", err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return order, previous, nil
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	if !slices.Contains([]string{models.PaymentUnpaid, models.PaymentPaid, models.PaymentRefunded}, status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, status)
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("payment_status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", res.Error)
	}
	return s.GetOrder(ctx, id)
}

// CancelOverdueOrders cancels unpaid online-payment orders placed before the
// cutoff. Each order is re-checked under its row lock and cancelled in its own
// transaction; orders paid or changed since the scan are skipped. Only the
// orders actually cancelled are returned.
func (s *Store) CancelOverdueOrders(ctx context.Context, placedBefore time.Time) ([]models.Order, error) {
	var overdue []models.Order
	err := s.db.WithContext(ctx).
		Where("status = ? AND payment_status = ? AND payment_method IN ? AND created_at < ?",
			models.OrderStatusPending, models.PaymentUnpaid,
			[]string{models.PaymentMethodEsewa, models.PaymentMethodKhalti}, placedBefore).
		Order("id ASC").
		Find(&overdue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue orders: %w", err)
	}

	cancelled := make([]models.Order, 0, len(overdue))
	for _, candidate := range overdue {
		var done *models.Order
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			o, err := lockOrder(tx, candidate.ID)
			if err != nil {
				return err
			}
			if !o.IsPaymentOverdue(placedBefore) {
				return nil
			}
			if err := applyStatus(tx, o, models.OrderStatusCancelled); err != nil {
				return err
			}
			o.Status = models.OrderStatusCancelled
			done = o
			return nil
		})
		if err != nil {
			s.log.Error("failed to cancel overdue order", "order", candidate.OrderNumber, "error", err)
			continue
		}
		if done == nil {
			s.log.Info("overdue order changed before cancellation, skipped", "order", candidate.OrderNumber)
			continue
		}
		done.Badge = models.BadgeFor(done.Status)
		cancelled = append(cancelled, *done)
	}
	return cancelled, nil
}
