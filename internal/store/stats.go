package store

import (
	"context"
	"fmt"

	"github.com/antiquenepal/storefront/internal/models"
)

// DashboardStats gathers the admin KPIs with plain SQL over the shared pool.
func (s *Store) DashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error) {
	stats := &DashboardStats{OrdersByStatus: make(map[string]int64, len(models.OrderStatuses))}
	for _, st := range models.OrderStatuses {
		stats.OrdersByStatus[st] = 0
	}

	// 1. Orders per status
	rows, err := s.sql.QueryContext(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan order counts: %w", err)
		}
		stats.OrdersByStatus[status] = n
		stats.TotalOrders += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 2. Revenue: paid or delivered orders that were not cancelled
	queryRevenue := `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE status <> 'cancelled' AND (payment_status = 'paid' OR status = 'delivered')
	`
	if err := s.sql.QueryRowContext(ctx, queryRevenue).Scan(&stats.Revenue); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	// 3. Active products
	if err := s.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE is_active = TRUE").Scan(&stats.ActiveProducts); err != nil {
		return nil, fmt.Errorf("failed to count active products: %w", err)
	}

	// 4. Low stock variants of active products
	queryLowStock := `
		SELECT COUNT(*)
		FROM product_variants pv
		JOIN products p ON p.id = pv.product_id
		WHERE p.is_active = TRUE AND pv.stock <= ?
	`
	if err := s.sql.QueryRowContext(ctx, queryLowStock, lowStockThreshold).Scan(&stats.LowStockVariants); err != nil {
		return nil, fmt.Errorf("failed to count low stock: %w", err)
	}

	// 5. Customers
	if err := s.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = ?", models.RoleCustomer).Scan(&stats.Customers); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	// 6. Five latest orders
	err = s.db.WithContext(ctx).Preload("User").Order("created_at DESC, id DESC").Limit(5).Find(&stats.RecentOrders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}
	return stats, nil
}
