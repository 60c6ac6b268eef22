// Package store is the gorm-backed persistence layer of the storefront.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

// Store implements every *Store interface of this package over one gorm
// handle. Aggregate reports use the raw pool underneath it.
type Store struct {
	db  *gorm.DB
	sql *sql.DB
	log *slog.Logger
}

var (
	_ CatalogStore      = (*Store)(nil)
	_ CartStore         = (*Store)(nil)
	_ OrderStore        = (*Store)(nil)
	_ UserStore         = (*Store)(nil)
	_ WishlistStore     = (*Store)(nil)
	_ ReviewStore       = (*Store)(nil)
	_ ContentStore      = (*Store)(nil)
	_ NotificationStore = (*Store)(nil)
)

func New(db *gorm.DB, log *slog.Logger) (*Store, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql pool from gorm: %w", err)
	}
	return &Store{db: db, sql: sqlDB, log: log.With("component", "store")}, nil
}

// likePattern escapes LIKE wildcards in user input and wraps it in %.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

// orderedByPosition is a preload scope for images and links.
func orderedByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func orderedByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
