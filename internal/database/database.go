package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/antiquenepal/storefront/internal/models"
	_ "github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDBWithDSN creates and configures a connection pool for the given DSN.
// It is used for both the primary and the read-only pools.
func OpenDBWithDSN(ctx context.Context, dsn string) (*sql.DB, error) {
	// 1. Open a new connection pool.
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// 2. Configure the connection pool settings.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 3. Ping the database to verify the connection.
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// OpenGorm wraps an existing pool with gorm so the ORM and raw SQL share
// the same connections.
func OpenGorm(db *sql.DB, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise gorm: %w", err)
	}
	return gdb, nil
}

// AllModels lists every table of the storefront schema in dependency order.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.FooterContent{},
		&models.FooterLink{},
		&models.SiteSetting{},
		&models.Notification{},
		&models.AssistantLog{},
	}
}

// Migrate brings the schema up to date.
func Migrate(gdb *gorm.DB, log *slog.Logger) error {
	log.Info("running database migrations")
	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	log.Info("database migration complete")
	return nil
}
