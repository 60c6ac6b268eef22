package store

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicate         = errors.New("duplicate resource")
	ErrInvalidInput      = errors.New("invalid input data")
	ErrInsufficientStock = errors.New("not enough stock available")
	ErrInactiveProduct   = errors.New("product is not available")
	ErrEmptyCart         = errors.New("cart is empty")
)

const (
	mysqlDuplicateEntry = 1062
	mysqlNoReferenced   = 1452
)

// translateError maps driver and ORM errors onto the package sentinels.
// Errors that are already sentinels pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return ErrDuplicate
		case mysqlNoReferenced:
			return ErrInvalidInput
		}
	}
	return err
}
