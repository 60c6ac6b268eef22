package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translateError(fmt.Errorf("wrapped: %w", gorm.ErrRecordNotFound)), ErrNotFound)
	assert.ErrorIs(t, translateError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), ErrDuplicate)
	assert.ErrorIs(t, translateError(&mysql.MySQLError{Number: 1452}), ErrInvalidInput)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
	assert.ErrorIs(t, translateError(ErrEmptyCart), ErrEmptyCart)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 1, Size: 12}.Offset())
	assert.Equal(t, 24, Page{Number: 3, Size: 12}.Offset())
	assert.Equal(t, 0, Page{Number: 0, Size: 12}.Offset())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%thangka%", likePattern(" thangka "))
	assert.Equal(t, `%50\% off\_now%`, likePattern("50% off_now"))
}

func TestNewOrderNumber(t *testing.T) {
	n := NewOrderNumber()
	assert.True(t, strings.HasPrefix(n, "AN-"))
	assert.Len(t, n, 11)
	assert.Equal(t, strings.ToUpper(n), n)
	assert.NotEqual(t, n, NewOrderNumber())
}

func TestNormalizeImages(t *testing.T) {
	imgs := []models.ProductImage{{URL: "a"}, {URL: "b"}}
	normalizeImages(imgs)
	assert.True(t, imgs[0].IsPrimary)
	assert.False(t, imgs[1].IsPrimary)

	imgs = []models.ProductImage{{URL: "a"}, {URL: "b", IsPrimary: true}, {URL: "c", IsPrimary: true}}
	normalizeImages(imgs)
	assert.False(t, imgs[0].IsPrimary)
	assert.True(t, imgs[1].IsPrimary)
	assert.False(t, imgs[2].IsPrimary)

	normalizeImages(nil)
}
