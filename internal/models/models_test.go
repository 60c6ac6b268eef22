package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePrice(t *testing.T) {
	base := decimal.RequireFromString("1200.00")

	plain := ProductVariant{}
	assert.True(t, plain.EffectivePrice(base).Equal(base))

	override := ProductVariant{PriceOverride: decimal.NewNullDecimal(decimal.RequireFromString("950.50"))}
	assert.Equal(t, "950.5", override.EffectivePrice(base).String())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Singing Bowl / Bronze / Large", (&ProductVariant{Name: "Singing Bowl", Color: "Bronze", Size: "Large"}).DisplayName())
	assert.Equal(t, "Red", (&ProductVariant{Color: "Red"}).DisplayName())
	assert.Equal(t, "Standard", (&ProductVariant{Name: "Standard"}).DisplayName())
}

func TestPrimaryImage(t *testing.T) {
	p := Product{}
	assert.Nil(t, p.PrimaryImage())

	p.Images = []ProductImage{{ID: 1, URL: "a.jpg"}, {ID: 2, URL: "b.jpg", IsPrimary: true}}
	assert.Equal(t, int64(2), p.PrimaryImage().ID)

	p.Images[1].IsPrimary = false
	assert.Equal(t, int64(1), p.PrimaryImage().ID)
}

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		status string
		want   StatusBadge
	}{
		{OrderStatusPending, StatusBadge{"Pending", "warning"}},
		{OrderStatusProcessing, StatusBadge{"Processing", "info"}},
		{OrderStatusShipped, StatusBadge{"Shipped", "info"}},
		{OrderStatusDelivered, StatusBadge{"Delivered", "success"}},
		{OrderStatusCancelled, StatusBadge{"Cancelled", "danger"}},
		{"on-hold", StatusBadge{"on-hold", "neutral"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BadgeFor(tt.status), tt.status)
	}
}

func TestIsPaymentOverdue(t *testing.T) {
	cutoff := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := cutoff.Add(-time.Hour)

	base := Order{Status: OrderStatusPending, PaymentStatus: PaymentUnpaid, PaymentMethod: PaymentMethodEsewa, CreatedAt: old}
	assert.True(t, base.IsPaymentOverdue(cutoff))

	paid := base
	paid.PaymentStatus = PaymentPaid
	assert.False(t, paid.IsPaymentOverdue(cutoff))

	cancelled := base
	cancelled.Status = OrderStatusCancelled
	assert.False(t, cancelled.IsPaymentOverdue(cutoff))

	cod := base
	cod.PaymentMethod = PaymentMethodCOD
	assert.False(t, cod.IsPaymentOverdue(cutoff))

	recent := base
	recent.CreatedAt = cutoff.Add(time.Minute)
	assert.False(t, recent.IsPaymentOverdue(cutoff))
}

func TestPassword(t *testing.T) {
	var p Password
	require.NoError(t, p.Set("namaste-123"))

	ok, err := p.Matches("namaste-123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Matches("wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddressLines(t *testing.T) {
	a := Address{FullName: "Sita Sharma", Line1: "Thamel Marg 12", City: "Kathmandu", Province: "Bagmati", PostalCode: "44600", Country: "Nepal", Phone: "9800000000"}
	assert.Equal(t, []string{
		"Sita Sharma",
		"Thamel Marg 12",
		"Kathmandu, Bagmati 44600",
		"Nepal",
		"Phone: 9800000000",
	}, a.Lines())
}
