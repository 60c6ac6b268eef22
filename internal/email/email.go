// Package email sends customer mail.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/antiquenepal/storefront/internal/models"
)

// Mailer delivers one message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer is our placeholder sender. Instead of sending a real email it
// writes the message to the structured log.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log.With("component", "email")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.InfoContext(ctx, "email (placeholder)", "to", to, "subject", subject, "body", body)
	return nil
}

// OrderConfirmation builds the subject and body sent after checkout.
// paymentWindow is how long an online payment may stay open.
func OrderConfirmation(shopName, currency string, paymentWindow time.Duration, o *models.Order) (string, string) {
	subject := fmt.Sprintf("Your %s order %s", shopName, o.OrderNumber)

	var b strings.Builder
	fmt.Fprintf(&b, "Namaste %s,\n\n", o.ShippingName)
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", o.OrderNumber)
	for _, it := range o.Items {
		name := it.ProductName
		if it.VariantName != "" {
			name += " (" + it.VariantName + ")"
		}
		fmt.Fprintf(&b, "  %d x %s  %s %s\n", it.Quantity, name, currency, it.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s %s\n", currency, o.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "Shipping: %s %s\n", currency, o.ShippingFee.StringFixed(2))
	fmt.Fprintf(&b, "Tax: %s %s\n", currency, o.Tax.StringFixed(2))
	fmt.Fprintf(&b, "Total: %s %s\n\n", currency, o.Total.StringFixed(2))
	fmt.Fprintf(&b, "Payment: %s\n", strings.ToUpper(o.PaymentMethod))
	if models.IsOnlinePayment(o.PaymentMethod) {
		fmt.Fprintf(&b, "Please complete your online payment within %s or the order will be cancelled.\n", formatWindow(paymentWindow))
	}
	return subject, b.String()
}

func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	}
	return fmt.Sprintf("%d minutes", int(d.Round(time.Minute)/time.Minute))
}

// SendOrderConfirmation is a helper that uses the main Send function.
func SendOrderConfirmation(ctx context.Context, m Mailer, to, shopName, currency string, paymentWindow time.Duration, o *models.Order) error {
	subject, body := OrderConfirmation(shopName, currency, paymentWindow, o)
	return m.Send(ctx, to, subject, body)
}
