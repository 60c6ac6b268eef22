// Package pricing computes cart and order totals.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy holds the shop-wide shipping and tax rules.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
	Currency              string
}

// NewPolicy parses the configured decimal strings.
func NewPolicy(threshold, fee, taxRate, currency string) (Policy, error) {
	t, err := decimal.NewFromString(threshold)
	if err != nil {
		return Policy{}, fmt.Errorf("free shipping threshold: %w", err)
	}
	f, err := decimal.NewFromString(fee)
	if err != nil {
		return Policy{}, fmt.Errorf("flat shipping fee: %w", err)
	}
	r, err := decimal.NewFromString(taxRate)
	if err != nil {
		return Policy{}, fmt.Errorf("tax rate: %w", err)
	}
	return Policy{FreeShippingThreshold: t, FlatShippingFee: f, TaxRate: r, Currency: currency}, nil
}

// Line is one priced cart or order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Summary is the priced breakdown shown in the cart and stored on orders.
type Summary struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	Shipping              decimal.Decimal `json:"shipping"`
	Tax                   decimal.Decimal `json:"tax"`
	Total                 decimal.Decimal `json:"total"`
	ItemCount             int             `json:"itemCount"`
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	AmountToFreeShipping  decimal.Decimal `json:"amountToFreeShipping"`
	Currency              string          `json:"currency"`
}

// Quote prices a list of lines.
func (p Policy) Quote(lines []Line) Summary {
	s := Summary{
		Subtotal:              decimal.Zero,
		Shipping:              decimal.Zero,
		Tax:                   decimal.Zero,
		FreeShippingThreshold: p.FreeShippingThreshold,
		AmountToFreeShipping:  decimal.Zero,
		Currency:              p.Currency,
	}

	for _, l := range lines {
		s.Subtotal = s.Subtotal.Add(l.Total())
		s.ItemCount += l.Quantity
	}

	if s.ItemCount > 0 && s.Subtotal.LessThan(p.FreeShippingThreshold) {
		s.Shipping = p.FlatShippingFee
		s.AmountToFreeShipping = p.FreeShippingThreshold.Sub(s.Subtotal)
	}

	s.Tax = s.Subtotal.Mul(p.TaxRate).Round(2)
	s.Total = s.Subtotal.Add(s.Shipping).Add(s.Tax)
	return s
}
