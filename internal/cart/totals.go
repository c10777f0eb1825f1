package cart

import (
	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// LineTotal is unit price times quantity.
func LineTotal(line model.CartLine) decimal.Decimal {
	return decimal.NewFromFloat(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// Subtotal sums the line totals of c.
func Subtotal(c model.Cart) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(LineTotal(line))
	}
	return subtotal
}

// Totals computes the order summary of c with a flat delivery fee.
func Totals(c model.Cart, deliveryFee float64) model.OrderSummary {
	subtotal := Subtotal(c)
	fee := decimal.NewFromFloat(deliveryFee)

	return model.OrderSummary{
		Subtotal:    subtotal.InexactFloat64(),
		DeliveryFee: fee.InexactFloat64(),
		Total:       subtotal.Add(fee).InexactFloat64(),
	}
}
