package checkout

import (
	"storefront/internal/cart"
	"storefront/internal/model"
)

// BuildDraft assembles the order draft and its summary from a cart and the
// delivery details. The draft total is the grand total.
func BuildDraft(c model.Cart, info model.DeliveryInfo, deliveryFee float64) (model.OrderDraft, model.OrderSummary) {
	items := make([]model.OrderItem, len(c.Lines))
	for i, line := range c.Lines {
		items[i] = model.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
			Total:     cart.LineTotal(line).InexactFloat64(),
		}
	}

	summary := cart.Totals(c, deliveryFee)

	return model.OrderDraft{
		Items:         items,
		Total:         summary.Total,
		CustomerName:  info.Name,
		CustomerEmail: info.Email,
		Phone:         info.Phone,
		Address:       info.Address,
	}, summary
}
