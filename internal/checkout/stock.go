package checkout

import (
	"context"
	"fmt"

	"storefront/internal/backend"
	"storefront/internal/model"
)

// stockItem is a requested quantity of one product.
type stockItem struct {
	ProductID string
	Name      string
	Quantity  int
}

func itemsFromCart(c model.Cart) []stockItem {
	items := make([]stockItem, len(c.Lines))
	for i, line := range c.Lines {
		items[i] = stockItem{ProductID: line.ProductID, Name: line.Name, Quantity: line.Quantity}
	}
	return items
}

func itemsFromDraft(d model.OrderDraft) []stockItem {
	items := make([]stockItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = stockItem{ProductID: item.ProductID, Name: item.Name, Quantity: item.Quantity}
	}
	return items
}

// validateStock fetches the catalogue once and checks every item in order.
// The first failing item rejects the whole set.
func validateStock(ctx context.Context, client backend.Client, items []stockItem) error {
	products, err := client.ListProducts(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return model.NewDomainError(model.ErrCodeProductNotFound,
				fmt.Sprintf("Product not found: %s", item.Name))
		}

		if product.Availability == model.AvailabilityOutOfStock || product.Quantity == 0 {
			return model.NewDomainError(model.ErrCodeOutOfStock,
				fmt.Sprintf("%s is out of stock", product.Name))
		}

		if product.Quantity < item.Quantity {
			return model.NewDomainError(model.ErrCodeInsufficientStock,
				fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d",
					product.Name, product.Quantity, item.Quantity))
		}
	}

	return nil
}
