package cart

import "storefront/internal/model"

// UnknownStock disables clamping when the available quantity is not known.
const UnknownStock = -1

// AddOrIncrement adds delta units of a product. An existing line grows by
// delta, capped at available, but a positive delta never lowers it; a line
// that ends up at zero or below is removed. A new line starts at delta
// capped at available, never below one. A non-positive delta for a product
// that is not in the cart does nothing.
func AddOrIncrement(c model.Cart, snapshot model.ProductSnapshot, delta, available int) model.Cart {
	lines := cloneLines(c.Lines)

	for i, line := range lines {
		if line.ProductID != snapshot.ProductID {
			continue
		}

		quantity := line.Quantity + delta
		if available >= 0 && quantity > available {
			quantity = available
		}
		if delta > 0 && quantity < line.Quantity {
			quantity = line.Quantity
		}
		if quantity <= 0 {
			return model.Cart{Lines: append(lines[:i], lines[i+1:]...)}
		}
		lines[i].Quantity = quantity
		return model.Cart{Lines: lines}
	}

	if delta <= 0 {
		return model.Cart{Lines: lines}
	}

	quantity := delta
	if available >= 0 && quantity > available {
		quantity = available
	}
	if quantity < 1 {
		quantity = 1
	}

	lines = append(lines, model.CartLine{
		ProductID: snapshot.ProductID,
		Name:      snapshot.Name,
		Farm:      snapshot.Farm,
		Image:     snapshot.Image,
		UnitPrice: snapshot.UnitPrice,
		Unit:      snapshot.Unit,
		Quantity:  quantity,
	})
	return model.Cart{Lines: lines}
}

// SetQuantity replaces a line's quantity. Non-positive quantities are
// ignored; callers that want the line gone use Remove.
func SetQuantity(c model.Cart, productID string, quantity int) model.Cart {
	lines := cloneLines(c.Lines)
	if quantity <= 0 {
		return model.Cart{Lines: lines}
	}

	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
		}
	}
	return model.Cart{Lines: lines}
}

// Remove drops the line for productID.
func Remove(c model.Cart, productID string) model.Cart {
	lines := make([]model.CartLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.ProductID != productID {
			lines = append(lines, line)
		}
	}
	return model.Cart{Lines: lines}
}

// normalize enforces the cart rules on data read back from storage:
// lines without a product id or with quantity below one are dropped, and
// repeated product ids are folded into the first occurrence.
func normalize(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, line := range lines {
		if line.ProductID == "" || line.Quantity < 1 {
			continue
		}
		if i, ok := index[line.ProductID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out
}

func cloneLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, len(lines))
	copy(out, lines)
	return out
}
