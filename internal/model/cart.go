package model

// CartLine is one product's presence in a cart. Everything but Quantity is a
// snapshot taken when the product was added.
type CartLine struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Farm      string  `json:"farm"`
	Image     string  `json:"image"`
	UnitPrice float64 `json:"price"`
	Unit      string  `json:"unit"`
	Quantity  int     `json:"quantity"`
}

// Cart is an ordered collection of lines owned by one identity.
type Cart struct {
	Lines []CartLine `json:"items"`
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line for productID, if present.
func (c Cart) Line(productID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

// ProductSnapshot holds the display fields copied into a new cart line.
type ProductSnapshot struct {
	ProductID string
	Name      string
	Farm      string
	Image     string
	UnitPrice float64
	Unit      string
}

// SnapshotOf copies the cart-relevant fields of a product.
func SnapshotOf(p Product) ProductSnapshot {
	return ProductSnapshot{
		ProductID: p.ID,
		Name:      p.Name,
		Farm:      p.Farm,
		Image:     p.Image,
		UnitPrice: p.Price,
		Unit:      p.Unit,
	}
}
