package model

// Availability is the stock label the backend attaches to a product.
type Availability string

const (
	AvailabilityInStock    Availability = "in-stock"
	AvailabilityLowStock   Availability = "low-stock"
	AvailabilityOutOfStock Availability = "out-of-stock"
)

// Product represents a catalogue product as served by the backend.
type Product struct {
	ID           string       `json:"_id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Category     string       `json:"category,omitempty"`
	Price        float64      `json:"price"`
	Unit         string       `json:"unit"`
	Quantity     int          `json:"quantity"`
	Image        string       `json:"image,omitempty"`
	Supplier     string       `json:"supplier,omitempty"`
	Farm         string       `json:"farm,omitempty"`
	Availability Availability `json:"availability"`
}
