package model

import "time"

// OrderStatus is the fulfilment status of a backend order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is the payment state of a backend order.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusFailed PaymentStatus = "failed"
)

// PaymentMethod is the way a customer chose to pay at checkout.
type PaymentMethod string

const (
	// PaymentMethodCOD places the order directly, paid on delivery.
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodKhalti PaymentMethod = "khalti"
	PaymentMethodEsewa  PaymentMethod = "esewa"
)

// OrderItem represents a line item in an order or order draft.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

// OrderDraft is the not-yet-committed order assembled at checkout.
// It doubles as the order creation payload sent to the backend.
type OrderDraft struct {
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
}

// OrderSummary holds the computed totals shown alongside a draft.
type OrderSummary struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
}

// Order represents an order owned by the backend.
type Order struct {
	ID               string        `json:"_id"`
	UserID           string        `json:"userId,omitempty"`
	Items            []OrderItem   `json:"items"`
	Total            float64       `json:"total"`
	Status           OrderStatus   `json:"status"`
	PaymentMethod    PaymentMethod `json:"paymentMethod,omitempty"`
	PaymentStatus    PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentReference string        `json:"paymentReference,omitempty"`
	PaidAt           *time.Time    `json:"paidAt,omitempty"`
	CustomerName     string        `json:"customerName"`
	CustomerEmail    string        `json:"customerEmail"`
	Phone            string        `json:"phone"`
	Address          string        `json:"address"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// DeliveryInfo is the contact and shipping data collected at checkout.
type DeliveryInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
