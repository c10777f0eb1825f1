// Package events publishes checkout and payment lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicOrderPlaced      = "checkout.order_placed"
	TopicPaymentInitiated = "checkout.payment_initiated"
	TopicPaymentVerified  = "payment.verified"
)

// Publisher sends an event to a topic. key selects the partition.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Event is the envelope written for every published event.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh id.
func NewEvent(eventType string, data any) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// OrderPlaced is published after a direct order is accepted.
type OrderPlaced struct {
	OrderID     string  `json:"orderId"`
	IdentityKey string  `json:"identityKey"`
	Total       float64 `json:"total"`
	ItemCount   int     `json:"itemCount"`
	Method      string  `json:"paymentMethod"`
}

// PaymentInitiated is published after a gateway payment is started.
type PaymentInitiated struct {
	OrderID     string  `json:"orderId"`
	IdentityKey string  `json:"identityKey"`
	Pidx        string  `json:"pidx"`
	Total       float64 `json:"total"`
}

// PaymentVerified is published once the backend answers a verification.
type PaymentVerified struct {
	OrderID     string `json:"orderId"`
	IdentityKey string `json:"identityKey"`
	Pidx        string `json:"pidx"`
	Paid        bool   `json:"paid"`
	Status      string `json:"status"`
}

// NopPublisher drops every event.
type NopPublisher struct{}

// PublishEvent implements Publisher.
func (NopPublisher) PublishEvent(context.Context, string, string, any) error {
	return nil
}
