// Package checkout turns a cart into a stock-checked order, either placed
// directly or handed off to a payment gateway.
package checkout

import "fmt"

// State is the position of a checkout attempt in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateCollectingDeliveryInfo
	StateValidatingStock
	StateSubmitting
	StateInitiatingPayment
	StateSuccess
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:                   "idle",
	StateCollectingDeliveryInfo: "collecting_delivery_info",
	StateValidatingStock:        "validating_stock",
	StateSubmitting:             "submitting",
	StateInitiatingPayment:      "initiating_payment",
	StateSuccess:                "success",
	StateFailed:                 "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown checkout state: %q", text)
}

// Event drives a State to its successor.
type Event int

const (
	EventBegin Event = iota
	EventCancel
	EventDetailsAccepted
	EventMethodRejected
	EventStockConfirmedDirect
	EventStockConfirmedGateway
	EventStockRejected
	EventOrderAccepted
	EventOrderRejected
	EventPaymentConfirmed
	EventPaymentRejected
	EventReset
)

var eventNames = map[Event]string{
	EventBegin:                 "begin",
	EventCancel:                "cancel",
	EventDetailsAccepted:       "details_accepted",
	EventMethodRejected:        "method_rejected",
	EventStockConfirmedDirect:  "stock_confirmed_direct",
	EventStockConfirmedGateway: "stock_confirmed_gateway",
	EventStockRejected:         "stock_rejected",
	EventOrderAccepted:         "order_accepted",
	EventOrderRejected:         "order_rejected",
	EventPaymentConfirmed:      "payment_confirmed",
	EventPaymentRejected:       "payment_rejected",
	EventReset:                 "reset",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

type edge struct {
	from  State
	event Event
}

var transitions = map[edge]State{
	{StateIdle, EventBegin}: StateCollectingDeliveryInfo,

	{StateCollectingDeliveryInfo, EventCancel}:          StateIdle,
	{StateCollectingDeliveryInfo, EventDetailsAccepted}: StateValidatingStock,
	{StateCollectingDeliveryInfo, EventMethodRejected}:  StateFailed,

	{StateValidatingStock, EventStockConfirmedDirect}:  StateSubmitting,
	{StateValidatingStock, EventStockConfirmedGateway}: StateInitiatingPayment,
	{StateValidatingStock, EventStockRejected}:         StateFailed,

	{StateSubmitting, EventOrderAccepted}: StateSuccess,
	{StateSubmitting, EventOrderRejected}: StateFailed,

	{StateInitiatingPayment, EventPaymentConfirmed}: StateSuccess,
	{StateInitiatingPayment, EventPaymentRejected}:  StateFailed,

	{StateSuccess, EventReset}: StateIdle,
	{StateFailed, EventReset}:  StateIdle,
}

// Transition returns the state reached from s on e, or an error when e is
// not allowed in s.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[edge{from: s, event: e}]
	if !ok {
		return s, fmt.Errorf("illegal checkout transition: %s on %s", s, e)
	}
	return next, nil
}
