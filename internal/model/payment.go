package model

// PaymentInitiation is returned by the backend when a gateway payment starts.
type PaymentInitiation struct {
	OrderID    string `json:"orderId"`
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"paymentUrl"`
}

// PaymentVerifyRequest asks the backend to confirm a gateway payment.
type PaymentVerifyRequest struct {
	Pidx    string `json:"pidx"`
	OrderID string `json:"orderId,omitempty"`
}

// PaymentVerification is the backend's verdict on a gateway payment.
type PaymentVerification struct {
	OrderID string `json:"orderId"`
	Paid    bool   `json:"paid"`
	Status  string `json:"status"`
}
