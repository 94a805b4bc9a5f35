package models

// PaymentMethod is the payment option picked in the payment form.
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentPayPal PaymentMethod = "paypal"
)

// Valid reports whether m is one of the supported methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentPayPal:
		return true
	}
	return false
}

// PaymentDetails holds the raw payment form fields. Only the fields of the
// selected method are read.
type PaymentDetails struct {
	CardNumber     string `json:"card_number"`
	Expiry         string `json:"expiry"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
	UPIID          string `json:"upi_id"`
}

// PaymentRequest is the body of POST /api/process-payment.
type PaymentRequest struct {
	Method PaymentMethod `json:"method"`
	Amount float64       `json:"amount"`
	Items  []LineItem    `json:"items"`
}

// PaymentResponse is the reply of the payment endpoint.
type PaymentResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Message string `json:"message,omitempty"`
}
