package services

import (
	"context"
	"log"
	"strings"
	"sync"

	"lunara/internal/models"
)

// CheckoutState is a step of the checkout flow.
type CheckoutState int

const (
	StateIdle CheckoutState = iota
	StateAwaitingLogin
	StatePaymentFormOpen
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s CheckoutState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingLogin:
		return "awaiting_login"
	case StatePaymentFormOpen:
		return "payment_form_open"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// PaymentGateway submits orders to the payment backend.
type PaymentGateway interface {
	ProcessPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error)
}

// UserSource reports who is logged in, or nil.
type UserSource interface {
	CurrentUser() *models.User
}

// CheckoutResult is what the shopper sees after a checkout step.
type CheckoutResult struct {
	State        CheckoutState       `json:"-"`
	Notification models.Notification `json:"notification"`
	Redirect     models.Page         `json:"redirect,omitempty"`
	OrderID      string              `json:"order_id,omitempty"`
}

// CheckoutService drives a cart from review to a placed order.
type CheckoutService struct {
	mu      sync.Mutex
	cart    *CartService
	users   UserSource
	gateway PaymentGateway
	state   CheckoutState
	method  models.PaymentMethod
}

func NewCheckoutService(cart *CartService, users UserSource, gateway PaymentGateway) *CheckoutService {
	return &CheckoutService{
		cart:    cart,
		users:   users,
		gateway: gateway,
		state:   StateIdle,
		method:  models.PaymentCard,
	}
}

// State returns the current checkout step.
func (s *CheckoutService) State() CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Method returns the selected payment method.
func (s *CheckoutService) Method() models.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// Begin opens the payment form. An empty cart is rejected and a shopper
// without a session is sent to log in first.
func (s *CheckoutService) Begin() (CheckoutResult, error) {
	log.Printf("CheckoutService.Begin")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return CheckoutResult{State: s.state}, validationError(models.NotifyWarning, "Your payment is being processed", ErrPaymentInFlight)
	}
	if s.cart.TotalItems() == 0 {
		log.Printf("CheckoutService.Begin - Cart is empty")
		s.state = StateIdle
		return CheckoutResult{State: s.state}, validationError(models.NotifyWarning, "Your cart is empty!", ErrEmptyCart)
	}
	if s.users.CurrentUser() == nil {
		log.Printf("CheckoutService.Begin - No user, redirecting to login")
		s.state = StateAwaitingLogin
		err := validationError(models.NotifyError, "Please log in to checkout", ErrLoginRequired)
		return CheckoutResult{State: s.state, Redirect: models.PageLogin, Notification: err.Notification()}, err
	}

	s.state = StatePaymentFormOpen
	s.method = models.PaymentCard
	return CheckoutResult{State: s.state}, nil
}

// SelectMethod switches the payment form to method.
func (s *CheckoutService) SelectMethod(method models.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaymentFormOpen {
		return validationError(models.NotifyError, "Payment form is not open", ErrCheckoutClosed)
	}
	if !method.Valid() {
		return paymentError("method", "Please select a payment method")
	}
	s.method = method
	return nil
}

// Close dismisses the payment form.
func (s *CheckoutService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitting {
		s.state = StateIdle
	}
}

// Submit validates details for the selected method and sends the order.
// Local failures never reach the network. Only one submission may be in
// flight at a time.
func (s *CheckoutService) Submit(ctx context.Context, details models.PaymentDetails) (CheckoutResult, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting:
		s.mu.Unlock()
		log.Printf("CheckoutService.Submit - Rejected, payment already in flight")
		return CheckoutResult{State: StateSubmitting}, validationError(models.NotifyWarning, "Your payment is being processed", ErrPaymentInFlight)
	case StatePaymentFormOpen:
	default:
		state := s.state
		s.mu.Unlock()
		return CheckoutResult{State: state}, validationError(models.NotifyError, "Payment form is not open", ErrCheckoutClosed)
	}

	method := s.method
	if err := ValidatePayment(method, details); err != nil {
		s.mu.Unlock()
		log.Printf("CheckoutService.Submit - Validation failed: %v", err)
		return CheckoutResult{State: StatePaymentFormOpen}, err
	}

	snap := s.cart.Snapshot()
	if snap.Empty() {
		s.state = StateIdle
		s.mu.Unlock()
		return CheckoutResult{State: StateIdle}, validationError(models.NotifyWarning, "Your cart is empty!", ErrEmptyCart)
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	req := models.PaymentRequest{Method: method, Amount: snap.TotalValue, Items: snap.Items}
	log.Printf("CheckoutService.Submit - Method: %s, Amount: %.2f, Items: %d", method, req.Amount, len(req.Items))
	resp, err := s.gateway.ProcessPayment(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		log.Printf("CheckoutService.Submit - Transport error: %v", err)
		s.state = StatePaymentFormOpen
		terr := transportError("Payment failed. Please try again.", err)
		return CheckoutResult{State: StateFailed, Notification: terr.Notification()}, terr
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Payment failed. Please try again."
		}
		log.Printf("CheckoutService.Submit - Payment rejected: %s", msg)
		s.state = StatePaymentFormOpen
		rerr := rejectedError(msg, ErrPaymentDeclined)
		result := CheckoutResult{State: StateFailed, Notification: rerr.Notification()}
		if strings.Contains(strings.ToLower(msg), "log in") {
			s.state = StateAwaitingLogin
			result.Redirect = models.PageLogin
		}
		return result, rerr
	}

	log.Printf("CheckoutService.Submit - Payment successful, OrderID: %s", resp.OrderID)
	s.cart.Clear()
	s.state = StateSuccess
	return CheckoutResult{
		State:        StateSuccess,
		Notification: success("Payment successful! Your order has been placed."),
		OrderID:      resp.OrderID,
	}, nil
}

// Summary returns the amounts shown in the payment form. There is no
// shipping or tax, so subtotal and total are equal.
func (s *CheckoutService) Summary() (subtotal, total float64) {
	v := s.cart.TotalValue()
	return v, v
}
