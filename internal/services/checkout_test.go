package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lunara/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct{ user *models.User }

func (u *stubUsers) CurrentUser() *models.User { return u.user }

type stubGateway struct {
	mu    sync.Mutex
	calls []models.PaymentRequest
	resp  *models.PaymentResponse
	err   error
	// block, when set, holds ProcessPayment until closed.
	block chan struct{}
	// entered is signalled once a call reaches the gateway.
	entered chan struct{}
}

func (g *stubGateway) ProcessPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
	return g.resp, g.err
}

func (g *stubGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func newCheckout(t *testing.T, user *models.User, gateway *stubGateway) (*CheckoutService, *CartService) {
	t.Helper()
	cart := NewCartService(testCatalog())
	return NewCheckoutService(cart, &stubUsers{user: user}, gateway), cart
}

func shopper() *models.User {
	return &models.User{Name: "Asha Rao", Email: "asha@example.com"}
}

func TestBeginRejectsEmptyCart(t *testing.T) {
	gateway := &stubGateway{}
	checkout, _ := newCheckout(t, shopper(), gateway)

	result, err := checkout.Begin()
	require.ErrorIs(t, err, ErrEmptyCart)
	se := requireKind(t, err, KindValidation)
	assert.Equal(t, "Your cart is empty!", se.Message)
	assert.Equal(t, models.NotifyWarning, se.Level)
	assert.Equal(t, StateIdle, result.State)
	assert.Equal(t, StateIdle, checkout.State())
	assert.Zero(t, gateway.callCount())
}

func TestBeginWithoutUserRedirectsToLogin(t *testing.T) {
	gateway := &stubGateway{}
	checkout, cart := newCheckout(t, nil, gateway)
	_, err := cart.AddToCart(1)
	require.NoError(t, err)

	result, err := checkout.Begin()
	require.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, models.PageLogin, result.Redirect)
	assert.Equal(t, "Please log in to checkout", result.Notification.Message)
	assert.Equal(t, StateAwaitingLogin, checkout.State())

	_, err = checkout.Submit(context.Background(), validCard())
	assert.ErrorIs(t, err, ErrCheckoutClosed)
	assert.Zero(t, gateway.callCount())
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	gateway := &stubGateway{resp: &models.PaymentResponse{Success: true, OrderID: "ORD-1001"}}
	checkout, cart := newCheckout(t, shopper(), gateway)
	_, err := cart.AddToCart(1)
	require.NoError(t, err)
	_, err = cart.AddToCart(1)
	require.NoError(t, err)

	_, err = checkout.Begin()
	require.NoError(t, err)
	assert.Equal(t, StatePaymentFormOpen, checkout.State())
	assert.Equal(t, models.PaymentCard, checkout.Method())

	subtotal, total := checkout.Summary()
	assert.Equal(t, 4998.0, subtotal)
	assert.Equal(t, subtotal, total)

	result, err := checkout.Submit(context.Background(), validCard())
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, result.State)
	assert.Equal(t, "ORD-1001", result.OrderID)
	assert.Equal(t, models.Notification{Message: "Payment successful! Your order has been placed.", Type: models.NotifySuccess}, result.Notification)
	assert.Equal(t, StateSuccess, checkout.State())
	assert.Equal(t, 0, cart.TotalItems())

	require.Equal(t, 1, gateway.callCount())
	req := gateway.calls[0]
	assert.Equal(t, models.PaymentCard, req.Method)
	assert.Equal(t, 4998.0, req.Amount)
	require.Len(t, req.Items, 1)
	assert.Equal(t, 2, req.Items[0].Quantity)
}

func TestSubmitUPIWithoutIDMakesNoCall(t *testing.T) {
	gateway := &stubGateway{resp: &models.PaymentResponse{Success: true}}
	checkout, cart := newCheckout(t, shopper(), gateway)
	_, err := cart.AddToCart(1)
	require.NoError(t, err)
	_, err = checkout.Begin()
	require.NoError(t, err)
	require.NoError(t, checkout.SelectMethod(models.PaymentUPI))

	result, err := checkout.Submit(context.Background(), models.PaymentDetails{})
	require.ErrorIs(t, err, ErrInvalidPayment)
	se := requireKind(t, err, KindValidation)
	assert.Equal(t, "Please enter your UPI ID", se.Message)
	assert.Equal(t, StatePaymentFormOpen, result.State)
	assert.Equal(t, StatePaymentFormOpen, checkout.State())
	assert.Zero(t, gateway.callCount())
	assert.Equal(t, 1, cart.TotalItems())
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name         string
		resp         *models.PaymentResponse
		err          error
		wantKind     ErrorKind
		wantMsg      string
		wantRedirect models.Page
		wantState    CheckoutState
	}{
		{
			name:      "server message",
			resp:      &models.PaymentResponse{Message: "Card declined"},
			wantKind:  KindRejected,
			wantMsg:   "Card declined",
			wantState: StatePaymentFormOpen,
		},
		{
			name:      "generic message",
			resp:      &models.PaymentResponse{},
			wantKind:  KindRejected,
			wantMsg:   "Payment failed. Please try again.",
			wantState: StatePaymentFormOpen,
		},
		{
			name:         "session expired",
			resp:         &models.PaymentResponse{Message: "Please Log in to continue"},
			wantKind:     KindRejected,
			wantMsg:      "Please Log in to continue",
			wantRedirect: models.PageLogin,
			wantState:    StateAwaitingLogin,
		},
		{
			name:      "transport",
			err:       errors.New("connection refused"),
			wantKind:  KindTransport,
			wantMsg:   "Payment failed. Please try again.",
			wantState: StatePaymentFormOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &stubGateway{resp: tt.resp, err: tt.err}
			checkout, cart := newCheckout(t, shopper(), gateway)
			_, err := cart.AddToCart(2)
			require.NoError(t, err)
			_, err = checkout.Begin()
			require.NoError(t, err)
			require.NoError(t, checkout.SelectMethod(models.PaymentPayPal))

			result, err := checkout.Submit(context.Background(), models.PaymentDetails{})
			se := requireKind(t, err, tt.wantKind)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.Equal(t, StateFailed, result.State)
			assert.Equal(t, tt.wantMsg, result.Notification.Message)
			assert.Equal(t, models.NotifyError, result.Notification.Type)
			assert.Equal(t, tt.wantRedirect, result.Redirect)
			assert.Equal(t, tt.wantState, checkout.State())
			assert.Equal(t, 1, cart.TotalItems(), "cart must survive a failed payment")
		})
	}
}

func TestSubmitRejectsSecondSubmissionInFlight(t *testing.T) {
	gateway := &stubGateway{
		resp:    &models.PaymentResponse{Success: true},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	checkout, cart := newCheckout(t, shopper(), gateway)
	_, err := cart.AddToCart(1)
	require.NoError(t, err)
	_, err = checkout.Begin()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := checkout.Submit(context.Background(), validCard())
		done <- err
	}()
	<-gateway.entered
	assert.Equal(t, StateSubmitting, checkout.State())

	_, err = checkout.Submit(context.Background(), validCard())
	assert.ErrorIs(t, err, ErrPaymentInFlight)
	_, err = checkout.Begin()
	assert.ErrorIs(t, err, ErrPaymentInFlight)

	close(gateway.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, gateway.callCount())
	assert.Equal(t, StateSuccess, checkout.State())
}

func TestSelectMethodRequiresOpenForm(t *testing.T) {
	checkout, cart := newCheckout(t, shopper(), &stubGateway{})
	assert.ErrorIs(t, checkout.SelectMethod(models.PaymentUPI), ErrCheckoutClosed)

	_, err := cart.AddToCart(1)
	require.NoError(t, err)
	_, err = checkout.Begin()
	require.NoError(t, err)
	assert.ErrorIs(t, checkout.SelectMethod("cash"), ErrInvalidPayment)
	assert.Equal(t, models.PaymentCard, checkout.Method())

	checkout.Close()
	assert.Equal(t, StateIdle, checkout.State())
}
