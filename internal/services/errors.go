package services

import (
	"errors"

	"lunara/internal/models"
)

// ErrorKind classifies a storefront failure.
type ErrorKind int

const (
	// KindValidation: bad local input, nothing was sent anywhere.
	KindValidation ErrorKind = iota + 1
	// KindRejected: the backend answered and said no.
	KindRejected
	// KindTransport: the backend could not be reached or answered garbage.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRejected:
		return "rejected"
	case KindTransport:
		return "transport"
	}
	return "unknown"
}

var (
	ErrUnknownProduct     = errors.New("unknown product")
	ErrOutOfStock         = errors.New("product out of stock")
	ErrInventoryExceeded  = errors.New("inventory exceeded")
	ErrNotInCart          = errors.New("product not in cart")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrLoginRequired      = errors.New("login required")
	ErrCheckoutClosed     = errors.New("payment form is not open")
	ErrPaymentInFlight    = errors.New("payment already submitted")
	ErrInvalidPayment     = errors.New("invalid payment details")
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidForm        = errors.New("invalid form input")
	ErrRegistration       = errors.New("registration rejected")
	ErrSubscription       = errors.New("subscription rejected")
	ErrEmptyMessage       = errors.New("empty message")
)

// Error is a failure that carries the notification the shopper sees.
type Error struct {
	Kind    ErrorKind
	Level   models.NotificationType
	Message string
	// Field names the form input at fault, when there is one.
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Notification returns the toast for this error.
func (e *Error) Notification() models.Notification {
	return models.Notification{Message: e.Message, Type: e.Level}
}

func validationError(level models.NotificationType, msg string, err error) *Error {
	return &Error{Kind: KindValidation, Level: level, Message: msg, Err: err}
}

func fieldError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Level: models.NotifyError, Message: msg, Field: field, Err: ErrInvalidForm}
}

func rejectedError(msg string, err error) *Error {
	return &Error{Kind: KindRejected, Level: models.NotifyError, Message: msg, Err: err}
}

func transportError(msg string, err error) *Error {
	return &Error{Kind: KindTransport, Level: models.NotifyError, Message: msg, Err: err}
}

// AsError extracts the storefront error from err, if any.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func success(msg string) models.Notification {
	return models.Notification{Message: msg, Type: models.NotifySuccess}
}

func warning(msg string) models.Notification {
	return models.Notification{Message: msg, Type: models.NotifyWarning}
}
