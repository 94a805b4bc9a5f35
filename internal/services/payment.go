package services

import (
	"regexp"
	"strings"

	"lunara/internal/models"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{4} \d{4} \d{4} \d{4}$`)
	// Month range is not checked: "13/29" passes.
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3}$`)
)

// ValidatePayment runs the local checks of the payment form for method.
// It never touches the network.
func ValidatePayment(method models.PaymentMethod, d models.PaymentDetails) error {
	switch method {
	case models.PaymentCard:
		if d.CardNumber == "" || d.Expiry == "" || d.CVV == "" || d.CardholderName == "" {
			return paymentError("cardNumber", "Please fill in all card details")
		}
		if !cardNumberPattern.MatchString(d.CardNumber) {
			return paymentError("cardNumber", "Please enter a valid card number")
		}
		if !expiryPattern.MatchString(d.Expiry) {
			return paymentError("expiryDate", "Please enter a valid expiry date (MM/YY)")
		}
		if !cvvPattern.MatchString(d.CVV) {
			return paymentError("cvv", "Please enter a valid CVV")
		}
	case models.PaymentUPI:
		if d.UPIID == "" {
			return paymentError("upiId", "Please enter your UPI ID")
		}
	case models.PaymentPayPal:
	default:
		return paymentError("method", "Please select a payment method")
	}
	return nil
}

func paymentError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Level: models.NotifyError, Message: msg, Field: field, Err: ErrInvalidPayment}
}

// FormatCardNumber masks card number input: digits only, at most 16,
// grouped in fours with single spaces.
func FormatCardNumber(input string) string {
	digits := onlyDigits(input, 16)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry masks expiry input: at most 4 digits with a slash after the
// second once a third digit is typed.
func FormatExpiry(input string) string {
	digits := onlyDigits(input, 4)
	if len(digits) > 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// FormatCVV masks CVV input to at most 3 digits.
func FormatCVV(input string) string {
	return onlyDigits(input, 3)
}

func onlyDigits(input string, max int) string {
	var b strings.Builder
	n := 0
	for _, r := range input {
		if r < '0' || r > '9' {
			continue
		}
		if n == max {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
