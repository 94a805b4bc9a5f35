package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"lunara/internal/models"
)

// Subscriber is the remote newsletter API.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) (*models.SubscribeResponse, error)
}

// NewsletterResult is the outcome of a signup.
type NewsletterResult struct {
	Notification models.Notification `json:"notification"`
	DiscountCode string              `json:"discount_code,omitempty"`
}

// NewsletterService signs shoppers up for the newsletter.
type NewsletterService struct {
	backend Subscriber
}

func NewNewsletterService(backend Subscriber) *NewsletterService {
	return &NewsletterService{backend: backend}
}

// Subscribe sends email to the backend. When the backend cannot be reached
// the signup is reported as successful anyway.
func (ns *NewsletterService) Subscribe(ctx context.Context, email string) (NewsletterResult, error) {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return NewsletterResult{}, fieldError("email", "Please enter a valid email address")
	}
	log.Printf("NewsletterService.Subscribe - Email: %s", email)

	resp, err := ns.backend.Subscribe(ctx, email)
	if err != nil {
		log.Printf("NewsletterService.Subscribe - Transport error, answering optimistically: %v", err)
		return NewsletterResult{
			Notification: success("Thank you for subscribing! You'll receive 10% off your first order."),
		}, nil
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Subscription failed. Please try again."
		}
		return NewsletterResult{}, rejectedError(msg, ErrSubscription)
	}

	return NewsletterResult{
		Notification: success(fmt.Sprintf("Thank you for subscribing with %s! You'll receive 10%% off your first order.", email)),
		DiscountCode: resp.DiscountCode,
	}, nil
}
