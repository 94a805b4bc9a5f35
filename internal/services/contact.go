package services

import (
	"log"
	"strings"

	"lunara/internal/models"
)

const contactThanks = "Thank you for your message! We will get back to you soon."

// ContactService handles the contact form.
type ContactService struct {
	mailer *EmailService
	spam   *SpamDetector
	audit  *SecurityLogger
}

func NewContactService(mailer *EmailService, spam *SpamDetector, audit *SecurityLogger) *ContactService {
	return &ContactService{mailer: mailer, spam: spam, audit: audit}
}

// Submit checks the form and forwards it to support. Once the form is
// complete the shopper is always thanked: spam is dropped silently and
// delivery failures are only logged.
func (cs *ContactService) Submit(msg models.ContactMessage, ip string) (models.Notification, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)

	switch {
	case msg.Name == "":
		return models.Notification{}, fieldError("name", "Please fill in all fields")
	case msg.Email == "":
		return models.Notification{}, fieldError("email", "Please fill in all fields")
	case msg.Message == "":
		return models.Notification{}, fieldError("message", "Please fill in all fields")
	case !ValidEmail(msg.Email):
		return models.Notification{}, fieldError("email", "Please enter a valid email address")
	}

	if cs.spam.IsSpam(msg.Message) {
		log.Printf("ContactService.Submit - Spam dropped from %s", msg.Email)
		cs.audit.LogSecurityEvent(EventSpamBlocked, "email="+msg.Email, ip)
		return success(contactThanks), nil
	}

	if err := cs.mailer.SendContactMessage(msg.Name, msg.Email, msg.Message); err != nil {
		log.Printf("ContactService.Submit - Could not forward message: %v", err)
	}
	return success(contactThanks), nil
}
