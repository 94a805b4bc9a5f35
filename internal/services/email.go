package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// EmailService forwards contact messages to the support mailbox. Without
// SMTP credentials it only logs what it would have sent.
type EmailService struct {
	dialer *gomail.Dialer
	sender gomail.Sender
	from   string
	to     string
}

// NewEmailService dials host:port with user/pass. Empty credentials give a
// log-only service.
func NewEmailService(host string, port int, user, pass, supportAddr string) *EmailService {
	if user == "" || pass == "" {
		log.Println("EmailService - SMTP credentials not set, mail delivery disabled")
		return &EmailService{from: "noreply@lunara.com", to: supportAddr}
	}
	return &EmailService{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
		to:     supportAddr,
	}
}

// NewEmailServiceWithSender delivers through sender instead of dialing.
func NewEmailServiceWithSender(sender gomail.Sender, from, supportAddr string) *EmailService {
	return &EmailService{sender: sender, from: from, to: supportAddr}
}

// Enabled reports whether messages are actually delivered.
func (es *EmailService) Enabled() bool {
	return es.dialer != nil || es.sender != nil
}

// SendContactMessage mails a contact form submission to the support address
// with Reply-To set to the shopper.
func (es *EmailService) SendContactMessage(name, email, message string) error {
	if !es.Enabled() {
		log.Printf("EmailService.SendContactMessage - Delivery disabled. From: %s <%s>, Message: %s", name, email, message)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", es.to)
	m.SetAddressHeader("Reply-To", email, name)
	m.SetHeader("Subject", fmt.Sprintf("Contact form: %s", name))
	m.SetBody("text/plain", fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", name, email, message))

	var err error
	if es.sender != nil {
		err = gomail.Send(es.sender, m)
	} else {
		err = es.dialer.DialAndSend(m)
	}
	if err != nil {
		log.Printf("EmailService.SendContactMessage - Delivery failed: %v", err)
		return err
	}

	log.Printf("EmailService.SendContactMessage - Sent to %s", es.to)
	return nil
}
