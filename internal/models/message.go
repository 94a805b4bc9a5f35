package models

// NotificationType is the visual level of a notification.
type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
)

// Notification is the toast shown to the shopper after an action.
type Notification struct {
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

// IsZero reports whether there is nothing to show.
func (n Notification) IsZero() bool {
	return n.Message == ""
}

// Page names a storefront page the view should switch to.
type Page string

const (
	PageNone    Page = ""
	PageHome    Page = "home"
	PageCatalog Page = "catalog"
	PageLogin   Page = "login"
	PageSignup  Page = "signup"
)

// SubscribeRequest is the body of POST /api/subscribe.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// SubscribeResponse is the reply of the newsletter endpoint.
type SubscribeResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	DiscountCode string `json:"discount_code,omitempty"`
}

// ChatRequest is the body of POST /api/chatbot/ask.
type ChatRequest struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// ChatReply is the reply of the chatbot endpoint. Only Reply is relied on.
type ChatReply struct {
	Success   bool   `json:"success"`
	Reply     string `json:"reply"`
	Matched   bool   `json:"matched"`
	TicketID  *int   `json:"ticket_id,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
}

// ContactMessage is a contact form submission.
type ContactMessage struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Message string `json:"message" binding:"required"`
}
