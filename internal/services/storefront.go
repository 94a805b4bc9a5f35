package services

// Backend is every remote call a page session makes.
type Backend interface {
	PaymentGateway
	AuthBackend
	Subscriber
	ChatBackend
}

// Shared holds the services all page sessions use.
type Shared struct {
	Catalog   *Catalog
	Contact   *ContactService
	Audit     *SecurityLogger
	Sentiment *SentimentDetector
}

// Storefront is one page session: its own cart, checkout flow, user and
// backend connection over the shared catalog.
type Storefront struct {
	Catalog    *Catalog
	Cart       *CartService
	Checkout   *CheckoutService
	Auth       *AuthService
	Newsletter *NewsletterService
	Support    *SupportService
	Contact    *ContactService
}

// NewStorefront wires a page session. store persists the session's user.
func NewStorefront(shared Shared, backend Backend, store KeyValueStore) *Storefront {
	cart := NewCartService(shared.Catalog)
	auth := NewAuthService(backend, store, shared.Audit)
	return &Storefront{
		Catalog:    shared.Catalog,
		Cart:       cart,
		Checkout:   NewCheckoutService(cart, auth, backend),
		Auth:       auth,
		Newsletter: NewNewsletterService(backend),
		Support:    NewSupportService(backend, auth, shared.Sentiment),
		Contact:    shared.Contact,
	}
}
