package view

import (
	"sync"

	"lunara/internal/models"
)

const emptyCartMessage = "Your cart is empty"

// ProductCard is a product as the grid shows it.
type ProductCard struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
	Price         string  `json:"price"`
	OriginalPrice string  `json:"original_price,omitempty"`
	Badge         string  `json:"badge,omitempty"`
	Rating        float64 `json:"rating"`
	Stars         string  `json:"stars"`
	Reviews       int     `json:"reviews"`
	ButtonLabel   string  `json:"button_label"`
	Disabled      bool    `json:"disabled"`
}

func NewProductCard(p models.Product) ProductCard {
	card := ProductCard{
		ID:          p.ID,
		Name:        p.Name,
		Category:    string(p.Category),
		Image:       p.Image,
		Price:       FormatPrice(p.Price),
		Rating:      p.Rating,
		Stars:       RatingStars(p.Rating),
		Reviews:     p.Reviews,
		ButtonLabel: "Add to Cart",
	}
	if p.OnSale() {
		card.OriginalPrice = FormatPrice(*p.OriginalPrice)
		card.Badge = "Sale"
	}
	if !p.InStock() {
		card.ButtonLabel = "Out of Stock"
		card.Disabled = true
	}
	return card
}

func ProductCards(products []models.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, NewProductCard(p))
	}
	return cards
}

// CartLine is one line of the cart panel.
type CartLine struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Max      int    `json:"max"`
	Subtotal string `json:"subtotal"`
}

// CartView is the cart panel and the header badge.
type CartView struct {
	Count   int        `json:"count"`
	Lines   []CartLine `json:"lines"`
	Empty   bool       `json:"empty"`
	Message string     `json:"message,omitempty"`
	Total   string     `json:"total"`
}

func NewCartView(snap models.CartSnapshot) CartView {
	v := CartView{
		Count: snap.TotalItems,
		Lines: make([]CartLine, 0, len(snap.Items)),
		Total: FormatPrice(snap.TotalValue),
	}
	if snap.Empty() {
		v.Empty = true
		v.Message = emptyCartMessage
		v.Total = FormatPrice(0)
		return v
	}
	for _, item := range snap.Items {
		v.Lines = append(v.Lines, CartLine{
			ID:       item.ID,
			Name:     item.Name,
			Image:    item.Image,
			Price:    FormatPrice(item.Price),
			Quantity: item.Quantity,
			Max:      item.Inventory,
			Subtotal: FormatPrice(item.Subtotal()),
		})
	}
	return v
}

// PaymentSummary is the amount block of the payment form.
type PaymentSummary struct {
	Subtotal string `json:"subtotal"`
	Total    string `json:"total"`
}

func NewPaymentSummary(subtotal, total float64) PaymentSummary {
	return PaymentSummary{Subtotal: FormatPrice(subtotal), Total: FormatPrice(total)}
}

// AccountLabel is the header account button text: the user's first name,
// or empty when logged out.
func AccountLabel(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.FirstName()
}

// CartSource is a cart that reports changes.
type CartSource interface {
	Subscribe(fn func(models.CartSnapshot)) func()
}

// CartRenderer keeps the cart view current by re-rendering on every cart
// change. Snapshots older than the one on screen are dropped, so two
// changes delivered out of order still leave the newest view.
type CartRenderer struct {
	mu      sync.RWMutex
	current CartView
	version uint64
	renders int
	stop    func()
}

// NewCartRenderer subscribes to cart and renders its current state at once.
func NewCartRenderer(cart CartSource) *CartRenderer {
	r := &CartRenderer{}
	r.stop = cart.Subscribe(r.render)
	return r
}

func (r *CartRenderer) render(snap models.CartSnapshot) {
	v := NewCartView(snap)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renders > 0 && snap.Version < r.version {
		return
	}
	r.current = v
	r.version = snap.Version
	r.renders++
}

// Current returns the last rendered cart view.
func (r *CartRenderer) Current() CartView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Renders counts renders since creation.
func (r *CartRenderer) Renders() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.renders
}

// Close stops following the cart.
func (r *CartRenderer) Close() {
	if r.stop != nil {
		r.stop()
	}
}
