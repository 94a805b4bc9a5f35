package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"lunara/internal/models"
)

// ProductLookup resolves a product id against the catalog.
type ProductLookup interface {
	Product(id int) (models.Product, bool)
}

// CartService is the page session's cart: an ordered list of line items with
// at most one line per product, each quantity kept within [1, inventory].
// The cart lives in memory only.
type CartService struct {
	mu        sync.Mutex
	catalog   ProductLookup
	items     []models.LineItem
	listeners map[int]func(models.CartSnapshot)
	nextID    int
	// version is bumped on every change and stamped on snapshots.
	version uint64
}

// NewCartService creates an empty cart over catalog.
func NewCartService(catalog ProductLookup) *CartService {
	return &CartService{
		catalog:   catalog,
		items:     []models.LineItem{},
		listeners: map[int]func(models.CartSnapshot){},
	}
}

// Subscribe registers fn to receive a snapshot after every cart change and
// returns a function that removes it.
func (cs *CartService) Subscribe(fn func(models.CartSnapshot)) func() {
	cs.mu.Lock()
	id := cs.nextID
	cs.nextID++
	cs.listeners[id] = fn
	snap := cs.snapshotLocked()
	cs.mu.Unlock()

	fn(snap)

	return func() {
		cs.mu.Lock()
		delete(cs.listeners, id)
		cs.mu.Unlock()
	}
}

// AddToCart adds one unit of a product.
func (cs *CartService) AddToCart(productID int) (models.Notification, error) {
	log.Printf("CartService.AddToCart - ProductID: %d", productID)

	product, ok := cs.catalog.Product(productID)
	if !ok {
		log.Printf("CartService.AddToCart - Product not found: %d", productID)
		return models.Notification{}, validationError(models.NotifyError, "This product is out of stock!", ErrUnknownProduct)
	}
	if product.Inventory <= 0 {
		log.Printf("CartService.AddToCart - Product %d out of stock", productID)
		return models.Notification{}, validationError(models.NotifyError, "This product is out of stock!", ErrOutOfStock)
	}

	cs.mu.Lock()
	if i := cs.indexLocked(productID); i >= 0 {
		if cs.items[i].Quantity >= product.Inventory {
			cs.mu.Unlock()
			log.Printf("CartService.AddToCart - Product %d already at inventory cap %d", productID, product.Inventory)
			return models.Notification{}, validationError(models.NotifyWarning, "Maximum inventory reached for this product!", ErrInventoryExceeded)
		}
		log.Printf("CartService.AddToCart - Product already in cart, updating quantity from %d to %d", cs.items[i].Quantity, cs.items[i].Quantity+1)
		cs.items[i].Quantity++
	} else {
		log.Printf("CartService.AddToCart - Adding new product to cart")
		cs.items = append(cs.items, models.LineItem{Product: product, Quantity: 1})
	}
	cs.version++
	snap := cs.snapshotLocked()
	listeners := cs.listenersLocked()
	cs.mu.Unlock()

	log.Printf("CartService.AddToCart - Cart totals: TotalItems=%d, TotalValue=%.2f", snap.TotalItems, snap.TotalValue)
	notify(listeners, snap)
	return success(fmt.Sprintf("%s added to cart!", product.Name)), nil
}

// UpdateQuantity changes a line's quantity. With explicit set the quantity
// becomes that value clamped to [1, inventory]; otherwise delta is applied.
// Values above inventory are clamped down with a warning. A quantity that
// reaches zero removes the line.
func (cs *CartService) UpdateQuantity(productID, delta int, explicit *int) (models.Notification, error) {
	log.Printf("CartService.UpdateQuantity - ProductID: %d, Delta: %d, Explicit: %v", productID, delta, explicit)

	cs.mu.Lock()
	i := cs.indexLocked(productID)
	if i < 0 {
		cs.mu.Unlock()
		log.Printf("CartService.UpdateQuantity - Product %d not found in cart", productID)
		return models.Notification{}, validationError(models.NotifyWarning, "This product is not in your cart", ErrNotInCart)
	}
	if explicit == nil && delta == 0 {
		cs.mu.Unlock()
		return models.Notification{}, nil
	}

	inventory := cs.items[i].Inventory
	if product, ok := cs.catalog.Product(productID); ok {
		inventory = product.Inventory
	}

	var note models.Notification
	quantity := cs.items[i].Quantity
	if explicit != nil {
		quantity = *explicit
		if quantity < 1 {
			quantity = 1
		}
	} else {
		quantity += delta
	}
	if quantity > inventory {
		log.Printf("CartService.UpdateQuantity - Clamping quantity %d to inventory %d", quantity, inventory)
		note = warning(fmt.Sprintf("Only %d items available!", inventory))
		quantity = inventory
	}

	if quantity <= 0 {
		log.Printf("CartService.UpdateQuantity - Removing item from cart")
		cs.items = append(cs.items[:i], cs.items[i+1:]...)
		note = success("Item removed from cart")
	} else {
		cs.items[i].Quantity = quantity
	}
	cs.version++
	snap := cs.snapshotLocked()
	listeners := cs.listenersLocked()
	cs.mu.Unlock()

	log.Printf("CartService.UpdateQuantity - Cart totals: TotalItems=%d, TotalValue=%.2f", snap.TotalItems, snap.TotalValue)
	notify(listeners, snap)
	return note, nil
}

// RemoveFromCart deletes a product's line. Removing an absent product
// changes nothing.
func (cs *CartService) RemoveFromCart(productID int) models.Notification {
	log.Printf("CartService.RemoveFromCart - ProductID: %d", productID)

	cs.mu.Lock()
	i := cs.indexLocked(productID)
	if i >= 0 {
		cs.items = append(cs.items[:i], cs.items[i+1:]...)
		cs.version++
	}
	snap := cs.snapshotLocked()
	listeners := cs.listenersLocked()
	cs.mu.Unlock()

	if i >= 0 {
		notify(listeners, snap)
	}
	return success("Item removed from cart")
}

// Clear empties the cart.
func (cs *CartService) Clear() {
	log.Printf("CartService.Clear")

	cs.mu.Lock()
	cs.items = []models.LineItem{}
	cs.version++
	snap := cs.snapshotLocked()
	listeners := cs.listenersLocked()
	cs.mu.Unlock()

	notify(listeners, snap)
}

// TotalItems returns the sum of all quantities.
func (cs *CartService) TotalItems() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	total := 0
	for _, item := range cs.items {
		total += item.Quantity
	}
	return total
}

// TotalValue returns the sum of price*quantity over all lines.
func (cs *CartService) TotalValue() float64 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return models.SumLineItems(cs.items).InexactFloat64()
}

// Snapshot returns a copy of the cart with its totals.
func (cs *CartService) Snapshot() models.CartSnapshot {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.snapshotLocked()
}

func (cs *CartService) indexLocked(productID int) int {
	for i, item := range cs.items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

func (cs *CartService) snapshotLocked() models.CartSnapshot {
	items := make([]models.LineItem, len(cs.items))
	copy(items, cs.items)

	snap := models.CartSnapshot{
		Version:    cs.version,
		Items:      items,
		TotalValue: models.SumLineItems(items).InexactFloat64(),
	}
	for _, item := range items {
		snap.TotalItems += item.Quantity
	}
	return snap
}

func (cs *CartService) listenersLocked() []func(models.CartSnapshot) {
	out := make([]func(models.CartSnapshot), 0, len(cs.listeners))
	for _, fn := range cs.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(models.CartSnapshot), snap models.CartSnapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}

// ParseQuantity reads a typed quantity the way the quantity input does: the
// leading integer is used ("3 pcs" is 3) and input without one, or zero,
// becomes 1. Negative values are returned as is; UpdateQuantity clamps them.
func ParseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil || n == 0 {
		return 1
	}
	return n
}
