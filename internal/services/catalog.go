package services

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"sync"

	"lunara/internal/models"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed data/fallback_catalog.yaml
var fallbackCatalogYAML []byte

// featuredLimit is how many products the home grid shows.
const featuredLimit = 8

var imagePrefixes = map[models.Category]string{
	models.CategoryRings:     "ring",
	models.CategoryNecklaces: "necklace",
	models.CategoryBracelets: "bracelet",
	models.CategoryEarrings:  "earring",
}

// ProductSource fetches the remote catalog.
type ProductSource interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// Catalog holds the session-wide product list. It is filled once by Load and
// read-only afterwards.
type Catalog struct {
	mu       sync.RWMutex
	source   ProductSource
	products []models.Product
	byID     map[int]int
	fallback bool
}

// NewCatalog creates an empty catalog backed by source.
func NewCatalog(source ProductSource) *Catalog {
	return &Catalog{
		source: source,
		byID:   map[int]int{},
	}
}

// Load fetches the catalog, falling back to the bundled local catalog when
// the remote fetch fails. Every image path is normalized.
func (c *Catalog) Load(ctx context.Context) []models.Product {
	var products []models.Product
	fallback := false

	if c.source != nil {
		remote, err := c.source.Products(ctx)
		if err != nil {
			log.Printf("Catalog.Load - Error loading products, using local catalog: %v", err)
			fallback = true
		} else {
			products = remote
		}
	} else {
		fallback = true
	}

	if fallback {
		local, err := FallbackCatalog()
		if err != nil {
			log.Printf("Catalog.Load - Local catalog unreadable: %v", err)
		}
		products = local
	}

	normalized := make([]models.Product, len(products))
	byID := make(map[int]int, len(products))
	for i, p := range products {
		p.Image = ResolveImage(p)
		normalized[i] = p
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = i
		}
	}

	c.mu.Lock()
	c.products = normalized
	c.byID = byID
	c.fallback = fallback
	c.mu.Unlock()

	log.Printf("Catalog.Load - Loaded %d products (fallback=%t)", len(normalized), fallback)
	return c.Products()
}

// FallbackCatalog parses the bundled catalog. Images are returned as stored.
func FallbackCatalog() ([]models.Product, error) {
	var products []models.Product
	if err := yaml.Unmarshal(fallbackCatalogYAML, &products); err != nil {
		return nil, fmt.Errorf("parse fallback catalog: %w", err)
	}
	return products, nil
}

// ResolveImage returns the local static path for a product image. Paths that
// already point into /static/images/ pass through; anything else is derived
// from the category and the product id, cycling through 12 images per
// category.
func ResolveImage(p models.Product) string {
	if strings.HasPrefix(p.Image, "/static/images/") || strings.HasPrefix(p.Image, "static/images/") {
		return p.Image
	}
	base, ok := imagePrefixes[p.Category]
	if !ok {
		base = "ring"
	}
	index := ((p.ID - 1) % 12) + 1
	return fmt.Sprintf("/static/images/%s%d.jpg", base, index)
}

// UsingFallback reports whether the last Load served the local catalog.
func (c *Catalog) UsingFallback() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fallback
}

// Products returns a copy of every product in catalog order.
func (c *Catalog) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Product looks a product up by id.
func (c *Catalog) Product(id int) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// ByCategory filters the catalog. CategoryAll and "" match everything.
func (c *Catalog) ByCategory(category models.Category) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		if category == models.CategoryAll || category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns the first products of a category for the home grid.
func (c *Catalog) Featured(category models.Category) []models.Product {
	products := c.ByCategory(category)
	if len(products) > featuredLimit {
		products = products[:featuredLimit]
	}
	return products
}

// Search matches term case-insensitively against product names. Both sides
// are NFC normalized so composed and decomposed accents match.
func (c *Catalog) Search(term string) []models.Product {
	term = strings.ToLower(norm.NFC.String(strings.TrimSpace(term)))
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []models.Product{}
	if term == "" {
		return out
	}
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(norm.NFC.String(p.Name)), term) {
			out = append(out, p)
		}
	}
	return out
}
