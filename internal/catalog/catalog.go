package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rianxlewis/routine-builder/internal/models"
)

// Catalog holds the static product list, loaded once at startup. It is
// read-only after Load.
type Catalog struct {
	products []models.Product
	byID     map[int]models.Product
}

type catalogFile struct {
	Products []models.Product `json:"products"`
}

// Load reads the catalog document ({"products": [...]}) from path. Callers
// are expected to degrade to Empty() on error rather than fail startup.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc catalogFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return New(doc.Products), nil
}

// New builds a catalog from an in-memory product list, preserving order.
func New(products []models.Product) *Catalog {
	byID := make(map[int]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{products: products, byID: byID}
}

// Empty returns a catalog with no products.
func Empty() *Catalog {
	return New(nil)
}

// Products returns the full catalog in file order.
func (c *Catalog) Products() []models.Product {
	return c.products
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// GetByID looks a product up by its stable id.
func (c *Catalog) GetByID(id int) (models.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Filter returns products whose category equals category (when non-empty)
// AND whose name, brand, or description contains term case-insensitively
// (when non-empty). Both predicates compose by conjunction; empty filters
// return the full catalog unchanged in order. Filtering has no side
// effects and is idempotent.
func (c *Catalog) Filter(term, category string) []models.Product {
	filtered := c.products

	if category != "" {
		var byCategory []models.Product
		for _, p := range filtered {
			if p.Category == category {
				byCategory = append(byCategory, p)
			}
		}
		filtered = byCategory
	}

	if term != "" {
		lower := strings.ToLower(term)
		var byTerm []models.Product
		for _, p := range filtered {
			if strings.Contains(strings.ToLower(p.Name), lower) ||
				strings.Contains(strings.ToLower(p.Brand), lower) ||
				strings.Contains(strings.ToLower(p.Description), lower) {
				byTerm = append(byTerm, p)
			}
		}
		filtered = byTerm
	}

	return filtered
}

// Categories returns the distinct category values in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories
}
