package domain

import (
	"slices"
	"time"
)

// Product is one row of the cosmetics table
type Product struct {
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	Label       string      `json:"label"`
	Ingredients string      `json:"ingredients"`
	SkinTypes   SkinTypeSet `json:"skinTypes"`
	Price       *float64    `json:"price"` // nil when the cell was blank or not numeric
	Rank        *float64    `json:"rank"`  // lower is better
}

// SuitableFor reports whether the product is flagged for the given skin type
func (p Product) SuitableFor(t SkinType) bool {
	return p.SkinTypes.Has(t)
}

// Catalog is a read-only handle on a loaded product table.
// Rows keep their source order.
type Catalog struct {
	products []Product
	version  string
	loadedAt time.Time
}

// NewCatalog takes ownership of products. Callers must not modify the slice afterwards.
func NewCatalog(products []Product, version string) *Catalog {
	return &Catalog{
		products: products,
		version:  version,
		loadedAt: time.Now(),
	}
}

// Len returns the number of rows
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Products returns a copy of all rows in source order
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	return slices.Clone(c.products)
}

// Version is a fingerprint of the loaded content, stable across reloads of the same data
func (c *Catalog) Version() string {
	if c == nil {
		return ""
	}
	return c.version
}

// LoadedAt is when the catalog was built
func (c *Catalog) LoadedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.loadedAt
}

// Recommendation is a product that passed the skin-type filter, with its relevance score
type Recommendation struct {
	Product          Product `json:"product"`
	MatchScore       int     `json:"matchScore"`
	SearchByNameURL  string  `json:"searchByNameUrl"`
	SearchByBrandURL string  `json:"searchByBrandUrl"`
}
