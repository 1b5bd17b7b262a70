package models

import (
	"strings"
	"time"

	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

const (
	// GenericImage is served for products and categories without artwork.
	GenericImage = "/default-images/generic.svg"

	// FallbackCategoryImage is used by category listings when neither a
	// product image nor a per-category default exists.
	FallbackCategoryImage = "https://images.unsplash.com/photo-1522335789203-aabd1fc54bc9?auto=format&fit=crop&w=600&q=80"

	legacyPublicPrefix = "//public/"
)

var categoryImages = map[string]string{
	"Skincare":       "https://images.unsplash.com/photo-1556228578-0d85b1a4d571?auto=format&fit=crop&w=600&q=80",
	"Body Care":      "https://images.unsplash.com/photo-1612817288484-6f916006741a?auto=format&fit=crop&w=600&q=80",
	"Wellness":       "https://images.unsplash.com/photo-1540555700478-4be289fbecef?auto=format&fit=crop&w=600&q=80",
	"Hair Care":      "https://images.unsplash.com/photo-1594125355930-bc63630f9a2d?auto=format&fit=crop&w=600&q=80",
	"Essential Oils": "https://images.unsplash.com/photo-1620916566398-39f1143ab7be?auto=format&fit=crop&w=600&q=80",
	"Face":           "https://images.unsplash.com/photo-1601049541289-9b1b7be00e57?auto=format&fit=crop&w=600&q=80",
}

// Product is the canonical catalog entry.
//
// Invariants:
//   - Name is non-empty
//   - Price and Stock are never negative
//   - CreatedAt is immutable after construction
type Product struct {
	ID          id.ProductID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Price       id.Amount    `json:"price"`
	ImageURL    string       `json:"image_url"`
	Stock       int          `json:"stock"`
	Bestseller  bool         `json:"bestseller"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Validate checks the invariants above.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "product name is required")
	}
	if p.Price < 0 {
		return dErrors.New(dErrors.CodeValidation, "price must not be negative")
	}
	if p.Stock < 0 {
		return dErrors.New(dErrors.CodeValidation, "stock must not be negative")
	}
	return nil
}

// DisplayImage is the image URL a client should render.
func (p *Product) DisplayImage() string {
	return CleanImageURL(p.ImageURL)
}

func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock < threshold
}

// CleanImageURL rewrites legacy "//public/x" paths to "/x" and substitutes
// the generic image for empty values.
func CleanImageURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return GenericImage
	}
	if rest, ok := strings.CutPrefix(url, legacyPublicPrefix); ok {
		return "/" + rest
	}
	return url
}

// DefaultImageFor returns the stock artwork for a known category, or the
// generic image.
func DefaultImageFor(category string) string {
	if img, ok := categoryImages[category]; ok {
		return img
	}
	return GenericImage
}

// Category summarizes the products sharing one category label.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Image string `json:"image"`
}

// CategoryImage picks the listing image for a category from its first product.
func CategoryImage(first Product) string {
	if first.ImageURL != "" {
		return first.ImageURL
	}
	if img, ok := categoryImages[first.Category]; ok {
		return img
	}
	return FallbackCategoryImage
}
