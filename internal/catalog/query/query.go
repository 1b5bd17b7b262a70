// Package query filters and orders an already-fetched product list. Every
// function returns a new slice and preserves the input order except
// SortByPrice.
package query

import (
	"slices"
	"strings"

	"storefront/internal/catalog/models"
	dErrors "storefront/pkg/domain-errors"
)

type Direction string

const (
	SortNone      Direction = ""
	SortPriceAsc  Direction = "price_asc"
	SortPriceDesc Direction = "price_desc"
)

// ParseDirection accepts "", "none", "price_asc" and "price_desc".
func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case SortNone, "none":
		return SortNone, nil
	case SortPriceAsc:
		return SortPriceAsc, nil
	case SortPriceDesc:
		return SortPriceDesc, nil
	default:
		return SortNone, dErrors.New(dErrors.CodeBadRequest, "sort must be price_asc or price_desc")
	}
}

// FilterBySubstring keeps products whose name, category or description
// contains term, ignoring case. An empty term keeps everything.
func FilterBySubstring(products []models.Product, term string) []models.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(products)
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Category), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCategoryExact keeps products whose category equals category,
// ignoring case. An empty category keeps everything.
func FilterByCategoryExact(products []models.Product, category string) []models.Product {
	category = strings.TrimSpace(category)
	if category == "" {
		return slices.Clone(products)
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

func FilterBestsellers(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Bestseller {
			out = append(out, p)
		}
	}
	return out
}

// SortByPrice orders by price; equal prices keep their relative order.
func SortByPrice(products []models.Product, dir Direction) []models.Product {
	out := slices.Clone(products)
	switch dir {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b models.Product) int { return compareAmount(a, b) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b models.Product) int { return compareAmount(b, a) })
	}
	return out
}

func compareAmount(a, b models.Product) int {
	switch {
	case a.Price < b.Price:
		return -1
	case a.Price > b.Price:
		return 1
	default:
		return 0
	}
}

// Params combines the storefront listing filters.
type Params struct {
	Search      string
	Category    string
	Bestsellers bool
	Sort        Direction
}

// Apply runs the filters in a fixed order: category, search, bestseller, sort.
func Apply(products []models.Product, p Params) []models.Product {
	out := FilterByCategoryExact(products, p.Category)
	out = FilterBySubstring(out, p.Search)
	if p.Bestsellers {
		out = FilterBestsellers(out)
	}
	return SortByPrice(out, p.Sort)
}
