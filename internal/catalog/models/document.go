package models

import (
	"time"

	id "storefront/pkg/domain"
)

// ProductDocument is the loose on-the-wire shape of a product. Imported and
// legacy records name the same field differently; Normalize is the only
// place those aliases are resolved.
type ProductDocument struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Price       id.FlexibleAmount `json:"price"`
	RetailPrice id.FlexibleAmount `json:"retailPrice"`
	Image       string            `json:"image"`
	ImageURL    string            `json:"imageUrl"`
	Stock       *int              `json:"stock"`
	Inventory   *int              `json:"inventory"`
	Bestseller  bool              `json:"bestseller"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
}

// Normalize maps the document onto the canonical Product. price wins over
// retailPrice, image over imageUrl, stock over inventory. A missing ID or
// creation time is left zero for the caller to assign.
func (d ProductDocument) Normalize() (Product, error) {
	p := Product{
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Bestseller:  d.Bestseller,
	}
	if d.ID != "" {
		pid, err := id.ParseProductID(d.ID)
		if err != nil {
			return Product{}, err
		}
		p.ID = pid
	}

	switch {
	case d.Price.Set:
		p.Price = d.Price.Amount
	case d.RetailPrice.Set:
		p.Price = d.RetailPrice.Amount
	}

	p.ImageURL = d.Image
	if p.ImageURL == "" {
		p.ImageURL = d.ImageURL
	}

	switch {
	case d.Stock != nil:
		p.Stock = *d.Stock
	case d.Inventory != nil:
		p.Stock = *d.Inventory
	}

	if d.CreatedAt != nil {
		p.CreatedAt = *d.CreatedAt
		p.UpdatedAt = *d.CreatedAt
	}

	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// HasPrice reports whether either price alias was present.
func (d ProductDocument) HasPrice() bool {
	return d.Price.Set || d.RetailPrice.Set
}

// HasStock reports whether either stock alias was present.
func (d ProductDocument) HasStock() bool {
	return d.Stock != nil || d.Inventory != nil
}
