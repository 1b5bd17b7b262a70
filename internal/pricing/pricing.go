// Package pricing derives shipping, tax and the grand total from a cart
// subtotal. All arithmetic is integer, in whole currency units.
package pricing

import (
	"storefront/internal/platform/config"
	id "storefront/pkg/domain"
)

const (
	DefaultFreeShippingThreshold id.Amount = 2000
	DefaultFlatShippingFee       id.Amount = 80
	DefaultTaxBasisPoints        int64     = 1800

	basisPointsPerUnit = 10000
)

// Quote is the priced breakdown of a subtotal.
type Quote struct {
	Subtotal id.Amount `json:"subtotal"`
	Shipping id.Amount `json:"shipping"`
	Tax      id.Amount `json:"tax"`
	Total    id.Amount `json:"total"`
}

type Calculator struct {
	freeShippingThreshold id.Amount
	flatShippingFee       id.Amount
	taxBasisPoints        int64
}

type Option func(*Calculator)

func WithFreeShippingThreshold(a id.Amount) Option {
	return func(c *Calculator) { c.freeShippingThreshold = a }
}

func WithFlatShippingFee(a id.Amount) Option {
	return func(c *Calculator) { c.flatShippingFee = a }
}

// WithTaxBasisPoints sets the tax rate; 1800 is 18%.
func WithTaxBasisPoints(bp int64) Option {
	return func(c *Calculator) { c.taxBasisPoints = bp }
}

func New(opts ...Option) *Calculator {
	c := &Calculator{
		freeShippingThreshold: DefaultFreeShippingThreshold,
		flatShippingFee:       DefaultFlatShippingFee,
		taxBasisPoints:        DefaultTaxBasisPoints,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig builds a Calculator from the pricing section of the config.
func FromConfig(cfg config.Pricing) *Calculator {
	return New(
		WithFreeShippingThreshold(id.Amount(cfg.FreeShippingThreshold)),
		WithFlatShippingFee(id.Amount(cfg.FlatShippingFee)),
		WithTaxBasisPoints(cfg.TaxBasisPoints),
	)
}

// Quote prices a subtotal. Shipping is free once the subtotal reaches the
// threshold. Tax is rounded half up to the nearest unit. Negative subtotals
// are treated as zero.
func (c *Calculator) Quote(subtotal id.Amount) Quote {
	if subtotal < 0 {
		subtotal = 0
	}
	shipping := c.flatShippingFee
	if subtotal >= c.freeShippingThreshold {
		shipping = 0
	}
	tax := id.Amount((int64(subtotal)*c.taxBasisPoints + basisPointsPerUnit/2) / basisPointsPerUnit)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
