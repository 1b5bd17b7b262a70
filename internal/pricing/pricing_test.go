package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "storefront/pkg/domain"
)

func TestQuote(t *testing.T) {
	calc := New()

	tests := []struct {
		name     string
		subtotal id.Amount
		want     Quote
	}{
		{"above threshold ships free", 2500, Quote{Subtotal: 2500, Shipping: 0, Tax: 450, Total: 2950}},
		{"small order pays flat fee", 200, Quote{Subtotal: 200, Shipping: 80, Tax: 36, Total: 316}},
		{"exactly at threshold ships free", 2000, Quote{Subtotal: 2000, Shipping: 0, Tax: 360, Total: 2360}},
		{"one below threshold pays fee", 1999, Quote{Subtotal: 1999, Shipping: 80, Tax: 360, Total: 2439}},
		{"zero subtotal", 0, Quote{Subtotal: 0, Shipping: 80, Tax: 0, Total: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.Quote(tt.subtotal))
		})
	}
}

func TestQuoteRoundsTaxHalfUp(t *testing.T) {
	calc := New()
	// 18% of 25 is 4.5, 18% of 3 is 0.54
	assert.Equal(t, id.Amount(5), calc.Quote(25).Tax)
	assert.Equal(t, id.Amount(1), calc.Quote(3).Tax)
	assert.Equal(t, id.Amount(0), calc.Quote(2).Tax)
}

func TestQuoteNegativeSubtotalClampsToZero(t *testing.T) {
	q := New().Quote(-50)
	assert.Equal(t, id.Amount(0), q.Subtotal)
	assert.Equal(t, id.Amount(80), q.Total)
}

func TestOptions(t *testing.T) {
	calc := New(
		WithFreeShippingThreshold(500),
		WithFlatShippingFee(40),
		WithTaxBasisPoints(500),
	)
	assert.Equal(t, Quote{Subtotal: 400, Shipping: 40, Tax: 20, Total: 460}, calc.Quote(400))
	assert.Equal(t, Quote{Subtotal: 500, Shipping: 0, Tax: 25, Total: 525}, calc.Quote(500))
}

func TestTotalIsSumOfParts(t *testing.T) {
	calc := New()
	for s := id.Amount(0); s < 5000; s += 37 {
		q := calc.Quote(s)
		assert.Equal(t, q.Subtotal+q.Shipping+q.Tax, q.Total, "subtotal %d", s)
	}
}
