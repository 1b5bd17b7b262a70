package shopping

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body any) error
	POST(path string, body any) error
	GET(path string) error
	Status() int
	Decode(v any) error
	ProductID(name string) (string, error)
	Scoped(name string) string
}

// RegisterSteps registers catalog, cart and checkout step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &shoppingSteps{tc: tc}

	ctx.Step(`^I search the catalog for "([^"]*)"$`, steps.search)
	ctx.Step(`^the results should include "([^"]*)"$`, steps.resultsShouldInclude)

	ctx.Step(`^I add "([^"]*)" to my cart$`, steps.addOnce)
	ctx.Step(`^I add "([^"]*)" to my cart (\d+) times$`, steps.addTimes)
	ctx.Step(`^I change the quantity of "([^"]*)" by (-?\d+)$`, steps.adjust)
	ctx.Step(`^my cart should have (\d+) lines? with subtotal (\d+)$`, steps.cartShouldHave)
	ctx.Step(`^the line for "([^"]*)" should have quantity (\d+)$`, steps.lineQuantity)
	ctx.Step(`^the cart quote should be shipping (\d+), tax (\d+), total (\d+)$`, steps.quoteShouldBe)

	ctx.Step(`^I check out$`, steps.checkout)
	ctx.Step(`^my order history should show (\d+) orders? totalling (\d+)$`, steps.historyShouldShow)
}

type shoppingSteps struct {
	tc   TestContext
	cart cartView
}

type cartView struct {
	Items []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	Subtotal int64 `json:"subtotal"`
	Quote    struct {
		Shipping int64 `json:"shipping"`
		Tax      int64 `json:"tax"`
		Total    int64 `json:"total"`
	} `json:"quote"`
}

func (s *shoppingSteps) search(_ context.Context, term string) error {
	return s.tc.GET("/products?search=" + url.QueryEscape(term))
}

func (s *shoppingSteps) resultsShouldInclude(_ context.Context, name string) error {
	var products []struct {
		Name string `json:"name"`
	}
	if err := s.tc.Decode(&products); err != nil {
		return err
	}
	want := s.tc.Scoped(name)
	for _, p := range products {
		if p.Name == want {
			return nil
		}
	}
	return fmt.Errorf("%q not found in %d results", want, len(products))
}

func (s *shoppingSteps) addOnce(ctx context.Context, name string) error {
	return s.addTimes(ctx, name, 1)
}

func (s *shoppingSteps) addTimes(_ context.Context, name string, times int) error {
	pid, err := s.tc.ProductID(name)
	if err != nil {
		return err
	}
	for range times {
		if err := s.tc.POST("/cart/items", map[string]any{"productId": pid, "quantity": 1}); err != nil {
			return err
		}
		if s.tc.Status() != http.StatusOK {
			return fmt.Errorf("add to cart returned %d", s.tc.Status())
		}
	}
	return s.tc.Decode(&s.cart)
}

func (s *shoppingSteps) adjust(_ context.Context, name string, delta int) error {
	pid, err := s.tc.ProductID(name)
	if err != nil {
		return err
	}
	if err := s.tc.Do(http.MethodPatch, "/cart/items/"+pid, map[string]any{"delta": delta}); err != nil {
		return err
	}
	return s.tc.Decode(&s.cart)
}

func (s *shoppingSteps) refresh() error {
	if err := s.tc.GET("/cart"); err != nil {
		return err
	}
	return s.tc.Decode(&s.cart)
}

func (s *shoppingSteps) cartShouldHave(_ context.Context, lines int, subtotal int64) error {
	if err := s.refresh(); err != nil {
		return err
	}
	if len(s.cart.Items) != lines {
		return fmt.Errorf("expected %d cart lines, got %d", lines, len(s.cart.Items))
	}
	if s.cart.Subtotal != subtotal {
		return fmt.Errorf("expected subtotal %d, got %d", subtotal, s.cart.Subtotal)
	}
	return nil
}

func (s *shoppingSteps) lineQuantity(_ context.Context, name string, quantity int) error {
	pid, err := s.tc.ProductID(name)
	if err != nil {
		return err
	}
	if err := s.refresh(); err != nil {
		return err
	}
	for _, item := range s.cart.Items {
		if item.ID == pid {
			if item.Quantity != quantity {
				return fmt.Errorf("expected quantity %d for %s, got %d", quantity, name, item.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("%s is not in the cart", name)
}

func (s *shoppingSteps) quoteShouldBe(_ context.Context, shipping, tax, total int64) error {
	if err := s.refresh(); err != nil {
		return err
	}
	q := s.cart.Quote
	if q.Shipping != shipping || q.Tax != tax || q.Total != total {
		return fmt.Errorf("expected quote %d/%d/%d, got %d/%d/%d", shipping, tax, total, q.Shipping, q.Tax, q.Total)
	}
	return nil
}

func (s *shoppingSteps) checkout(_ context.Context) error {
	return s.tc.POST("/checkout", map[string]any{
		"email":     "buyer@e2e.storefront.test",
		"phone":     "9876543210",
		"full_name": "E2E Buyer",
		"address":   "12 Market Road",
		"city":      "Pune",
		"pincode":   "411001",
	})
}

func (s *shoppingSteps) historyShouldShow(_ context.Context, count int, total int64) error {
	if err := s.tc.GET("/me/orders"); err != nil {
		return err
	}
	var orders []struct {
		Status string `json:"status"`
		Total  int64  `json:"total_amount"`
	}
	if err := s.tc.Decode(&orders); err != nil {
		return err
	}
	if len(orders) != count {
		return fmt.Errorf("expected %d orders, got %d", count, len(orders))
	}
	if count > 0 && orders[0].Total != total {
		return fmt.Errorf("expected latest order total %d, got %d", total, orders[0].Total)
	}
	return nil
}
