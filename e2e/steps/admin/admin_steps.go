package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body any) error
	POST(path string, body any) error
	GET(path string) error
	Status() int
	Field(name string) (any, error)
	Decode(v any) error
	Actor() string
	ActAs(actor string)
	UserID(actor string) string
	ProductID(name string) (string, error)
	RememberProduct(name, productID string)
	Scoped(name string) string
}

// RegisterSteps registers back-office and deleteUserAccount step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc, docs: map[string]map[string]any{}}

	ctx.Step(`^the admin creates product "([^"]*)" priced (\d+) in "([^"]*)"$`, steps.createProduct)
	ctx.Step(`^the admin reprices "([^"]*)" to (\d+)$`, steps.reprice)
	ctx.Step(`^the admin sets the latest order of "([^"]*)" to "([^"]*)"$`, steps.setLatestOrderStatus)
	ctx.Step(`^the latest order of "([^"]*)" should have status "([^"]*)" and item price (\d+)$`, steps.latestOrderShouldHave)

	ctx.Step(`^I request deletion of "([^"]*)"$`, steps.requestDeletion)
	ctx.Step(`^the callable should fail with "([^"]*)"$`, steps.callableShouldFail)
	ctx.Step(`^the callable should succeed$`, steps.callableShouldSucceed)
}

type adminSteps struct {
	tc   TestContext
	docs map[string]map[string]any
}

type order struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Status string `json:"status"`
	Items  []struct {
		Price int64 `json:"price"`
	} `json:"items"`
}

// asAdmin runs fn with the admin token and restores the previous caller.
func (s *adminSteps) asAdmin(fn func() error) error {
	prev := s.tc.Actor()
	s.tc.ActAs("admin")
	defer s.tc.ActAs(prev)
	return fn()
}

func (s *adminSteps) createProduct(_ context.Context, name string, price int64, category string) error {
	doc := map[string]any{
		"name":     s.tc.Scoped(name),
		"price":    price,
		"category": category,
		"stock":    10,
	}
	return s.asAdmin(func() error {
		if err := s.tc.POST("/admin/products", doc); err != nil {
			return err
		}
		if s.tc.Status() != http.StatusCreated {
			return fmt.Errorf("create product returned %d", s.tc.Status())
		}
		pid, err := s.tc.Field("id")
		if err != nil {
			return err
		}
		s.tc.RememberProduct(name, fmt.Sprint(pid))
		s.docs[name] = doc
		return nil
	})
}

func (s *adminSteps) reprice(_ context.Context, name string, price int64) error {
	pid, err := s.tc.ProductID(name)
	if err != nil {
		return err
	}
	doc := s.docs[name]
	doc["price"] = price
	return s.asAdmin(func() error {
		if err := s.tc.Do(http.MethodPut, "/admin/products/"+pid, doc); err != nil {
			return err
		}
		if s.tc.Status() != http.StatusOK {
			return fmt.Errorf("update product returned %d", s.tc.Status())
		}
		return nil
	})
}

func (s *adminSteps) latestOrderOf(actor string) (order, error) {
	if err := s.tc.GET("/admin/orders"); err != nil {
		return order{}, err
	}
	var orders []order
	if err := s.tc.Decode(&orders); err != nil {
		return order{}, err
	}
	uid := s.tc.UserID(actor)
	for _, o := range orders {
		if o.UserID == uid {
			return o, nil
		}
	}
	return order{}, fmt.Errorf("no order found for %s", actor)
}

func (s *adminSteps) setLatestOrderStatus(_ context.Context, actor, status string) error {
	return s.asAdmin(func() error {
		o, err := s.latestOrderOf(actor)
		if err != nil {
			return err
		}
		return s.tc.Do(http.MethodPut, "/admin/orders/"+o.ID+"/status", map[string]any{"status": status})
	})
}

func (s *adminSteps) latestOrderShouldHave(_ context.Context, actor, status string, price int64) error {
	return s.asAdmin(func() error {
		o, err := s.latestOrderOf(actor)
		if err != nil {
			return err
		}
		if o.Status != status {
			return fmt.Errorf("expected status %q, got %q", status, o.Status)
		}
		if len(o.Items) == 0 || o.Items[0].Price != price {
			return fmt.Errorf("expected first item price %d, got %+v", price, o.Items)
		}
		return nil
	})
}

// requestDeletion targets "myself" or a named actor.
func (s *adminSteps) requestDeletion(_ context.Context, target string) error {
	uid := s.tc.UserID(target)
	if target == "myself" {
		uid = s.tc.UserID(s.tc.Actor())
	}
	return s.tc.POST("/functions/deleteUserAccount", map[string]any{"uid": uid})
}

func (s *adminSteps) callableShouldFail(_ context.Context, status string) error {
	got, err := s.tc.Field("error")
	if err != nil {
		return err
	}
	if fmt.Sprint(got) != status {
		return fmt.Errorf("expected callable error %q, got %q", status, got)
	}
	return nil
}

func (s *adminSteps) callableShouldSucceed(_ context.Context) error {
	if s.tc.Status() != http.StatusOK {
		return fmt.Errorf("callable returned %d", s.tc.Status())
	}
	ok, err := s.tc.Field("success")
	if err != nil {
		return err
	}
	if ok != true {
		return fmt.Errorf("expected success=true, got %v", ok)
	}
	return nil
}
