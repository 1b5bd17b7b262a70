package e2e

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"storefront/e2e/steps/admin"
	"storefront/e2e/steps/identity"
	"storefront/e2e/steps/shopping"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^I GET "([^"]*)"$`, func(_ context.Context, path string) error { return tc.GET(path) })
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)

	identity.RegisterSteps(ctx, tc)
	shopping.RegisterSteps(ctx, tc)
	admin.RegisterSteps(ctx, tc)
}

func (tc *TestContext) responseStatusShouldBe(_ context.Context, status int) error {
	if tc.Status() != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, tc.Status(), string(tc.lastBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(_ context.Context, field, want string) error {
	v, err := tc.Field(field)
	if err != nil {
		return err
	}
	got := fmt.Sprint(v)
	if f, ok := v.(float64); ok {
		got = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if got != want {
		return fmt.Errorf("field %q: expected %q, got %q", field, want, got)
	}
	return nil
}
