package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

const customerPassword = "customer-password"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	Status() int
	Field(name string) (any, error)
	Email(actor string) string
	SignedIn(actor, token, userID string)
	ActAs(actor string)
}

// RegisterSteps registers sign-up, sign-in and sign-out step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &identitySteps{tc: tc}

	ctx.Step(`^I sign up as "([^"]*)"$`, steps.signUpAs)
	ctx.Step(`^I am signed in as the admin$`, steps.signInAsAdmin)
	ctx.Step(`^I act as "([^"]*)"$`, steps.actAs)
	ctx.Step(`^I am anonymous$`, steps.anonymous)
	ctx.Step(`^I sign out$`, steps.signOut)
}

type identitySteps struct {
	tc TestContext
}

func (s *identitySteps) signUpAs(_ context.Context, actor string) error {
	err := s.tc.POST("/auth/signup", map[string]any{
		"email":    s.tc.Email(actor),
		"password": customerPassword,
		"name":     actor,
	})
	if err != nil {
		return err
	}
	if s.tc.Status() != http.StatusCreated {
		return fmt.Errorf("sign-up of %s returned %d", actor, s.tc.Status())
	}
	return s.remember(actor)
}

// signInAsAdmin registers the bootstrap admin on first use and signs in on
// later runs against the same server.
func (s *identitySteps) signInAsAdmin(_ context.Context) error {
	s.tc.ActAs("")
	creds := map[string]any{"email": s.tc.Email("admin"), "password": "admin-password"}
	if err := s.tc.POST("/auth/signup", creds); err != nil {
		return err
	}
	if s.tc.Status() == http.StatusConflict {
		if err := s.tc.POST("/auth/signin", creds); err != nil {
			return err
		}
	}
	if s.tc.Status() != http.StatusCreated && s.tc.Status() != http.StatusOK {
		return fmt.Errorf("admin sign-in returned %d", s.tc.Status())
	}
	return s.remember("admin")
}

func (s *identitySteps) remember(actor string) error {
	token, err := s.tc.Field("access_token")
	if err != nil {
		return err
	}
	uid, err := s.tc.Field("uid")
	if err != nil {
		return err
	}
	s.tc.SignedIn(actor, fmt.Sprint(token), fmt.Sprint(uid))
	return nil
}

func (s *identitySteps) actAs(_ context.Context, actor string) error {
	s.tc.ActAs(actor)
	return nil
}

func (s *identitySteps) anonymous(_ context.Context) error {
	s.tc.ActAs("")
	return nil
}

func (s *identitySteps) signOut(_ context.Context) error {
	return s.tc.POST("/auth/signout", nil)
}
