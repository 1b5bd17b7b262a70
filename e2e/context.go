// Package e2e drives a running storefront over HTTP with godog scenarios.
// Point STOREFRONT_E2E_URL at a server started with
// STOREFRONT_AUTH_BOOTSTRAP_ADMINS containing AdminEmail and
// STOREFRONT_RATELIMIT_ENABLED=false.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	AdminEmail     = "admin@e2e.storefront.test"
	AdminPassword  = "admin-password"
)

// TestContext carries per-scenario state: who is signed in, the last
// response and the IDs created along the way.
type TestContext struct {
	baseURL string
	client  *http.Client
	runID   string

	actor    string
	tokens   map[string]string
	userIDs  map[string]string
	products map[string]string

	lastStatus int
	lastBody   []byte
}

func NewTestContext() *TestContext {
	base := os.Getenv("STOREFRONT_E2E_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return &TestContext{
		baseURL:  strings.TrimRight(base, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		runID:    uuid.NewString()[:8],
		tokens:   map[string]string{},
		userIDs:  map[string]string{},
		products: map[string]string{},
	}
}

// Email returns a scenario-unique address for actor, except for the
// bootstrap admin whose address is fixed.
func (tc *TestContext) Email(actor string) string {
	if actor == "admin" {
		return AdminEmail
	}
	return fmt.Sprintf("%s-%s@e2e.storefront.test", actor, tc.runID)
}

func (tc *TestContext) Do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := tc.tokens[tc.actor]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) POST(path string, body any) error { return tc.Do(http.MethodPost, path, body) }
func (tc *TestContext) GET(path string) error            { return tc.Do(http.MethodGet, path, nil) }

func (tc *TestContext) Status() int { return tc.lastStatus }

func (tc *TestContext) Decode(v any) error {
	if err := json.Unmarshal(tc.lastBody, v); err != nil {
		return fmt.Errorf("decode response %q: %w", string(tc.lastBody), err)
	}
	return nil
}

// Field returns a top-level field of the last JSON object response.
func (tc *TestContext) Field(name string) (any, error) {
	var body map[string]any
	if err := tc.Decode(&body); err != nil {
		return nil, err
	}
	v, ok := body[name]
	if !ok {
		return nil, fmt.Errorf("field %q missing from %s", name, string(tc.lastBody))
	}
	return v, nil
}

// SignedIn records the token of actor and makes actor the current caller.
func (tc *TestContext) SignedIn(actor, token, userID string) {
	tc.tokens[actor] = token
	tc.userIDs[actor] = userID
	tc.actor = actor
}

// ActAs switches the caller; an unknown actor sends no token.
func (tc *TestContext) ActAs(actor string) { tc.actor = actor }

func (tc *TestContext) Actor() string { return tc.actor }

func (tc *TestContext) UserID(actor string) string { return tc.userIDs[actor] }

func (tc *TestContext) RememberProduct(name, productID string) { tc.products[name] = productID }

func (tc *TestContext) ProductID(name string) (string, error) {
	pid, ok := tc.products[name]
	if !ok {
		return "", fmt.Errorf("product %q was not created in this scenario", name)
	}
	return pid, nil
}

// Scoped prefixes a name with the run ID so scenarios sharing a server do
// not see each other's catalog entries.
func (tc *TestContext) Scoped(name string) string {
	return name + " " + tc.runID
}
