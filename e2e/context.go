// Package e2e drives a running facegate server over HTTP from Gherkin
// scenarios. Point FACEGATE_E2E_URL at the server under test; scenarios
// expect the station key from the feature background to be provisioned.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// TestContext holds per-scenario HTTP state shared by all step packages.
type TestContext struct {
	baseURL string
	client  *http.Client

	token string

	lastStatus int
	lastBody   map[string]interface{}
}

// NewTestContext builds a context against FACEGATE_E2E_URL, defaulting to a
// local server.
func NewTestContext() *TestContext {
	baseURL := os.Getenv("FACEGATE_E2E_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &TestContext{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Reset clears scenario state so scenarios stay independent.
func (tc *TestContext) Reset() {
	tc.token = ""
	tc.lastStatus = 0
	tc.lastBody = nil
}

// POST sends a JSON body, attaching the bearer token when one is held.
func (tc *TestContext) POST(path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// GET sends a request with optional extra headers, attaching the bearer
// token when one is held.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	if tc.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	_ = json.NewDecoder(resp.Body).Decode(&tc.lastBody)
	return nil
}

// LastStatus returns the last response status code.
func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

// GetResponseField returns a top-level field from the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	v, ok := tc.lastBody[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q (body: %v)", field, tc.lastBody)
	}
	return v, nil
}

// SetToken stores the bearer token for subsequent requests.
func (tc *TestContext) SetToken(token string) {
	tc.token = token
}
