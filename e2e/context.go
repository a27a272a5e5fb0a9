package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"folio/internal/contact/models"
)

// TestContext holds state between test steps. Each scenario gets a fresh
// in-process server so rate limit counters never leak across scenarios.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	server *httptest.Server
	clock  *Clock
	sender *RecordingSender
}

// NewTestContext creates a new test context
func NewTestContext() *TestContext {
	return &TestContext{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Start launches a fresh server for the scenario.
func (tc *TestContext) Start() error {
	tc.Stop()
	tc.clock = &Clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	tc.sender = &RecordingSender{}
	app, err := newApp(tc.clock, tc.sender)
	if err != nil {
		return err
	}
	tc.server = httptest.NewServer(app)
	tc.BaseURL = tc.server.URL
	tc.LastResponse = nil
	tc.LastResponseBody = nil
	return nil
}

func (tc *TestContext) Stop() {
	if tc.server != nil {
		tc.server.Close()
		tc.server = nil
	}
}

// POSTWithHeaders makes a POST request with optional headers and stores the response
func (tc *TestContext) POSTWithHeaders(path string, body any, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(data), headers)
}

// POSTRaw sends body as-is.
func (tc *TestContext) POSTRaw(path, body string, headers map[string]string) error {
	return tc.do(http.MethodPost, path, strings.NewReader(body), headers)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// Getter methods for step package interfaces

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseHeader(name string) string {
	if tc.LastResponse == nil {
		return ""
	}
	return tc.LastResponse.Header.Get(name)
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

func (tc *TestContext) SentMessages() []*models.Message {
	return tc.sender.Sent()
}

func (tc *TestContext) SetProviderFailing(failing bool) {
	tc.sender.SetFailing(failing)
}

func (tc *TestContext) AdvanceClock(d time.Duration) {
	tc.clock.Advance(d)
}
