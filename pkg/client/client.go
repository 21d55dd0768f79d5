// Package client provides the HabiCasa Go SDK for the ally API: phone
// verification, the property catalog, and the lead pipeline.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Ally is an ally account as returned by the API.
type Ally struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Property is a catalog listing.
type Property struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	City        string    `json:"city"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Lead is a client lead in the ally's pipeline.
type Lead struct {
	ID              string    `json:"id"`
	AllyID          string    `json:"ally_id"`
	PropertyID      string    `json:"property_id"`
	ClientName      string    `json:"client_name"`
	ClientPhone     string    `json:"client_phone"`
	Notes           string    `json:"notes"`
	Status          string    `json:"status"`
	CommissionBps   int       `json:"commission_bps"`
	CommissionCents int64     `json:"commission_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// VerifyResult holds the session returned by a successful code verification.
type VerifyResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Ally    *Ally  `json:"ally"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Client is the HabiCasa SDK entry point.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	bearerToken string
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithToken attaches a pre-obtained session token to every request.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.bearerToken = token
		return nil
	}
}

// WithTimeout overrides the default 10-second request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = d
		return nil
	}
}

// New creates a new Client connected to baseURL.
//
//	c, err := client.New("https://api.habicasa.gt", client.WithToken(token))
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. Useful in tests and program init.
func MustNew(baseURL string, opts ...Option) *Client {
	c, err := New(baseURL, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// SetToken replaces the session token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.bearerToken = token
	c.mu.Unlock()
}

// Health checks the API's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// SendVerification requests a one-time code for the phone number. The code
// is delivered out of band over WhatsApp.
func (c *Client) SendVerification(ctx context.Context, phone string) error {
	body := map[string]string{"phoneNumber": phone}
	return c.do(ctx, http.MethodPost, "/api/auth/send-verification", body, nil)
}

// VerifyCode submits the one-time code. On success the returned session
// token is stored on the client for subsequent authenticated calls.
func (c *Client) VerifyCode(ctx context.Context, phone, code string) (*VerifyResult, error) {
	body := map[string]string{"phoneNumber": phone, "code": code}
	var out VerifyResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify-code", body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// ListProperties returns the active property catalog.
func (c *Client) ListProperties(ctx context.Context) ([]Property, error) {
	var out struct {
		Properties []Property `json:"properties"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/properties", nil, &out); err != nil {
		return nil, err
	}
	return out.Properties, nil
}

// GetProperty returns a single property by ID.
func (c *Client) GetProperty(ctx context.Context, id string) (*Property, error) {
	var out Property
	if err := c.do(ctx, http.MethodGet, "/api/v1/properties/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLead captures a new client lead against a property.
func (c *Client) CreateLead(ctx context.Context, propertyID, clientName, clientPhone, notes string) (*Lead, error) {
	body := map[string]string{
		"property_id":  propertyID,
		"client_name":  clientName,
		"client_phone": clientPhone,
		"notes":        notes,
	}
	var out Lead
	if err := c.do(ctx, http.MethodPost, "/api/v1/leads", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLeads returns the authenticated ally's leads, newest first.
func (c *Client) ListLeads(ctx context.Context) ([]Lead, error) {
	var out struct {
		Leads []Lead `json:"leads"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/leads", nil, &out); err != nil {
		return nil, err
	}
	return out.Leads, nil
}

// UpdateLeadStatus moves a lead through the pipeline.
func (c *Client) UpdateLeadStatus(ctx context.Context, leadID, status string) (*Lead, error) {
	body := map[string]string{"status": status}
	var out Lead
	if err := c.do(ctx, http.MethodPatch, "/api/v1/leads/"+leadID+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs a JSON request against the API, decoding the response into
// out when non-nil. Non-2xx responses are returned as *APIError with the
// server's message when one is present.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.Lock()
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
