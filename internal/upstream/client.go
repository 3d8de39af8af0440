package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/openstudio/register-gateway/internal/checkin"
	"github.com/openstudio/register-gateway/internal/lookup"
	"github.com/openstudio/register-gateway/internal/register"
	"github.com/openstudio/register-gateway/pkg/config"
	"github.com/openstudio/register-gateway/pkg/logger"
	"github.com/openstudio/register-gateway/pkg/metrics"
)

// Endpoint labels for latency metrics.
const (
	endpointRegister       = "register"
	endpointCustomerLookup = "customer_lookup"
	endpointGuestLookup    = "guest_lookup"
	endpointCheckIn        = "checkin"
)

// Client talks to the school server that owns pricing, invoices, and
// check-in state. All unsafe requests carry the CSRF token sourced from the
// server's own cookie, which a cookie jar keeps across calls.
type Client struct {
	cfg     config.UpstreamConfig
	base    *url.URL
	http    *http.Client
	logg    *logger.Logger
	metrics *metrics.RegisterMetrics
}

// NewClient builds the school-server client.
func NewClient(cfg config.UpstreamConfig, logg *logger.Logger, m *metrics.RegisterMetrics) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		logg:    logg,
		metrics: m,
	}, nil
}

type submitPayload struct {
	*register.Draft
	Finalize bool `json:"finalize,omitempty"`
}

type submitResponse struct {
	Status   string                 `json:"status"`
	Redirect string                 `json:"redirect,omitempty"`
	Invoice  *register.Draft        `json:"invoice,omitempty"`
	Errors   []register.SubmitError `json:"errors,omitempty"`
}

// SubmitDraft sends the full draft to the pricing endpoint, merging in the
// finalize flag when set, and parses the authoritative outcome. A returned
// error means the server never produced a usable verdict (transport-level
// failure); application-level rejections come back inside the outcome.
func (c *Client) SubmitDraft(ctx context.Context, draft *register.Draft, finalize bool) (*register.SubmitOutcome, error) {
	payload := submitPayload{Draft: draft}
	if finalize {
		payload.Finalize = true
	}

	var parsed submitResponse
	if err := c.postJSON(ctx, endpointRegister, c.cfg.RegisterPath, payload, &parsed); err != nil {
		return nil, err
	}
	return &register.SubmitOutcome{
		Status:   parsed.Status,
		Redirect: parsed.Redirect,
		Invoice:  parsed.Invoice,
		Errors:   parsed.Errors,
	}, nil
}

// CustomerLookup returns the per-event registration rows for a customer.
func (c *Client) CustomerLookup(ctx context.Context, input lookup.CustomerInput) ([]lookup.CustomerRow, error) {
	var rows []lookup.CustomerRow
	if err := c.postJSON(ctx, endpointCustomerLookup, c.cfg.CustomerLookupPath, input, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GuestLookup returns the guest-list rows for a non-customer guest.
func (c *Client) GuestLookup(ctx context.Context, input lookup.GuestInput) (*lookup.GuestResult, error) {
	var result lookup.GuestResult
	if err := c.postJSON(ctx, endpointGuestLookup, c.cfg.GuestLookupPath, input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type checkInPayload struct {
	Request string `json:"request"`
	checkin.UpdateInput
}

type checkInResponse struct {
	Status string `json:"status"`
}

// CheckIn forwards a check-in update and reports non-success as an error.
func (c *Client) CheckIn(ctx context.Context, input checkin.UpdateInput) error {
	payload := checkInPayload{Request: "update", UpdateInput: input}
	var parsed checkInResponse
	if err := c.postJSON(ctx, endpointCheckIn, c.cfg.CheckInPath, payload, &parsed); err != nil {
		return err
	}
	if parsed.Status != register.StatusSuccess {
		return &Error{Endpoint: endpointCheckIn, Status: http.StatusOK, Codes: []string{parsed.Status}}
	}
	return nil
}

// Ping verifies the school server answers at the base URL. It doubles as
// the CSRF cookie primer on startup.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String(), nil)
	if err != nil {
		return fmt.Errorf("building upstream ping request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Endpoint: "ping", cause: err}
	}
	defer drain(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return &Error{Endpoint: "ping", Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", endpoint, err)
	}

	target := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.csrfToken(ctx); token != "" {
		req.Header.Set(c.cfg.CSRFHeaderName, token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveUpstream(endpoint, time.Since(start))
	if err != nil {
		return &Error{Endpoint: endpoint, cause: err}
	}
	defer drain(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Endpoint: endpoint, Status: resp.StatusCode, cause: err}
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &Error{Endpoint: endpoint, Status: resp.StatusCode, cause: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// csrfToken returns the CSRF cookie value, priming the jar with a safe GET
// when the cookie is not held yet.
func (c *Client) csrfToken(ctx context.Context) string {
	if token := c.cookieValue(); token != "" {
		return token
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String(), nil)
	if err != nil {
		return ""
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, "upstream csrf prime failed")
		}
		return ""
	}
	drain(resp.Body)
	return c.cookieValue()
}

func (c *Client) cookieValue() string {
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == c.cfg.CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
