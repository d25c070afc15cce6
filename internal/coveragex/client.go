// Package coveragex wraps the CoverageX vehicle-quoting REST API.
//
// Each method maps to one upstream endpoint. Failures (transport errors and
// non-2xx responses) are surfaced as errors carrying the upstream status and
// body; the tool dispatcher decides how to represent them to the model.
package coveragex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tmarkell/quotebot/internal/logging"
)

// Config holds the upstream connection settings.
type Config struct {
	BaseURL        string // e.g. https://coveragex.com/api
	DealManagerURL string // sibling deal-manager path for contract save
	Ref            string // account-scoped API ref token
}

// APIError is a non-2xx response from the quoting backend.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coveragex API error (%d): %s", e.Status, e.Body)
}

// Client issues authenticated calls to the CoverageX API.
type Client struct {
	cfg  Config
	http *retryablehttp.Client
	log  *logging.Logger
}

// New creates a CoverageX client. Adapter calls get bounded retry with
// backoff; the per-request deadline comes from the caller's context.
func New(cfg Config, log *logging.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil

	return &Client{
		cfg:  cfg,
		http: rc,
		log:  log.Sub("coveragex"),
	}
}

// Ref returns the account-scoped API ref token.
func (c *Client) Ref() string { return c.cfg.Ref }

// NewSession issues a pricing-session reference token scoped to a
// year/state pair. Subsequent lookup calls pass the reference back.
func (c *Client) NewSession(ctx context.Context, year, state string) (string, error) {
	var out struct {
		Reference string `json:"reference"`
	}
	body := map[string]string{"year": year, "state": state}
	if err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/quote/session", c.cfg.Ref, body, &out); err != nil {
		return "", fmt.Errorf("creating quote session: %w", err)
	}
	if out.Reference == "" {
		return "", fmt.Errorf("quote session response missing reference")
	}
	return out.Reference, nil
}

// Makes fetches the available vehicle makes for a year.
func (c *Client) Makes(ctx context.Context, ref, year string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/years/%s/makes", c.cfg.BaseURL, url.PathEscape(year))
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, ref, nil, &out); err != nil {
		return nil, fmt.Errorf("fetching makes for year %s: %w", year, err)
	}
	return out, nil
}

// Models fetches the available models for a year and make.
func (c *Client) Models(ctx context.Context, ref, year, make string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/years/%s/makes/%s/models",
		c.cfg.BaseURL, url.PathEscape(year), url.PathEscape(make))
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, ref, nil, &out); err != nil {
		return nil, fmt.Errorf("fetching models for %s %s: %w", year, make, err)
	}
	return out, nil
}

// Plan fetches a priced plan for the given vehicle selection.
func (c *Client) Plan(ctx context.Context, ref string, q PlanQuery) (*PricedPlan, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/quote/plans", ref, q, &raw); err != nil {
		return nil, fmt.Errorf("fetching priced plan: %w", err)
	}
	var plan PricedPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("parsing priced plan: %w", err)
	}
	plan.Raw = raw
	return &plan, nil
}

// SubmitQuote submits the quote payload for a session.
func (c *Client) SubmitQuote(ctx context.Context, ref string, req QuoteRequest) (*QuoteResult, error) {
	var out QuoteResult
	if err := c.do(ctx, http.MethodPut, c.cfg.BaseURL+"/quote/quotes", ref, req, &out); err != nil {
		return nil, fmt.Errorf("submitting quote: %w", err)
	}
	return &out, nil
}

// ProcessPayment processes the deposit for a submitted quote.
func (c *Client) ProcessPayment(ctx context.Context, ref string, req PaymentRequest) (*PaymentResult, error) {
	var out PaymentResult
	if err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/quote/payments", ref, req, &out); err != nil {
		return nil, fmt.Errorf("processing payment: %w", err)
	}
	return &out, nil
}

// SaveContract finalizes the contract with the deal manager.
func (c *Client) SaveContract(ctx context.Context, req ContractRequest) (*ContractResult, error) {
	var out ContractResult
	if err := c.do(ctx, http.MethodPost, c.cfg.DealManagerURL+"/contracts", c.cfg.Ref, req, &out); err != nil {
		return nil, fmt.Errorf("saving contract: %w", err)
	}
	return &out, nil
}

// do issues one authenticated request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, endpoint, ref string, body, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("ref", ref)
	u.RawQuery = q.Encode()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", u.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("upstream call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
