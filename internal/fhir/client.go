package fhir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const mimeFHIRJSON = "application/fhir+json"

// DefaultTimeout bounds each submission request.
const DefaultTimeout = 30 * time.Second

// SubmitResult classifies the outcome of one resource submission.
//
// Success is true for any 2xx status. Resource carries the parsed response
// body when the server returned valid JSON; a 2xx with an unparseable body
// still counts as success with a nil Resource and the raw text in RawBody.
// Err is set only for request-construction and transport failures.
type SubmitResult struct {
	Success    bool
	StatusCode int
	Resource   Resource
	RawBody    string
	Err        error
}

// Outcome decodes RawBody as an OperationOutcome, or nil if it is not one.
func (r SubmitResult) Outcome() *OperationOutcome {
	var outcome OperationOutcome
	if err := json.Unmarshal([]byte(r.RawBody), &outcome); err != nil {
		return nil
	}
	if outcome.ResourceType != "OperationOutcome" || len(outcome.Issue) == 0 {
		return nil
	}
	return &outcome
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client used for submissions.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

// Client creates resources on a FHIR server via plain REST create
// (POST {base}/{resourceType}). It performs exactly one attempt per call;
// retry policy is deliberately out of scope.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Client for the given FHIR base URL.
func NewClient(baseURL string, logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the server base URL the client submits to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit POSTs one resource to {base}/{resourceType} and classifies the
// response. Transport failures and non-2xx statuses are reported through
// the result, never as a panic or silent drop.
func (c *Client) Submit(ctx context.Context, resourceType string, resource Resource) SubmitResult {
	payload, err := json.Marshal(resource)
	if err != nil {
		return SubmitResult{Err: fmt.Errorf("marshal %s: %w", resourceType, err)}
	}

	url := c.baseURL + "/" + resourceType
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return SubmitResult{Err: fmt.Errorf("build request for %s: %w", resourceType, err)}
	}
	req.Header.Set("Content-Type", mimeFHIRJSON)
	req.Header.Set("Accept", mimeFHIRJSON)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("resource_type", resourceType).Msg("submit failed")
		return SubmitResult{Err: fmt.Errorf("post %s: %w", resourceType, err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		bodyBytes = nil
	}

	result := SubmitResult{
		StatusCode: resp.StatusCode,
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		RawBody:    string(bodyBytes),
	}

	var parsed Resource
	if json.Unmarshal(bodyBytes, &parsed) == nil {
		result.Resource = parsed
	}

	c.logger.Debug().
		Str("resource_type", resourceType).
		Int("status", resp.StatusCode).
		Bool("success", result.Success).
		Dur("latency", time.Since(start)).
		Msg("submit")

	return result
}
