// Package api is the HTTP client for the exam service: test catalog fetch,
// attempt submission, and review retrieval. All calls attach the bearer
// credential from the configured token source and decode the service's
// standard response envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-client/internal/auth"
	"github.com/stemsi/exstem-client/internal/model"
)

// envelope is the service's standard response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorBody      `json:"error,omitempty"`
}

type errorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Client talks to the exam service.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
	log     zerolog.Logger
}

// New creates a Client. The transport carries explicit dial and header
// timeouts on top of the overall request timeout, so a dead network fails
// fast instead of hanging a timed attempt.
func New(baseURL string, timeout time.Duration, tokens auth.TokenSource, log zerolog.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   4,
		ForceAttemptHTTP2:     true,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		tokens: tokens,
		log:    log.With().Str("component", "api_client").Logger(),
	}
}

// FetchPaper returns test metadata plus the raw question list in one call.
func (c *Client) FetchPaper(ctx context.Context, testID string) (*model.TestPaper, error) {
	var paper model.TestPaper
	path := fmt.Sprintf("/student/tests/%s/paper", testID)
	if err := c.do(ctx, http.MethodGet, path, nil, &paper); err != nil {
		return nil, fmt.Errorf("fetch paper: %w", err)
	}
	return &paper, nil
}

// SubmitAttempt commits the attempt keyed by the client-generated attempt id.
// The server deduplicates by attempt id, so retrying with the same id is safe.
func (c *Client) SubmitAttempt(ctx context.Context, attemptID string, req model.SubmitRequest) (*model.SubmissionResult, error) {
	var res model.SubmissionResult
	path := fmt.Sprintf("/student/attempts/%s/submit", attemptID)
	if err := c.do(ctx, http.MethodPost, path, req, &res); err != nil {
		return nil, fmt.Errorf("submit attempt: %w", err)
	}
	res.Source = model.ResultSourceRemote
	if res.AttemptID == "" {
		res.AttemptID = attemptID
	}
	return &res, nil
}

// FetchReview returns the authoritative per-question review records, with
// correct answers disclosed now that the attempt is closed.
func (c *Client) FetchReview(ctx context.Context, attemptID string) ([]model.ReviewEntry, error) {
	var entries []model.ReviewEntry
	path := fmt.Sprintf("/student/attempts/%s/review", attemptID)
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, fmt.Errorf("fetch review: %w", err)
	}
	return entries, nil
}

// do performs one request against the service and decodes the envelope into
// out. Envelope errors surface as *APIError; transport failures pass through
// wrapped.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("bearer token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}

	if env.Error != nil || resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Code: ErrInternal}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Fields = env.Error.Fields
		}
		c.log.Debug().
			Int("status", resp.StatusCode).
			Str("code", string(apiErr.Code)).
			Str("path", path).
			Msg("Service returned error")
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}
