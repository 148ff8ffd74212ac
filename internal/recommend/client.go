// Package recommend talks to the recommendation backend: it builds the
// request, performs POST /recommend and normalises the reply.
package recommend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/pders01/cinematch/internal/debuglog"
	"github.com/pders01/cinematch/internal/validation"
)

const (
	DefaultBaseURL   = "http://127.0.0.1:8000"
	DefaultUserAgent = "cinematch/1.0 (movie recommendations; github.com/pders01/cinematch)"
	DefaultTimeout   = 30 * time.Second

	recommendRoute = "/recommend"

	// maxBodySize caps how much of a reply is read.
	maxBodySize = 4 << 20
)

// Recommender is what the UI needs from the backend.
type Recommender interface {
	Recommend(ctx context.Context, req Request) (*Response, error)
}

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

type Client struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

// NewClient validates the base URL and builds a client for it.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	base, err := validation.NewEndpointValidator().ValidateAndNormalize(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		endpoint:  validation.Endpoint(base, recommendRoute),
		userAgent: opts.UserAgent,
		client:    hc,
	}, nil
}

// Endpoint is the full URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Recommend posts req and decodes the reply. Non-2xx replies come back as
// *APIError.
func (c *Client) Recommend(ctx context.Context, req Request) (*Response, error) {
	req.Title = NewRequest(req.Title, req.SimilarityThreshold).Title
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)

	log := debuglog.WithFields(map[string]any{
		"request_id": requestID,
		"title":      req.Title,
		"threshold":  req.SimilarityThreshold,
	})
	log.Debugf("POST %s", c.endpoint)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		log.Warnf("request failed: %v", err)
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(payload),
			RequestID:  requestID,
		}
		log.Warnf("backend returned %d in %s: %q", resp.StatusCode, time.Since(start), apiErr.Detail)
		return nil, apiErr
	}

	var out Response
	if err := json.Unmarshal(payload, &out); err != nil {
		log.Warnf("undecodable response: %v", err)
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	log.Infof("%d recommendations in %s (corrected=%q)", len(out.Recommended), time.Since(start), out.CorrectedTitle)
	return &out, nil
}
