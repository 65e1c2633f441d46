// Package upstream talks to the remote scrape service that produces raw
// page-scrape payloads.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/scrapesheet/config"
	"github.com/use-agent/scrapesheet/models"
)

const maxBodyBytes = 10 * 1024 * 1024 // 10 MB cap

// Request identifies one remote scrape.
type Request struct {
	URL      string
	Category models.Category

	// OnlyUHF is forwarded to the service unmodified.
	OnlyUHF bool
}

// requestBody is the JSON body the service expects.
type requestBody struct {
	URL     string `json:"url"`
	OnlyUHF bool   `json:"onlyUhf"`
}

// Client posts scrape requests to {BaseURL}/{category}.
// It uses net/http directly and never retries.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxBody    int64
}

// NewClient creates a Client from the upstream configuration.
// Pass a nil httpClient to get one with cfg.Timeout.
func NewClient(cfg config.UpstreamConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		maxBody:    maxBodyBytes,
	}
}

// Fetch retrieves the raw payload for req. Errors are PipelineErrors:
// UPSTREAM_TIMEOUT on deadline, UPSTREAM_FAILED on transport or non-2xx,
// MALFORMED_INPUT when the body is not a JSON object.
func (c *Client) Fetch(ctx context.Context, req Request) (*models.RawScrapeResult, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, "url is required", nil)
	}
	if !req.Category.Valid() {
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, fmt.Sprintf("unknown category %q", req.Category), nil)
	}

	body, err := json.Marshal(requestBody{URL: req.URL, OnlyUHF: req.OnlyUHF})
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeInternal, "upstream: marshal request", err)
	}

	endpoint := c.baseURL + "/" + string(req.Category)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeInternal, "upstream: build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "scrapesheet/1.0")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, models.NewPipelineError(models.ErrCodeUpstreamTimeout, "upstream: request timed out", err)
		}
		return nil, models.NewPipelineError(models.ErrCodeUpstream, "upstream: request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeUpstream, "upstream: read body", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, models.NewPipelineError(models.ErrCodeUpstream,
			fmt.Sprintf("upstream: payload too large (over %d bytes)", c.maxBody), nil)
	}

	slog.Debug("upstream fetch",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewPipelineError(models.ErrCodeUpstream,
			fmt.Sprintf("upstream: HTTP %d for %s", resp.StatusCode, req.Category), nil)
	}

	return models.ParseRawScrapeResult(data)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
