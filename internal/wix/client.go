package wix

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

	"storefront/internal/config"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL is the Wix REST API host.
	DefaultBaseURL = "https://www.wixapis.com"
	// StoresAppID identifies Wix Stores as the catalog behind a cart line.
	StoresAppID = "1380b703-ce81-ff05-f115-39571d94dfcd"

	maxResponseBytes = 4 << 20
)

var tracer = otel.Tracer("storefront/internal/wix")

// Client calls the Wix Stores, eCommerce, Data and OAuth REST APIs.
// Requests carry the visitor tokens found in the context (see WithTokens) and
// fall back to the site API key.
type Client struct {
	clientID   string
	apiKey     string
	siteID     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Wix client. Retries are off unless cfg.Retries > 0.
func NewClient(cfg config.WixConfig) (*Client, error) {
	if strings.TrimSpace(cfg.ClientID) == "" && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("client ID or API key is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		rc := retryablehttp.NewClient()
		rc.RetryMax = max(cfg.Retries, 0)
		rc.RetryWaitMin = 100 * time.Millisecond
		rc.RetryWaitMax = 2 * time.Second
		rc.HTTPClient.Timeout = timeout
		rc.Logger = slog.Default()
		// hand the last response back so non-2xx statuses surface as StatusError
		rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
		httpClient = rc.StandardClient()
	}

	return &Client{
		clientID:   strings.TrimSpace(cfg.ClientID),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		siteID:     strings.TrimSpace(cfg.SiteID),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	return c.send(ctx, op, method, path, in, out, true)
}

func (c *Client) send(ctx context.Context, op, method, path string, in, out any, authorize bool) error {
	ctx, span := tracer.Start(ctx, "wix "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if authorize {
		c.authorize(ctx, req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return fmt.Errorf("request %s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &StatusError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Code:       applicationCode(raw),
			Body:       strings.TrimSpace(string(raw)),
		}
		if resp.StatusCode != http.StatusNotFound {
			slog.ErrorContext(ctx, "received Wix error response",
				"operation", op,
				"status", resp.StatusCode,
				"code", statusErr.Code,
			)
			span.SetStatus(codes.Error, statusErr.Error())
		}
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if tokens, ok := TokensFromContext(ctx); ok && tokens.AccessToken != "" {
		req.Header.Set("Authorization", tokens.AccessToken)
		return
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
		if c.siteID != "" {
			req.Header.Set("wix-site-id", c.siteID)
		}
	}
}

type paging struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// pageAll requests pages of at most defaultPageLimit records, advancing the
// offset, until limit records are collected, the reported total is reached or
// a page comes back short. fetch reports total as 0 when Wix sends none. A
// limit of 0 or less collects everything.
func pageAll[T any](limit int, fetch func(p paging) ([]T, int, error)) ([]T, error) {
	var out []T
	for {
		size := defaultPageLimit
		if limit > 0 {
			size = min(size, limit-len(out))
		}
		page, total, err := fetch(paging{Limit: size, Offset: len(out)})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		switch {
		case len(page) < size:
			return out, nil
		case limit > 0 && len(out) >= limit:
			return out, nil
		case total > 0 && len(out) >= total:
			return out, nil
		}
	}
}
