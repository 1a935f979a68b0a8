// Package backend is the HTTP client for the catalog resource API:
//
//	GET /products?_page=&_limit=&q=&<fragments>   → []Product, X-Total-Count
//	GET /categories, GET /brands                  → []string
//
// Every request is wrapped in an OpenTelemetry span. The client never
// retries; callers bound each call with a context deadline.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/storefront/internal/catalog"
)

// TotalCountHeader carries the size of the full result set.
const TotalCountHeader = "X-Total-Count"

const tracerName = "github.com/roach88/storefront/internal/backend"

// maxBody bounds how much of a response body is read.
const maxBody = 8 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client talks to one backend base URL.
type Client struct {
	base   *url.URL
	http   *http.Client
	tracer trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracerProvider sets the provider spans are created from.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// New creates a client for baseURL (e.g. "http://localhost:3000").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base:   u,
		http:   http.DefaultClient,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// FetchProducts requests one page of products. rawQuery is the already
// encoded query string (see query.State.Encode).
func (c *Client) FetchProducts(ctx context.Context, rawQuery string) (catalog.ResultPage, error) {
	ctx, span := c.tracer.Start(ctx, "backend.FetchProducts",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("storefront.query", rawQuery)),
	)
	defer span.End()

	var items []catalog.Product
	header, err := c.get(ctx, "/products", rawQuery, &items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch products")
		return catalog.ResultPage{}, err
	}
	if items == nil {
		items = []catalog.Product{}
	}

	total := len(items)
	if raw := header.Get(TotalCountHeader); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			err = fmt.Errorf("invalid %s header %q", TotalCountHeader, raw)
			span.RecordError(err)
			span.SetStatus(codes.Error, "total count")
			return catalog.ResultPage{}, err
		}
		total = n
	} else {
		slog.Debug("response has no total count header, using page length", "query", rawQuery)
	}

	span.SetAttributes(
		attribute.Int("storefront.items", len(items)),
		attribute.Int("storefront.total_count", total),
	)
	span.SetStatus(codes.Ok, "")
	return catalog.ResultPage{Items: items, TotalCount: total}, nil
}

// Options fetches the option labels for a list facet source
// ("categories" or "brands").
func (c *Client) Options(ctx context.Context, source string) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "backend.Options",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("storefront.source", source)),
	)
	defer span.End()

	if source == "" || strings.ContainsAny(source, "/?#") {
		err := fmt.Errorf("invalid option source %q", source)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid source")
		return nil, err
	}

	var labels []string
	if _, err := c.get(ctx, "/"+source, "", &labels); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch options")
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}
	span.SetAttributes(attribute.Int("storefront.options", len(labels)))
	span.SetStatus(codes.Ok, "")
	return labels, nil
}

func (c *Client) get(ctx context.Context, path, rawQuery string, out any) (http.Header, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: u.String()}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", u.Path, err)
	}
	return resp.Header, nil
}
