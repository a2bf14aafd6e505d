package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/Huahuatgc/ribao/internal/config"
)

// Client is the pooled HTTP client shared by every source fetcher.
// It is created once at startup and passed by reference; Close releases
// the connection pool at shutdown.
type Client struct {
	client *http.Client
	cfg    *config.FetcherConfig
	logger *slog.Logger
}

// Request describes a single outbound GET.
type Request struct {
	URL    string
	Query  url.Values
	Header http.Header
}

// Response is a fully-read response body.
type Response struct {
	StatusCode int
	Body       []byte
	// Truncated is set when the body exceeded the configured size cap and
	// was cut off rather than fully read.
	Truncated bool
}

// NewClient creates the shared HTTP client.
func NewClient(cfg *config.FetcherConfig, logger *slog.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns / 2,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // we handle decompression ourselves (including brotli)
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		cfg:    cfg,
		logger: logger.With("component", "http_client"),
	}
}

// Get issues a GET and returns the size-capped body. A non-2xx status is an
// error; an oversized body is not — it is truncated and flagged so callers
// can decide whether partial content is usable.
func (c *Client) Get(ctx context.Context, req Request) (*Response, error) {
	target := req.URL
	if len(req.Query) > 0 {
		u, err := url.Parse(req.URL)
		if err != nil {
			return nil, &FetchError{URL: req.URL, Err: err}
		}
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}

	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	httpReq.Header.Set("Accept", "application/json, application/xml, text/xml;q=0.9, */*;q=0.8")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, &FetchError{
			URL:        req.URL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, string(preview)),
		}
	}

	var reader io.Reader = httpResp.Body
	if c.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, c.cfg.MaxBodySize+1)
	}

	reader, err = decompressReader(httpResp, reader)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}

	truncated := false
	if c.cfg.MaxBodySize > 0 && int64(len(body)) > c.cfg.MaxBodySize {
		body = body[:c.cfg.MaxBodySize]
		truncated = true
		c.logger.Warn("response body exceeded size cap, truncated",
			"url", req.URL,
			"cap", c.cfg.MaxBodySize,
		)
	}

	c.logger.Debug("fetch complete",
		"url", req.URL,
		"status", httpResp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Truncated:  truncated,
	}, nil
}

// GetJSON issues a GET and decodes the body into v. Truncated bodies are
// rejected: a cut-off JSON document cannot be trusted even if it parses.
func (c *Client) GetJSON(ctx context.Context, req Request, v any) error {
	resp, err := c.Get(ctx, req)
	if err != nil {
		return err
	}
	if resp.Truncated {
		return &FetchError{URL: req.URL, Err: fmt.Errorf("body truncated at %d bytes", len(resp.Body))}
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &ParseError{URL: req.URL, Err: err}
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
