// Package webfetch provides a tool that fetches web pages and converts
// them to Markdown for consumption by a language model.
package webfetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/reagentlabs/reagent/providers/tool"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// MaxTimeout caps the per-call timeout a model may request.
	MaxTimeout = 300 * time.Second
	// DefaultUserAgent is the default User-Agent header value.
	DefaultUserAgent = "reagent-webfetch/1.0"
	// MaxBodySize is the maximum response body size (10MB).
	MaxBodySize = 10 * 1024 * 1024
	// maxRedirects bounds redirect chains.
	maxRedirects = 10
)

// New returns a [tool.Tool] that fetches a web page and converts its HTML
// content to Markdown. Partial URLs are normalised by prepending "https://",
// redirects are followed up to a fixed limit, and the response body is
// capped at [MaxBodySize].
func New() *tool.Tool[Input, Output] {
	return tool.MustNew(
		"web_fetch",
		Fetch,
		tool.WithDescription("Fetches a web page and returns its content converted to Markdown. Accepts partial URLs like 'example.com'. Follows redirects and reports the final URL."),
	)
}

// Fetch retrieves the page at req.URL and returns its content as Markdown.
// The final URL after redirects is returned in [Output.URL]. Errors are
// returned for an empty URL, non-200 status codes, bodies that exceed
// [MaxBodySize], conversion failures, and context cancellation.
func Fetch(ctx context.Context, req Input) (Output, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return Output{}, fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	timeout := DefaultTimeout
	if req.TimeoutSeconds > 0 {
		timeout = min(time.Duration(req.TimeoutSeconds)*time.Second, MaxTimeout)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("failed to create request: %w", err)
	}
	userAgent := DefaultUserAgent
	if req.UserAgent != "" {
		userAgent = req.UserAgent
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := newClient(timeout).Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, fmt.Errorf("request timeout or canceled: %w", err)
		}
		return Output{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}

	// Read one byte past the limit so an exactly-full read is distinguishable
	// from an oversized body.
	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, fmt.Errorf("timeout while reading response body: %w", ctx.Err())
		}
		return Output{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(htmlBytes) > MaxBodySize {
		return Output{}, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(htmlBytes))
	if err != nil {
		return Output{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return Output{
		URL:      resp.Request.URL.String(),
		Markdown: markdown,
	}, nil
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects (>%d)", maxRedirects)
			}
			return nil
		},
	}
}

// Input holds the parameters passed to the web fetch tool by the language
// model. URL is the only required field.
type Input struct {
	URL            string `json:"url" jsonschema:"description=The URL of the web page to fetch. Partial URLs like 'example.com' are accepted.,required"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" jsonschema:"description=Request timeout in seconds (default 30; max 300)"`
	UserAgent      string `json:"user_agent,omitempty" jsonschema:"description=Custom User-Agent header for the HTTP request"`
}

// Output holds the result produced by [Fetch]. URL reflects the final
// destination after all HTTP redirects.
type Output struct {
	URL      string `json:"url" jsonschema:"description=The final URL after following redirects"`
	Markdown string `json:"markdown" jsonschema:"description=The page content converted to Markdown"`
}
