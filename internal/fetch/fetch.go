// Package fetch retrieves remote text content: the upstream README over
// plain HTTPS and the release list through the GitHub API.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/countrystatecity/docsync/internal/errors"
)

// maxSnippet bounds how much of an error response body is carried in diagnostics.
const maxSnippet = 512

// Client performs single-shot HTTPS GETs for bounded text resources.
//
// There is deliberately no retry or backoff: the pipelines are idempotent and
// operator-triggered, so a failed run is simply re-run.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a fetch client using the default transport.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{}}
}

// NewClientWith allows injecting an HTTP client (tests, custom transports).
func NewClientWith(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}

// Text fetches url and returns the full response body as a string.
//
// Only HTTP 200 is treated as success. The body is buffered in full before
// returning; input sizes are bounded (a README, not large files).
func (c *Client) Text(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NetworkFailed(url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NetworkFailed(url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NetworkFailed(url, fmt.Errorf("reading body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.HTTPStatus(url, resp.StatusCode, snippet(body))
	}

	return string(body), nil
}

func snippet(body []byte) string {
	if len(body) > maxSnippet {
		return string(body[:maxSnippet])
	}
	return string(body)
}
