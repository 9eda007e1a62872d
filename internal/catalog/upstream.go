package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUpstreamBadStatus   = errors.New("upstream bad status")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// UpstreamClient reads the remote catalog API: a product list and a
// category list, both plain JSON.
type UpstreamClient struct {
	BaseURL string
	Client  *http.Client
}

func NewUpstreamClient(baseURL string) *UpstreamClient {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &UpstreamClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Products fetches the full upstream product list.
func (c *UpstreamClient) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, c.BaseURL+"/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories fetches the upstream category labels. Duplicates pass
// through unchanged.
func (c *UpstreamClient) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, c.BaseURL+"/products/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *UpstreamClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		// Network failures and timeouts collapse into one sentinel;
		// the cause stays in the message for the logs.
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrUpstreamBadStatus, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
