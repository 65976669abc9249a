// Package museum fetches artwork metadata from the museum's linked-data
// API and caches the resolved record. Fetching is a two-step dance:
// search the collection by object number to obtain a persistent
// identifier (PID), then resolve that PID to a JSON-LD document via
// content negotiation.
package museum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/retry"
)

const (
	defaultSearchURL = "https://data.rijksmuseum.nl/search/collection"
	defaultProfile   = "la"
	defaultMediaType = "application/ld+json"
)

// ClientConfig configures the metadata client.
type ClientConfig struct {
	SearchURL string
	Profile   string
	MediaType string
	Timeout   time.Duration
}

// Client talks to the museum linked-data API.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a metadata client. Zero-valued config fields fall
// back to the public API defaults.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.SearchURL == "" {
		cfg.SearchURL = defaultSearchURL
	}
	if cfg.Profile == "" {
		cfg.Profile = defaultProfile
	}
	if cfg.MediaType == "" {
		cfg.MediaType = defaultMediaType
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("museum"),
	}
}

// SearchPID resolves an object number to its persistent identifier URL.
func (c *Client) SearchPID(ctx context.Context, objectNumber string) (string, error) {
	u, err := url.Parse(c.cfg.SearchURL)
	if err != nil {
		return "", fmt.Errorf("parsing search url: %w", err)
	}
	q := u.Query()
	q.Set("objectNumber", objectNumber)
	u.RawQuery = q.Encode()

	var payload struct {
		OrderedItems []struct {
			ID string `json:"id"`
		} `json:"orderedItems"`
	}
	if err := c.getJSON(ctx, u.String(), &payload); err != nil {
		return "", fmt.Errorf("searching object %s: %w", objectNumber, err)
	}
	if len(payload.OrderedItems) == 0 || payload.OrderedItems[0].ID == "" {
		return "", fmt.Errorf("no results for object number %s", objectNumber)
	}

	return payload.OrderedItems[0].ID, nil
}

// ResolveJSONLD resolves a PID URL to its JSON-LD document using
// content negotiation query parameters.
func (c *Client) ResolveJSONLD(ctx context.Context, pidURL string) (map[string]any, error) {
	u, err := url.Parse(pidURL)
	if err != nil {
		return nil, fmt.Errorf("parsing pid url: %w", err)
	}
	q := u.Query()
	q.Set("_profile", c.cfg.Profile)
	q.Set("_mediatype", c.cfg.MediaType)
	u.RawQuery = q.Encode()

	var doc map[string]any
	if err := c.getJSON(ctx, u.String(), &doc); err != nil {
		return nil, fmt.Errorf("resolving pid %s: %w", pidURL, err)
	}
	return doc, nil
}

// Fetch runs the full search-then-resolve flow with backoff. Each
// attempt redoes both steps so a stale PID cannot wedge the retry loop.
func (c *Client) Fetch(ctx context.Context, objectNumber string) (pid string, doc map[string]any, err error) {
	type result struct {
		pid string
		doc map[string]any
	}

	r, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (result, error) {
		pid, err := c.SearchPID(ctx, objectNumber)
		if err != nil {
			return result{}, err
		}
		doc, err := c.ResolveJSONLD(ctx, pid)
		if err != nil {
			return result{}, err
		}
		return result{pid: pid, doc: doc}, nil
	})
	if err != nil {
		c.logger.Warn("metadata fetch failed",
			zap.String("object_number", objectNumber),
			zap.Error(err))
		return "", nil, err
	}

	c.logger.Debug("metadata fetched",
		zap.String("object_number", objectNumber),
		zap.String("pid", r.pid))
	return r.pid, r.doc, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", c.cfg.MediaType)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
