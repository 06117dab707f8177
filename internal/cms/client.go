// Package cms is a read-mostly gateway to the Cosmic headless CMS.
// Catalog content (products, pages) is authored there; the bucket can
// also serve as the order store for deployments without Postgres.
//
// Not-found responses on read paths translate to empty results, never
// to errors: missing content is a normal condition for this API.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.cosmicjs.com/v3"

// Client talks to a single Cosmic bucket.
type Client struct {
	baseURL    string
	bucketSlug string
	readKey    string
	writeKey   string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(bucketSlug, readKey, writeKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		bucketSlug: bucketSlug,
		readKey:    readKey,
		writeKey:   writeKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// object is the generic CMS record shape. Metadata is decoded per
// object type by the callers.
type object struct {
	ID        string          `json:"id"`
	Slug      string          `json:"slug"`
	Title     string          `json:"title"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Metadata  json.RawMessage `json:"metadata"`
}

type findResponse struct {
	Objects []object `json:"objects"`
	Total   int      `json:"total"`
}

type objectResponse struct {
	Object object `json:"object"`
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("cms: status %d: %s", e.Status, e.Message)
}

// find queries objects by type plus optional metadata filters.
// A 404 from the API means "no matches" and returns an empty slice.
func (c *Client) find(ctx context.Context, objectType string, filter map[string]string, limit int) ([]object, error) {
	query := map[string]string{"type": objectType}
	for k, v := range filter {
		query[k] = v
	}
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("cms: encode query: %w", err)
	}

	params := url.Values{}
	params.Set("read_key", c.readKey)
	params.Set("query", string(queryJSON))
	params.Set("depth", "1")
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	endpoint := fmt.Sprintf("%s/buckets/%s/objects?%s", c.baseURL, c.bucketSlug, params.Encode())

	var resp findResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return resp.Objects, nil
}

// findOne returns the first object matching the filter, or nil when
// nothing matches.
func (c *Client) findOne(ctx context.Context, objectType string, filter map[string]string) (*object, error) {
	objects, err := c.find(ctx, objectType, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, nil
	}
	return &objects[0], nil
}

// insertOne writes a new object to the bucket using the write key.
func (c *Client) insertOne(ctx context.Context, objectType, title string, metadata any) (*object, error) {
	if c.writeKey == "" {
		return nil, fmt.Errorf("cms: write key not configured")
	}

	body := map[string]any{
		"title":    title,
		"type":     objectType,
		"metadata": metadata,
	}

	endpoint := fmt.Sprintf("%s/buckets/%s/objects", c.baseURL, c.bucketSlug)

	var resp objectResponse
	if err := c.do(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Object, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cms: encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("cms: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.writeKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cms: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apiError{Status: resp.StatusCode, Message: string(data)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("cms: decode response: %w", err)
		}
	}
	return nil
}
