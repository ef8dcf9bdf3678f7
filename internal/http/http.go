// Package http is a small JSON client for provider APIs that ship no Go
// SDK. It does not retry; callers own the retry policy and use the
// returned StatusError to decide what is worth retrying.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"time"
)

// StatusError reports a non-2xx response. Body is truncated.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("(HTTP Error %d) %s", e.Code, e.Body)
}

type Client struct {
	httpClient *gohttp.Client

	endpoint string
	apiKey   string
}

type ClientOption func(*Client)

func NewClient(endpoint string, opts ...ClientOption) Client {
	c := Client{
		endpoint: endpoint,
		httpClient: &gohttp.Client{
			Timeout: 60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

func WithApiKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// PostJSON sends payload to path and decodes the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, path string, payload map[string]any, out any) error {
	uri, err := url.Parse(c.endpoint)
	if err != nil {
		return err
	}
	uri.Path = path

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := gohttp.NewRequestWithContext(ctx, gohttp.MethodPost, uri.String(), bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		// truncate error responses
		if len(body) > 512 {
			body = body[:512]
		}
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return json.Unmarshal(body, out)
}
