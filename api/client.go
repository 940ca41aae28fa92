package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user/trimline-cli/pkg/httpx"
)

// ErrStatus wraps every non-2xx response.
var ErrStatus = errors.New("api: unexpected status")

// StatusError carries the status code and server message of a failed call.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Code)
	}
	return fmt.Sprintf("api: status %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Client calls the local trimline service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL (e.g. http://127.0.0.1:8787).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpx.NewClient(timeout),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Health checks the service.
func (c *Client) Health(ctx context.Context) error {
	var h Health
	return c.do(ctx, http.MethodGet, "/api/health", nil, &h)
}

// Info returns an asset's probed duration.
func (c *Client) Info(ctx context.Context, assetID string) (*AssetInfo, error) {
	var info AssetInfo
	if err := c.do(ctx, http.MethodGet, "/api/assets/"+url.PathEscape(assetID)+"/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CommitTrim asks the service to cut [start, end] out of the asset.
func (c *Client) CommitTrim(ctx context.Context, assetID string, start, end float64) (*TrimAccepted, error) {
	var out TrimAccepted
	body := TrimRequest{Start: start, End: end}
	if err := c.do(ctx, http.MethodPost, "/api/assets/"+url.PathEscape(assetID)+"/trim", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrimStatus returns a trim job.
func (c *Client) TrimStatus(ctx context.Context, jobID string) (*TrimJob, error) {
	var job TrimJob
	if err := c.do(ctx, http.MethodGet, "/api/trims/"+url.PathEscape(jobID), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb ErrorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)
		return &StatusError{Code: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
