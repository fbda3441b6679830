package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "schoolbook/pkg/errors"
)

const UserIDHeader = "X-User-ID"

// HttpClient sends JSON requests to the bookings API on behalf of UserID.
type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
	UserID     string
}

func NewHttpClient(baseURL string) *HttpClient {
	return &HttpClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Response is a fully read HTTP response.
type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// ErrorCode is the AppError code of an error response, or "" if the body is
// not one.
func (r *Response) ErrorCode() string {
	var body apperrors.ErrorResponse
	if err := r.DecodeJSON(&body); err != nil {
		return ""
	}
	return body.Code
}

func (c *HttpClient) GET(path string) (*Response, error) {
	return c.send(http.MethodGet, path, nil, nil)
}

// POST encodes body as JSON; a nil body sends no payload.
func (c *HttpClient) POST(path string, body any, headers http.Header) (*Response, error) {
	if body == nil {
		return c.send(http.MethodPost, path, nil, headers)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.send(http.MethodPost, path, payload, headers)
}

func (c *HttpClient) send(method, path string, payload []byte, headers http.Header) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserID != "" {
		req.Header.Set(UserIDHeader, c.UserID)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{Response: resp, Body: respBody}, nil
}

// WaitForHealthy polls /health until it answers 200 or maxWait passes.
func (c *HttpClient) WaitForHealthy(maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maxWait)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		resp, err := c.GET("/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service did not become healthy within %v", maxWait)
		case <-ticker.C:
		}
	}
}
