package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fakhiuBack/internal/models"
)

const maxBodyBytes = 16 << 20

// ErrConnection wraps transport failures: the backend could not be reached
// or the response could not be read.
var ErrConnection = errors.New("backend: connection failed")

// StatusError is returned for non-2xx responses other than 401.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: unexpected status %d: %s", e.Status, e.Body)
}

// Client talks to the listings backend with the caller's bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient constructs a backend client rooted at baseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// Collection fetches the raw JSON body of GET /offers or GET /requests.
func (c *Client) Collection(ctx context.Context, tab models.Tab, token string) ([]byte, error) {
	path := "/requests"
	if tab == models.TabOffers {
		path = "/offers"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: get %s: %w", tab, err)
	}
	return body, nil
}

// CreateRequest posts a new request. A missing token fails with
// models.ErrUnauthenticated before anything is sent.
func (c *Client) CreateRequest(ctx context.Context, token string, in models.NewRequest) error {
	if strings.TrimSpace(token) == "" {
		return models.ErrUnauthenticated
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("backend: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/requests", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, token)

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("backend: create request: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrConnection, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, models.ErrUnauthenticated
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &StatusError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func setBearer(req *http.Request, token string) {
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
