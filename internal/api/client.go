package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/digitalWestie/tutanota-cli/internal/apierrors"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second

	// ClientVersion is the fixed "cv" header this client reports.
	ClientVersion = "3.0.0"
	// Platform is the fixed "cp" header: "5" means WEB.
	Platform = "5"
	// UserAgent is the fixed User-Agent header.
	UserAgent = "tutanota-cli/1.0"
)

// DefaultRetryOn contains the default HTTP status codes that trigger a retry.
var DefaultRetryOn = []int{408, 429, 500, 502, 503, 504}

// Client handles HTTP communication with the mail service's REST API.
// It provides automatic retry logic with exponential backoff for transient
// failures, and injects the protocol headers every request must carry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	// accessToken, when set, is sent as the accessToken header on every
	// request. Unauthenticated calls (the salt endpoint) leave it empty.
	accessToken string
	maxRetries  int
	retryDelay  time.Duration
	retryOn     []int
}

// New creates a new API client using the functional options pattern.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		retryOn:    DefaultRetryOn,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Option configures the API client.
type Option func(*Client)

// WithAccessToken sets the accessToken header sent on every request.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.accessToken = token
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetries sets the number of retries.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.maxRetries = retries
	}
}

// SetAccessToken updates the accessToken header used on subsequent requests.
func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

// BaseURL returns the base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes an HTTP request with automatic retry logic and the protocol's
// fixed headers.
//
// modelVersion is sent as the "v" header (the type or sys model version the
// caller is requesting). For GET requests, a non-nil body is encoded as a
// "_body" query parameter instead of a request body, since the salt
// endpoint requires a GET with a JSON payload.
func (c *Client) Do(ctx context.Context, method, path, modelVersion string, body any, result any) error {
	var bodyReader io.Reader

	if body != nil && method == http.MethodGet {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		path = appendBodyQuery(path, encoded)
	} else if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	return c.doWithRetry(ctx, method, path, modelVersion, bodyReader, result)
}

func appendBodyQuery(path string, encoded []byte) string {
	sep := "?"
	if len(path) > 0 && indexByte(path, '?') >= 0 {
		sep = "&"
	}
	return path + sep + "_body=" + url.QueryEscape(string(encoded))
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// doWithRetry implements retry with exponential backoff. The body must be
// an io.Seeker if retries are needed, as it is reset between attempts.
func (c *Client) doWithRetry(ctx context.Context, method, path, modelVersion string, body io.Reader, result any) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			if seeker, ok := body.(io.Seeker); ok {
				if _, err := seeker.Seek(0, io.SeekStart); err != nil {
					return fmt.Errorf("reset request body: %w", err)
				}
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("v", modelVersion)
		req.Header.Set("cv", ClientVersion)
		req.Header.Set("cp", Platform)
		req.Header.Set("User-Agent", UserAgent)
		if c.accessToken != "" {
			req.Header.Set("accessToken", c.accessToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &apierrors.NetworkError{Err: err, URL: c.baseURL + path}
			continue
		}

		if c.isRetryable(resp.StatusCode) && attempt < c.maxRetries {
			lastErr = &apierrors.RESTError{StatusCode: resp.StatusCode, Path: path}
			resp.Body.Close()
			continue
		}

		if resp.StatusCode >= 400 {
			err := parseErrorResponse(resp, path)
			resp.Body.Close()
			return err
		}

		if resp.StatusCode == http.StatusNoContent {
			resp.Body.Close()
			return nil
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				resp.Body.Close()
				return fmt.Errorf("decode response: %w", err)
			}
		}
		resp.Body.Close()

		return nil
	}

	return lastErr
}

func (c *Client) isRetryable(statusCode int) bool {
	for _, code := range c.retryOn {
		if statusCode == code {
			return true
		}
	}
	return false
}

func parseErrorResponse(resp *http.Response, path string) error {
	body, _ := io.ReadAll(resp.Body)
	return &apierrors.RESTError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
		Path:       path,
	}
}
