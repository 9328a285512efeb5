// Package paypal is a thin client for the provider's Orders v2 REST API.
// Create and capture replies are returned verbatim (status + raw body);
// only transport-level failures surface as errors.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Error wraps a provider-side fault (transport, auth, breaker open). The
// message is safe to log but not meant for clients.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("paypal %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpc        *http.Client
	breaker      *gobreaker.CircuitBreaker[*Response]
	logger       *log.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func New(baseURL, clientID, clientSecret string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	settings := gobreaker.Settings{
		Name:    "paypal-orders",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpc:        &http.Client{Timeout: 30 * time.Second},
		breaker:      gobreaker.NewCircuitBreaker[*Response](settings),
		logger:       logger,
	}
}

// CreateOrder initiates an order with the provider and returns its reply
// verbatim.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (*Response, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, &Error{Op: "create order", Err: err}
	}
	resp, err := c.call(ctx, http.MethodPost, "/v2/checkout/orders", body)
	if err != nil {
		return nil, &Error{Op: "create order", Err: err}
	}
	return resp, nil
}

// CaptureOrder finalizes a previously-approved order by id and returns the
// provider's reply verbatim.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Response, error) {
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	resp, err := c.call(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, &Error{Op: "capture order", Err: err}
	}
	return resp, nil
}

func (c *Client) call(ctx context.Context, method, path string, body []byte) (*Response, error) {
	return c.breaker.Execute(func() (*Response, error) {
		token, err := c.token(ctx)
		if err != nil {
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		c.logger.Printf("paypal: %s %s status=%d", method, path, resp.StatusCode)
		return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
	})
}

// token returns a cached client-credentials access token, refreshing it when
// less than a minute of validity remains.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: status=%d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}
