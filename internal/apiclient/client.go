// Package apiclient talks JSON over HTTP to the storefront backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"lunara/internal/models"
)

// ErrTransport wraps every failure to reach the backend or to decode its
// answer. Callers treat it as a generic, non-fatal failure.
var ErrTransport = errors.New("storefront backend unavailable")

const defaultTimeout = 15 * time.Second

// Client is one browser's view of the backend: it keeps its own cookie jar
// so the backend's session cookie follows the shopper between calls.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout, Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products fetches the full catalog.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Login posts credentials to the auth endpoint.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the backend session. The reply body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// ProcessPayment submits an order for payment.
func (c *Client) ProcessPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error) {
	var resp models.PaymentResponse
	if err := c.do(ctx, http.MethodPost, "/api/process-payment", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Subscribe signs an email address up for the newsletter.
func (c *Client) Subscribe(ctx context.Context, email string) (*models.SubscribeResponse, error) {
	var resp models.SubscribeResponse
	if err := c.do(ctx, http.MethodPost, "/api/subscribe", models.SubscribeRequest{Email: email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FAQs returns the suggested questions. The backend answers either plain
// strings or {question, category} objects; both are reduced to the question
// text and blanks are dropped.
func (c *Client) FAQs(ctx context.Context) ([]string, error) {
	var resp struct {
		FAQs []json.RawMessage `json:"faqs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/faqs", nil, &resp); err != nil {
		return nil, err
	}

	questions := make([]string, 0, len(resp.FAQs))
	for _, raw := range resp.FAQs {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			var entry struct {
				Question string `json:"question"`
			}
			if err := json.Unmarshal(raw, &entry); err != nil {
				continue
			}
			text = entry.Question
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		questions = append(questions, text)
	}
	return questions, nil
}

// Ask sends one chat message to the support bot.
func (c *Client) Ask(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error) {
	var resp models.ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/chatbot/ask", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do performs one JSON round trip. The HTTP status is not inspected: the
// backend reports business failures inside the body, so any decodable body
// is an answer and anything else is a transport failure.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: status %d: %v", ErrTransport, method, path, resp.StatusCode, err)
	}
	return nil
}
