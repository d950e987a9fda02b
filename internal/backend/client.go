// Package backend is the HTTP client for the upstream shop backend, the
// sole owner of durable state (items, sales, offers, settings). The
// terminal never retries on its own; failures surface to the cashier and
// any retry is user-initiated.
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

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

// APIError carries the upstream status and the user-facing message from a
// non-2xx `{message}` body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Message extracts the display message from an upstream error, or returns
// the given fallback for transport failures and blank bodies.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
}

func NewClient(baseURL string, authToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
	}
}

// ListItems fetches the full purchasable item list.
func (c *Client) ListItems(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := c.do(ctx, http.MethodGet, "/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateSale finalizes a cart into a persisted sale record.
func (c *Client) CreateSale(ctx context.Context, req domain.SaleRequest) (*domain.Sale, error) {
	var sale domain.Sale
	if err := c.do(ctx, http.MethodPost, "/sales", req, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// CreateOffer submits a discount request as a pending approval.
func (c *Client) CreateOffer(ctx context.Context, req domain.OfferRequest) (*domain.Offer, error) {
	var offer domain.Offer
	if err := c.do(ctx, http.MethodPost, "/offers", req, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// GetSettings fetches the shop configuration, including the tax rate in
// percentage units.
func (c *Client) GetSettings(ctx context.Context) (*domain.ShopSettings, error) {
	var settings domain.ShopSettings
	if err := c.do(ctx, http.MethodGet, "/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) do(ctx context.Context, method string, path string, payload any, dest any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling shop backend: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: decodeMessage(raw)}
	}

	if dest == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeMessage pulls the `{message}` field the upstream attaches to
// error responses. Anything else yields an empty message and callers fall
// back to a generic notice.
func decodeMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}
