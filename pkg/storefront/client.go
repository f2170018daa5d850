package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the storefront API. The session cookie set by register and
// login is kept in the client's cookie jar and sent on later calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default client. A client without a cookie jar
// gets one.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*UserInfo, error) {
	var info UserInfo
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/users/register", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*UserInfo, error) {
	var info UserInfo
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/users/login", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/users/logout", nil, nil)
}

// Me returns the session user. The token field is empty.
func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) ListItems(ctx context.Context, filter ItemFilter) ([]Item, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.MinPrice != nil {
		query.Set("minPrice", strconv.FormatFloat(*filter.MinPrice, 'f', -1, 64))
	}
	if filter.MaxPrice != nil {
		query.Set("maxPrice", strconv.FormatFloat(*filter.MaxPrice, 'f', -1, 64))
	}

	path := "/api/items"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var items []Item
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetItem(ctx context.Context, id uint) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/items/%d", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) GetCart(ctx context.Context) (Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/api/users/cart", nil, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (c *Client) AddItem(ctx context.Context, productID uint, quantity int) (Cart, error) {
	var cart Cart
	body := map[string]interface{}{"productId": productID, "quantity": quantity}
	if err := c.do(ctx, http.MethodPost, "/api/users/cart", body, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (c *Client) RemoveItem(ctx context.Context, productID uint) (Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/cart/%d", productID), nil, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearServerCart empties the persisted cart of the session user.
func (c *Client) ClearServerCart(ctx context.Context) (Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodDelete, "/api/users/cart", nil, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// do sends payload as JSON and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
