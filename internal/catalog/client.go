// Package catalog reads products from the storefront's catalog API and holds
// the product list helpers shared by the gateway and the CLI.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/hongminglow/valide/internal/models"
	"github.com/hongminglow/valide/internal/models/dto"
)

// DefaultBaseURL is the hosted catalog API.
const DefaultBaseURL = "https://validebackend.onrender.com/api"

// ErrNoToken is returned by calls that need a signed-in user.
var ErrNoToken = errors.New("catalog: sign in required")

// APIError is a non-2xx answer from the catalog API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API: %d %s", e.Status, e.Message)
}

// Client talks to the remote catalog API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewArrivals lists the newest products, optionally restricted to category.
// An empty category or "all" lists every category.
func (c *Client) NewArrivals(ctx context.Context, category string) ([]models.Product, error) {
	path := "/products/new-arrivals"
	if category = strings.TrimSpace(category); category != "" && !strings.EqualFold(category, AllCategories) {
		path += "?" + url.Values{"category": {strings.ToLower(category)}}.Encode()
	}

	data, err := c.do(ctx, http.MethodGet, path, "", "", nil)
	if err != nil {
		return nil, err
	}

	// The endpoint answers either {"products": [...]} or a bare array.
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var products []models.Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return nil, fmt.Errorf("decode new arrivals: %w", err)
		}
		return products, nil
	}
	var out dto.ProductsResponse
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode new arrivals: %w", err)
	}
	return out.Products, nil
}

// BrandProducts lists every product of one brand.
func (c *Client) BrandProducts(ctx context.Context, brand string) ([]models.Product, error) {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil, errors.New("catalog: brand is required")
	}
	data, err := c.do(ctx, http.MethodGet, "/products/brand/"+url.PathEscape(brand), "", "", nil)
	if err != nil {
		return nil, err
	}
	var out dto.ProductsResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode brand products: %w", err)
	}
	return out.Data, nil
}

// AddToCart adds productID to the cart of the user owning token.
func (c *Client) AddToCart(ctx context.Context, token, productID string) error {
	if strings.TrimSpace(token) == "" {
		return ErrNoToken
	}
	payload, err := json.Marshal(dto.AddToCartRequest{ProductID: productID})
	if err != nil {
		return fmt.Errorf("encode cart request: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/cart/add", token, "application/json", payload)
	return err
}

// SubmitProduct uploads a new product with its images. The submission is
// validated first; see ValidateSubmission.
func (c *Client) SubmitProduct(ctx context.Context, s Submission) (models.Product, error) {
	if err := ValidateSubmission(s); err != nil {
		return models.Product{}, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"brandName", strings.ToLower(strings.TrimSpace(s.BrandName))},
		{"productName", strings.TrimSpace(s.ProductName)},
		{"description", strings.TrimSpace(s.Description)},
		{"price", strings.TrimSpace(s.Price)},
		{"category", strings.TrimSpace(s.Category)},
		{"stock", strings.TrimSpace(s.Stock)},
		{"specification", strings.TrimSpace(s.Specifications)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return models.Product{}, fmt.Errorf("write %s: %w", f[0], err)
		}
	}
	for _, img := range s.Images {
		part, err := w.CreateFormFile("images", img.Filename)
		if err != nil {
			return models.Product{}, fmt.Errorf("attach %s: %w", img.Filename, err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return models.Product{}, fmt.Errorf("attach %s: %w", img.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return models.Product{}, fmt.Errorf("close multipart body: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/productForm", "", w.FormDataContentType(), buf.Bytes())
	if err != nil {
		return models.Product{}, err
	}
	var out dto.SubmitProductResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return models.Product{}, fmt.Errorf("decode product response: %w", err)
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path, token, contentType string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}
	return data, nil
}

func errorMessage(status int, data []byte) string {
	var body dto.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
	}
	return http.StatusText(status)
}
