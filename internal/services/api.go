// HTTP session adapter: raw requests against one of the platform's hosts
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIService performs raw HTTP requests against a single base URL.
//
// It holds no cookie jar: cookies are attached per request through [WithCookies].
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "https://code.xueersi.com"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status, cookies and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Cookies    []*http.Cookie
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the HTTP status is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Cookie returns the value of the named Set-Cookie from the response.
func (r *APIResponse) Cookie(name string) (string, bool) {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

type requestConfig struct {
	headers    map[string]string
	cookies    []*http.Cookie
	noRedirect bool
}

// RequestOption customizes a single request.
type RequestOption func(*requestConfig)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = map[string]string{}
		}
		c.headers[key] = value
	}
}

// WithCookies attaches cookies to the request.
func WithCookies(cookies ...*http.Cookie) RequestOption {
	return func(c *requestConfig) {
		c.cookies = append(c.cookies, cookies...)
	}
}

// WithoutRedirect returns the first response instead of following redirects,
// so Set-Cookie headers on a 3xx are not lost.
func WithoutRedirect() RequestOption {
	return func(c *requestConfig) { c.noRedirect = true }
}

// URL returns the absolute URL for path.
func (a *APIService) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return a.baseURL + path
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string, opts ...RequestOption) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return a.do(req, opts)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte, opts ...RequestOption) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return a.do(req, opts)
}

// PostForm performs a POST request with a url-encoded form body.
func (a *APIService) PostForm(ctx context.Context, path string, form url.Values, opts ...RequestOption) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL(path), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, opts)
}

func (a *APIService) do(req *http.Request, opts []RequestOption) (*APIResponse, error) {
	var cfg requestConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	for k, v := range cfg.headers {
		req.Header.Set(k, v)
	}
	for _, c := range cfg.cookies {
		req.AddCookie(c)
	}

	client := a.httpClient
	if cfg.noRedirect {
		c := *a.httpClient
		c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
		client = &c
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Cookies:    resp.Cookies(),
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
