package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/xes/internal/shared"
)

// ClientOpts configures a [Client]. Zero values fall back to the embedded defaults.
type ClientOpts struct {
	Config     *shared.APIConfig
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client talks to the three hosts of the platform: the passport host (captcha and password
// login), the login host (code exchange) and the code site (profile, works, comments).
//
// A Client holds no session. Authenticated calls take a [*User] explicitly.
type Client struct {
	passport *APIService
	login    *APIService
	code     *APIService

	cfg      shared.APIConfig
	deviceID string
	limiter  *rate.Limiter
	logger   *log.Logger
}

// NewClient builds a client from opts.
func NewClient(opts ClientOpts) *Client {
	cfg := shared.DefaultConfig().API
	if opts.Config != nil {
		cfg = *opts.Config
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = shared.GenerateID()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		passport: NewAPIService(cfg.PassportURL, httpClient),
		login:    NewAPIService(cfg.LoginURL, httpClient),
		code:     NewAPIService(cfg.CodeURL, httpClient),
		cfg:      cfg,
		deviceID: deviceID,
		limiter:  limiter,
		logger:   logger,
	}
}

// Code returns the adapter for the code site, for raw requests.
func (c *Client) Code() *APIService { return c.code }

// DeviceID returns the device id sent to the passport host.
func (c *Client) DeviceID() string { return c.deviceID }

// AppID returns the comment application id.
func (c *Client) AppID() int { return c.cfg.AppID }

func (c *Client) passportHeaders() []RequestOption {
	return []RequestOption{
		WithHeader("client-id", c.cfg.ClientID),
		WithHeader("device-id", c.deviceID),
		WithHeader("ver-num", c.cfg.VerNum),
		WithHeader("referer", c.cfg.Referer),
	}
}

func (c *Client) codeHeaders(user *User) []RequestOption {
	opts := []RequestOption{WithHeader("User-Agent", c.cfg.UserAgent)}
	if cookies := user.Cookies(); len(cookies) > 0 {
		opts = append(opts, WithCookies(cookies...))
	}
	return opts
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return wrapAPIError("request cancelled", err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, svc *APIService, path string, form url.Values, extra ...RequestOption) (*APIResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("request", "method", http.MethodPost, "url", svc.URL(path))
	resp, err := svc.PostForm(ctx, path, form, append(c.passportHeaders(), extra...)...)
	if err != nil {
		return nil, wrapAPIError("network error", err)
	}
	return resp, nil
}

func (c *Client) codeGet(ctx context.Context, path string, user *User) (*APIResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("request", "method", http.MethodGet, "url", c.code.URL(path))
	resp, err := c.code.Get(ctx, path, c.codeHeaders(user)...)
	if err != nil {
		return nil, wrapAPIError("network error", err)
	}
	return resp, nil
}

func (c *Client) codePost(ctx context.Context, path string, body any, user *User) (*APIResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, wrapAPIError("failed to encode request", err)
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("request", "method", http.MethodPost, "url", c.code.URL(path))
	resp, err := c.code.Post(ctx, path, data, c.codeHeaders(user)...)
	if err != nil {
		return nil, wrapAPIError("network error", err)
	}
	return resp, nil
}

func decodePassport[T any](c *Client, resp *APIResponse, requireData bool) (*T, error) {
	out, err := resolve[T](resp, &passportEnvelope{}, requireData)
	if err != nil {
		c.logger.Warn("passport rejected request", "status", resp.StatusCode, "msg", Message(err))
	}
	return out, err
}

func decodeCode[T any](c *Client, resp *APIResponse, requireData bool) (*T, error) {
	out, err := resolve[T](resp, &codeEnvelope{}, requireData)
	if err != nil {
		c.logger.Warn("code site rejected request", "status", resp.StatusCode, "msg", Message(err))
	}
	return out, err
}
