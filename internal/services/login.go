package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/desertthunder/xes/internal/models"
	"github.com/desertthunder/xes/internal/shared"
)

const (
	captchaPath  = "/v1/web/captcha/get"
	passwordPath = "/v1/web/login/pwd"
	tokenPath    = "/V1/Web/getToken"

	// captchaScene is the scene id the passport host expects for a password login.
	captchaScene = "3"
)

// Captcha is a captcha challenge bound to the credentials that produced it.
//
// It can be resolved once. A second [Captcha.Resolve] fails without a network call,
// whether the first attempt succeeded or not.
type Captcha struct {
	client   *Client
	username string
	password string
	image    string

	mu   sync.Mutex
	used bool
}

// NewCaptcha binds an already issued captcha image to credentials.
func NewCaptcha(client *Client, username, password, image string) *Captcha {
	return &Captcha{client: client, username: username, password: password, image: image}
}

// Login requests a captcha for username and password.
func (c *Client) Login(ctx context.Context, username, password string) (*Captcha, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, &APIError{What: "username and password are required", kind: shared.ErrInvalidInput}
	}

	form := url.Values{
		"symbol":   {username},
		"password": {password},
		"scene":    {captchaScene},
	}

	resp, err := c.postForm(ctx, c.passport, captchaPath, form)
	if err != nil {
		return nil, err
	}

	data, err := decodePassport[models.CaptchaData](c, resp, true)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("captcha issued", "username", username)
	return NewCaptcha(c, username, password, data.Captcha), nil
}

// Resolve resolves challenge with the captcha text the user typed.
func (c *Client) Resolve(ctx context.Context, challenge *Captcha, text string) (*User, error) {
	if challenge == nil {
		return nil, &APIError{What: "no captcha challenge", kind: shared.ErrInvalidInput}
	}
	return challenge.resolve(ctx, c, text)
}

// Image returns the captcha as a data URL.
func (ch *Captcha) Image() string { return ch.image }

// ImageBytes decodes the captcha JPEG.
func (ch *Captcha) ImageBytes() ([]byte, error) { return DecodeCaptchaImage(ch.image) }

// Username returns the account the challenge was issued for.
func (ch *Captcha) Username() string { return ch.username }

// Used reports whether the challenge has been consumed.
func (ch *Captcha) Used() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.used
}

// Resolve submits the credentials with text, then exchanges the returned code for
// the session cookies.
//
// The returned [User] is built from whatever cookies the exchange sets; a missing
// cookie is logged but not treated as a failure.
func (ch *Captcha) Resolve(ctx context.Context, text string) (*User, error) {
	return ch.resolve(ctx, nil, text)
}

// resolve binds an unbound challenge to fallback and consumes it. Binding and the
// one-shot flag share ch.mu.
func (ch *Captcha) resolve(ctx context.Context, fallback *Client, text string) (*User, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &APIError{What: "captcha text is required", kind: shared.ErrInvalidInput}
	}

	ch.mu.Lock()
	if ch.client == nil {
		ch.client = fallback
	}
	c := ch.client
	if c == nil {
		ch.mu.Unlock()
		return nil, &APIError{What: "captcha is not bound to a client", kind: shared.ErrInvalidInput}
	}
	if ch.used {
		ch.mu.Unlock()
		return nil, &APIError{What: "captcha already used", kind: shared.ErrCaptchaConsumed}
	}
	ch.used = true
	ch.mu.Unlock()

	form := url.Values{
		"symbol":   {ch.username},
		"password": {ch.password},
		"captcha":  {text},
	}

	resp, err := c.postForm(ctx, c.passport, passwordPath, form)
	if err != nil {
		return nil, err
	}

	token, err := decodePassport[models.TalTokenData](c, resp, true)
	if err != nil {
		return nil, err
	}
	if token.Code == "" {
		return nil, newAPIError("login returned no exchange code")
	}

	resp, err = c.postForm(ctx, c.login, tokenPath, url.Values{"code": {token.Code}}, WithoutRedirect())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("token exchange failed", "status", resp.StatusCode)
		return nil, newAPIError(http.StatusText(resp.StatusCode))
	}

	user := NewUser(resp.Cookies)
	for _, name := range []string{TalTokenCookie, XesRfhCookie} {
		if user.Cookie(name) == "" {
			c.logger.Warn("token exchange did not set cookie", "cookie", name)
		}
	}

	c.logger.Info("logged in", "username", ch.username)
	return user, nil
}
