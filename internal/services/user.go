package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/xes/internal/models"
)

// Session cookie names.
const (
	TalTokenCookie = "tal_token"
	XesRfhCookie   = "xes_rfh"
)

const userInfoPath = "/api/user/info"

// User is a session handle: the cookies captured at login.
//
// It is immutable after construction and safe to share between goroutines.
type User struct {
	cookies map[string]string
}

// NewUser captures the session cookies from a response.
func NewUser(cookies []*http.Cookie) *User {
	u := &User{cookies: make(map[string]string, len(cookies))}
	for _, c := range cookies {
		u.cookies[c.Name] = c.Value
	}
	return u
}

// UserFromTokens builds a session from known cookie values.
func UserFromTokens(talToken, xesRfh string) *User {
	u := &User{cookies: map[string]string{}}
	if talToken != "" {
		u.cookies[TalTokenCookie] = talToken
	}
	if xesRfh != "" {
		u.cookies[XesRfhCookie] = xesRfh
	}
	return u
}

// TalToken returns the tal_token cookie, or "" when the login response did not set it.
func (u *User) TalToken() string { return u.Cookie(TalTokenCookie) }

// XesRfh returns the xes_rfh cookie, or "" when the login response did not set it.
func (u *User) XesRfh() string { return u.Cookie(XesRfhCookie) }

// Cookie returns the named session cookie.
func (u *User) Cookie(name string) string {
	if u == nil {
		return ""
	}
	return u.cookies[name]
}

// HasSession reports whether at least one session cookie is present.
func (u *User) HasSession() bool {
	return u.TalToken() != "" || u.XesRfh() != ""
}

// Cookies returns the session cookies to attach to a request, skipping empty ones.
func (u *User) Cookies() []*http.Cookie {
	var cookies []*http.Cookie
	for _, name := range []string{TalTokenCookie, XesRfhCookie} {
		if v := u.Cookie(name); v != "" {
			cookies = append(cookies, &http.Cookie{Name: name, Value: v})
		}
	}
	return cookies
}

// Info fetches the profile of the account behind user.
func (c *Client) Info(ctx context.Context, user *User) (*models.InfoData, error) {
	if user == nil {
		return nil, errNotLoggedIn()
	}

	resp, err := c.codeGet(ctx, userInfoPath, user)
	if err != nil {
		return nil, err
	}
	return decodeCode[models.InfoData](c, resp, true)
}
