// package services implements the platform client: login flow, session handle,
// resource handles and paginated listings.
package services

import (
	"context"

	"github.com/desertthunder/xes/internal/models"
)

// Authenticator is the part of [Client] the login wizard depends on.
type Authenticator interface {
	// Login requests a captcha challenge for the credentials.
	Login(ctx context.Context, username, password string) (*Captcha, error)

	// Resolve submits the captcha text and exchanges the resulting code for a session.
	Resolve(ctx context.Context, challenge *Captcha, text string) (*User, error)

	// Info fetches the profile of the session's account.
	Info(ctx context.Context, user *User) (*models.InfoData, error)
}

var _ Authenticator = (*Client)(nil)
