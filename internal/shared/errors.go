package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrCaptchaConsumed  = fmt.Errorf("captcha already resolved")

	// API and service errors
	ErrAPIRequest      = fmt.Errorf("API request failed")
	ErrCommentNotFound = fmt.Errorf("comment not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidCaptcha  = fmt.Errorf("invalid captcha image")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
