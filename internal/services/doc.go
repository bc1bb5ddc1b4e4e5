// Package services is the client for the Xueersi coding platform.
//
// # Hosts
//
// A [Client] wraps three [APIService] adapters:
//   - passport: captcha issuance and password login ({errcode, errmsg, data} envelope)
//   - login: exchange of the one-time code for session cookies
//   - code: profile, works, likes, comments ({stat, msg, message, data} envelope)
//
// Envelopes are resolved once in [resolve]; callers only see a payload or an [*APIError].
//
// # Login
//
// [Client.Login] issues a [Captcha] bound to the credentials. [Captcha.Resolve] submits the
// captcha text, then posts the returned code to the login host and captures its cookies
// into a [User]. A challenge is one-shot.
//
// # Handles
//
// [Work], [Comment] and [Reply] pair a record with an optional [User]. Writes without a
// user fail with [shared.ErrNotAuthenticated] and never touch the network.
//
// # Listings
//
// [Work.Comments] and [Comment.Replies] return a [Pager] that fetches one page per
// exhausted buffer and stops at the first page whose length is not the page size.
//
// # Error Handling
//
// Every failure is an [*APIError]. It unwraps to a shared sentinel:
//   - [shared.ErrAPIRequest] : remote rejection, missing data or transport failure
//   - [shared.ErrNotAuthenticated] : write without a session
//   - [shared.ErrInvalidCaptcha] : captcha image with an unexpected encoding
//   - [shared.ErrCaptchaConsumed] : captcha resolved twice
//   - [shared.ErrInvalidInput] : empty credentials, captcha text or content
package services
