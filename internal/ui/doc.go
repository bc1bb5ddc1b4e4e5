// Package ui implements the interactive login wizard using bubbletea's Elm architecture.
//
// The wizard walks through:
//  1. [LoginView] : account and password fields (tab to switch, enter to submit)
//  2. [LoadingView] : spinner while a request is in flight
//  3. [CaptchaView] : half-block preview of the captcha JPEG; the image is also written to a
//     temp file that ctrl+o opens externally. Input accepts [a-zA-Z1-9] and submits at 4 characters.
//  4. [ResultView] : success; the caller prints the session and profile after the program exits
//  5. [ErrorView] : any failure, with the error message
//
// The (view) [Model] depends on [services.Authenticator] only, so it runs against a fake in tests.
// Network calls run inside tea.Cmd functions and report back through the Msg union type.
package ui
