package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/xes/internal/models"
	"github.com/desertthunder/xes/internal/services"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCaptchaIssued MsgKind = iota
	MsgLoggedIn
)

type captchaIssued struct {
	challenge *services.Captcha
	preview   string
	path      string
	err       error
}

type loggedIn struct {
	user *services.User
	info *models.InfoData
	err  error
}

// captchaIssuedMsg is the constructor for [MsgCaptchaIssued]
func captchaIssuedMsg(data captchaIssued) Msg {
	return Msg{kind: MsgCaptchaIssued, data: data}
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(user *services.User, info *models.InfoData, err error) Msg {
	return Msg{kind: MsgLoggedIn, data: loggedIn{user: user, info: info, err: err}}
}
