package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/xes/internal/models"
	"github.com/desertthunder/xes/internal/services"
	"github.com/desertthunder/xes/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	LoadingView
	CaptchaView
	ResultView
	ErrorView
)

// CaptchaLength is the number of characters the passport captcha uses.
const CaptchaLength = 4

const previewWidth = 60

// Model represents the login wizard state.
type Model struct {
	ctx    context.Context
	auth   services.Authenticator
	logger *log.Logger
	open   func(string) error

	view     ViewState
	width    int
	height   int
	focus    int
	username textinput.Model
	password textinput.Model
	captcha  textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	challenge *services.Captcha
	preview   string
	imagePath string
	notice    string

	user *services.User
	info *models.InfoData
	err  error
}

// Option customizes a [Model].
type Option func(*Model)

// WithUsername pre-fills the account field and focuses the password.
func WithUsername(username string) Option {
	return func(m *Model) {
		m.username.SetValue(username)
		if username != "" {
			m.focus = 1
		}
	}
}

// WithOpener replaces the function used to open the captcha image externally.
func WithOpener(open func(string) error) Option {
	return func(m *Model) { m.open = open }
}

// WithLogger sets the logger. The TUI owns the terminal, so this should not write to it.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// NewModel creates the login wizard.
func NewModel(ctx context.Context, auth services.Authenticator, opts ...Option) *Model {
	username := textinput.New()
	username.Placeholder = "手机号 / 邮箱"
	username.Prompt = ""

	password := textinput.New()
	password.Placeholder = "密码"
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	captcha := textinput.New()
	captcha.Prompt = ""
	captcha.CharLimit = CaptchaLength

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:      ctx,
		auth:     auth,
		logger:   shared.NewLogger(io.Discard),
		open:     shared.OpenExternal,
		view:     LoginView,
		username: username,
		password: password,
		captcha:  captcha,
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.focusField()
	return m
}

// Init focuses the first field.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// State returns the current view.
func (m *Model) State() ViewState { return m.view }

// Result returns the session, the profile and the error the wizard ended with.
func (m *Model) Result() (*services.User, *models.InfoData, error) {
	return m.user, m.info, m.err
}

// Close removes the captcha image written for external viewing.
func (m *Model) Close() {
	if m.imagePath != "" {
		os.Remove(m.imagePath)
		m.imagePath = ""
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case CaptchaView:
			return m.handleCaptchaKeys(msg)
		case ResultView, ErrorView:
			if key.Matches(msg, m.keys.exit) {
				return m, tea.Quit
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != LoadingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCaptchaIssued:
		data := msg.data.(captchaIssued)
		if data.err != nil {
			return m.fail(data.err)
		}
		m.Close()
		m.challenge = data.challenge
		m.preview = data.preview
		m.imagePath = data.path
		m.notice = ""
		m.captcha.Reset()
		m.view = CaptchaView
		m.focusField()
		return m, textinput.Blink

	case MsgLoggedIn:
		data := msg.data.(loggedIn)
		if data.user == nil {
			return m.fail(data.err)
		}
		m.user = data.user
		m.info = data.info
		m.notice = ""
		if data.err != nil {
			m.logger.Warn("logged in but failed to fetch profile", "err", data.err)
			m.notice = "无法获取用户信息: " + services.Message(data.err)
		}
		m.view = ResultView
		m.logger.Info("login complete")
		return m, nil
	}
	return m, nil
}

func (m *Model) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.view = ErrorView
	m.logger.Error("login failed", "err", err)
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.next):
		m.focus = (m.focus + 1) % 2
		m.focusField()
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.focus = (m.focus + 1) % 2
		m.focusField()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.focus == 0 && m.password.Value() == "" {
			m.focus = 1
			m.focusField()
			return m, nil
		}
		return m.submitLogin()
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) submitLogin() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()
	if username == "" || password == "" {
		m.notice = "请输入账户和密码"
		return m, nil
	}

	m.notice = ""
	m.view = LoadingView
	return m, tea.Batch(m.spinner.Tick, m.requestCaptcha(username, password))
}

func (m *Model) handleCaptchaKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.open):
		if m.imagePath == "" {
			m.notice = "验证码图片不可用"
			return m, nil
		}
		if err := m.open(m.imagePath); err != nil {
			m.logger.Warn("failed to open captcha image", "err", err)
			m.notice = fmt.Sprintf("无法打开图片: %s", m.imagePath)
		}
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.Close()
		m.challenge = nil
		m.view = LoginView
		m.focusField()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if len(m.captcha.Value()) == CaptchaLength {
			return m.submitCaptcha(m.captcha.Value())
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		runes := filterCaptcha(msg.Runes)
		if len(runes) == 0 {
			return m, nil
		}
		msg.Runes = runes
	}

	var cmd tea.Cmd
	m.captcha, cmd = m.captcha.Update(msg)
	if v := m.captcha.Value(); len(v) == CaptchaLength {
		return m.submitCaptcha(v)
	}
	return m, cmd
}

func (m *Model) submitCaptcha(text string) (tea.Model, tea.Cmd) {
	m.view = LoadingView
	return m, tea.Batch(m.spinner.Tick, m.resolveCaptcha(m.challenge, text))
}

func (m *Model) focusField() {
	m.username.Blur()
	m.password.Blur()
	m.captcha.Blur()

	switch m.view {
	case LoginView:
		if m.focus == 0 {
			m.username.Focus()
		} else {
			m.password.Focus()
		}
	case CaptchaView:
		m.captcha.Focus()
	}
}

func (m *Model) requestCaptcha(username, password string) tea.Cmd {
	return func() tea.Msg {
		challenge, err := m.auth.Login(m.ctx, username, password)
		if err != nil {
			return captchaIssuedMsg(captchaIssued{err: err})
		}

		img, err := challenge.ImageBytes()
		if err != nil {
			return captchaIssuedMsg(captchaIssued{err: err})
		}

		data := captchaIssued{challenge: challenge, preview: renderPreview(img, previewWidth)}
		if path, err := writeCaptcha(img); err != nil {
			m.logger.Warn("failed to write captcha image", "err", err)
		} else {
			data.path = path
		}
		return captchaIssuedMsg(data)
	}
}

func (m *Model) resolveCaptcha(challenge *services.Captcha, text string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.auth.Resolve(m.ctx, challenge, text)
		if err != nil {
			return loggedInMsg(nil, nil, err)
		}

		info, err := m.auth.Info(m.ctx, user)
		return loggedInMsg(user, info, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case LoadingView:
		return fmt.Sprintf("%s 请稍等", m.spinner.View())
	case CaptchaView:
		return m.renderCaptcha()
	case ResultView:
		return m.renderResult()
	case ErrorView:
		return m.renderError()
	default:
		return ""
	}
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("[1/3] 登录到学而思") + "\n")
	b.WriteString(styles.label.Render("账户:") + m.username.View() + "\n")
	b.WriteString(styles.label.Render("密码:") + m.password.View() + "\n")
	if m.notice != "" {
		b.WriteString("\n" + styles.warn.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.enter, m.keys.quit}))
	return b.String()
}

func (m *Model) renderCaptcha() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("[2/3] 请通过机器人验证") + "\n")
	if m.preview != "" {
		b.WriteString(styles.frame.Render(m.preview) + "\n")
	} else {
		b.WriteString(styles.help.Render("(无法预览验证码，按 ctrl+o 打开图片)") + "\n")
	}
	if m.imagePath != "" {
		b.WriteString(styles.help.Render(m.imagePath) + "\n")
	}
	b.WriteString("\n" + styles.label.Render("验证码:") + m.captcha.View() + "\n")
	if m.notice != "" {
		b.WriteString("\n" + styles.warn.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.open, m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderResult() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("[3/3] 完成") + "\n")
	b.WriteString(styles.ok.Render("请查看控制台输出获得结果。") + "\n")
	if m.notice != "" {
		b.WriteString("\n" + styles.warn.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.exit}))
	return b.String()
}

func (m *Model) renderError() string {
	title := styles.err.Render("发生了一些错误")
	return fmt.Sprintf("%s\n请重启应用程序。\n\n错误:\n%s\n\n%s", title, services.Message(m.err), m.help.ShortHelpView([]key.Binding{m.keys.exit}))
}

// filterCaptcha keeps the characters the passport captcha can contain: [a-zA-Z1-9].
func filterCaptcha(runes []rune) []rune {
	out := runes[:0:0]
	for _, r := range runes {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '1' && r <= '9') {
			out = append(out, r)
		}
	}
	return out
}

func writeCaptcha(img []byte) (string, error) {
	f, err := os.CreateTemp("", "xes-captcha-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create captcha file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(img); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write captcha file: %w", err)
	}
	return f.Name(), nil
}
