package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/xes/internal/models"
	"github.com/desertthunder/xes/internal/services"
	"github.com/desertthunder/xes/internal/shared"
	"github.com/desertthunder/xes/internal/ui"
	"github.com/urfave/cli/v3"
)

// Login runs the login flow and prints the resulting session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	var (
		user *services.User
		info *models.InfoData
		err  error
	)

	if cmd.Bool("plain") {
		user, info, err = r.plainLogin(ctx, cmd.String("username"))
	} else {
		user, info, err = r.tuiLogin(ctx, cmd.String("username"), cmd.String("log-file"))
	}
	if err != nil {
		return err
	}

	r.writePlain("Tal-token: %s\n", user.TalToken())
	r.writePlain("Xes-Rfh: %s\n", user.XesRfh())
	if info != nil {
		if err := r.writeJSON(info, true); err != nil {
			return err
		}
	}
	return nil
}

// tuiLogin runs the wizard. Logs go to logPath while the TUI owns the terminal.
func (r *Runner) tuiLogin(ctx context.Context, username, logPath string) (*services.User, *models.InfoData, error) {
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())

	model := ui.NewModel(ctx, r.newClient(fileLogger),
		ui.WithUsername(username),
		ui.WithLogger(fileLogger),
		ui.WithOpener(r.open),
	)
	defer model.Close()

	if err := r.runProgram(model); err != nil {
		return nil, nil, fmt.Errorf("error running TUI: %w", err)
	}

	user, info, err := model.Result()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, services.Message(err))
	}
	if user == nil {
		return nil, nil, fmt.Errorf("%w: login cancelled", shared.ErrAuthFailed)
	}
	return user, info, nil
}

// plainLogin prompts for each field on r.input, for terminals the TUI cannot drive.
func (r *Runner) plainLogin(ctx context.Context, username string) (*services.User, *models.InfoData, error) {
	in := bufio.NewReader(r.input)

	var err error
	if username == "" {
		if username, err = r.prompt(in, "账户: "); err != nil {
			return nil, nil, err
		}
	}
	password, err := r.prompt(in, "密码: ")
	if err != nil {
		return nil, nil, err
	}

	challenge, err := r.client.Login(ctx, username, password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, services.Message(err))
	}

	img, err := challenge.ImageBytes()
	if err != nil {
		return nil, nil, err
	}

	path, err := writeCaptcha(img)
	if err != nil {
		return nil, nil, err
	}
	defer os.Remove(path)

	r.writePlain("验证码图片: %s\n", path)
	if err := r.open(path); err != nil {
		r.logger.Warn("failed to open captcha image", "path", path, "err", err)
	}

	text, err := r.prompt(in, "验证码: ")
	if err != nil {
		return nil, nil, err
	}

	user, err := challenge.Resolve(ctx, text)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, services.Message(err))
	}

	info, err := r.client.Info(ctx, user)
	if err != nil {
		r.logger.Warn("logged in but failed to fetch profile", "err", err)
		return user, nil, nil
	}
	return user, info, nil
}

func (r *Runner) prompt(in *bufio.Reader, label string) (string, error) {
	r.writePlain("%s", label)

	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.TrimSuffix(label, ": "))
	}
	return line, nil
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
