package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/xes/internal/services"
	"github.com/desertthunder/xes/internal/shared"
	"github.com/urfave/cli/v3"
)

// SessionImport extracts the session cookies from a browser cURL command.
func (r *Runner) SessionImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	cookies := curlHeaders.Cookies()
	user := services.UserFromTokens(cookies[services.TalTokenCookie], cookies[services.XesRfhCookie])
	if !user.HasSession() {
		return fmt.Errorf("%w: no %s or %s cookie in request", shared.ErrInvalidInput, services.TalTokenCookie, services.XesRfhCookie)
	}

	if cmd.Bool("verify") {
		info, err := r.client.Info(ctx, user)
		if err != nil {
			return fmt.Errorf("%w: %s", shared.ErrAuthFailed, services.Message(err))
		}
		r.writePlain("✓ Logged in as %s\n", info.Nickname)
	}

	if cmd.Bool("toml") {
		block := struct {
			Session shared.SessionConfig `toml:"session"`
		}{shared.SessionConfig{TalToken: user.TalToken(), XesRfh: user.XesRfh()}}
		if err := toml.NewEncoder(r.output).Encode(block); err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		return nil
	}

	r.writePlain("Tal-token: %s\n", shared.Mask(user.TalToken()))
	r.writePlain("Xes-Rfh: %s\n", shared.Mask(user.XesRfh()))
	return nil
}

// UserInfo prints the profile of the current session.
func (r *Runner) UserInfo(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireSession(cmd)
	if err != nil {
		return err
	}

	info, err := r.client.Info(ctx, user)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, true)
	}

	r.writePlainHeader(info.Nickname)
	r.writePlain("ID: %s\n", info.ID)
	r.writePlain("Name: %s\n", info.Realname)
	r.writePlain("Grade: %s\n", info.GradeName)
	r.writePlain("Joined: %s\n", info.CreateTime)
	return nil
}

// APIGet makes a direct GET request against the community host.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	opts := []services.RequestOption{services.WithHeader("User-Agent", r.config.API.UserAgent)}
	if cookies := r.session(cmd).Cookies(); len(cookies) > 0 {
		opts = append(opts, services.WithCookies(cookies...))
	}

	resp, err := r.client.Code().Get(ctx, path, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// ConfigInit writes the default configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Created %s\n", r.configPath)
	return nil
}
