package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/xes/internal/services"
	"github.com/desertthunder/xes/internal/shared"
	"github.com/desertthunder/xes/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.Client
	exporter   tasks.Exporter
	httpClient *http.Client
	logger     *log.Logger
	input      io.Reader
	output     io.Writer
	open       func(string) error
	runProgram func(tea.Model) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Exporter   tasks.Exporter
	HTTPClient *http.Client
	Logger     *log.Logger
	Input      io.Reader
	Output     io.Writer
	Opener     func(string) error
	RunProgram func(tea.Model) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout()}
	}
	if opts.Exporter == nil {
		opts.Exporter = tasks.NewThreadExporter(opts.Logger)
	}
	if opts.Opener == nil {
		opts.Opener = shared.OpenExternal
	}
	if opts.RunProgram == nil {
		opts.RunProgram = func(m tea.Model) error {
			_, err := tea.NewProgram(m).Run()
			return err
		}
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		exporter:   opts.Exporter,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		input:      opts.Input,
		output:     opts.Output,
		open:       opts.Opener,
		runProgram: opts.RunProgram,
	}
	r.client = r.newClient(r.logger)
	return r
}

func (r *Runner) newClient(logger *log.Logger) *services.Client {
	return services.NewClient(services.ClientOpts{
		Config:     &r.config.API,
		HTTPClient: r.httpClient,
		Logger:     logger,
	})
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "xes",
		Usage:    "Command line client for the Xueersi coding community",
		Version:  "0.1.0",
		Flags:    globalFlags(r.configPath),
		Before:   r.prepare,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		loginCommand, sessionCommand, userCommand, workCommand, apiCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// prepare loads the config file named by --config, if present, and rebuilds the client from it.
func (r *Runner) prepare(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.config.ApplyEnv()
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	r.httpClient.Timeout = r.config.API.Timeout()
	r.client = r.newClient(r.logger)
	return ctx, nil
}

// session builds the session from the global flags, falling back to the config.
//
// Returns nil when no cookie is known.
func (r *Runner) session(cmd *cli.Command) *services.User {
	tal, rfh := r.config.Session.TalToken, r.config.Session.XesRfh
	if v := cmd.String("tal-token"); v != "" {
		tal = v
	}
	if v := cmd.String("xes-rfh"); v != "" {
		rfh = v
	}
	if tal == "" && rfh == "" {
		return nil
	}
	return services.UserFromTokens(tal, rfh)
}

func (r *Runner) requireSession(cmd *cli.Command) (*services.User, error) {
	if user := r.session(cmd); user != nil {
		return user, nil
	}
	return nil, fmt.Errorf("%w: run 'xes login' or pass --tal-token and --xes-rfh", shared.ErrNotAuthenticated)
}

func parseID(name, value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, value)
	}
	return id, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
