// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func globalFlags(configPath string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   configPath,
			Sources: cli.EnvVars("XES_CONFIG"),
		},
		&cli.StringFlag{
			Name:  "tal-token",
			Usage: "Session tal_token cookie (overrides config)",
		},
		&cli.StringFlag{
			Name:  "xes-rfh",
			Usage: "Session xes_rfh cookie (overrides config)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// loginCommand runs the interactive login wizard
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in with account, password and captcha",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Pre-fill the account",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Prompt line by line instead of running the TUI",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log destination while the TUI is running",
				Value: "./tmp/xes-tui.log",
			},
		},
		Action: r.Login,
	}
}

// sessionCommand handles session import
func sessionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Manage the stored session",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import session cookies from a browser request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Fetch the profile to check the session",
					},
					&cli.BoolFlag{
						Name:  "toml",
						Usage: "Print a [session] block to paste into the config file",
					},
				},
				Action: r.SessionImport,
			},
		},
	}
}

// userCommand handles account operations
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Account operations",
		Commands: []*cli.Command{
			{
				Name:  "info",
				Usage: "Show the profile of the current session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UserInfo,
			},
		},
	}
}

// workCommand handles work, comment and reply operations
func workCommand(r *Runner) *cli.Command {
	idArg := func() cli.Argument { return &cli.StringArg{Name: "id"} }
	commentArg := func() cli.Argument { return &cli.StringArg{Name: "comment"} }
	contentFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:     "content",
			Aliases:  []string{"m"},
			Usage:    "Text to send",
			Required: true,
		}
	}

	return &cli.Command{
		Name:  "work",
		Usage: "Work operations",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a work",
				Arguments: []cli.Argument{idArg()},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WorkGet,
			},
			{
				Name:      "like",
				Usage:     "Like a work",
				Arguments: []cli.Argument{idArg()},
				Action:    r.WorkLike,
			},
			{
				Name:      "unlike",
				Usage:     "Unlike a work",
				Arguments: []cli.Argument{idArg()},
				Action:    r.WorkUnlike,
			},
			{
				Name:      "comment",
				Usage:     "Post a comment on a work",
				Arguments: []cli.Argument{idArg()},
				Flags:     []cli.Flag{contentFlag()},
				Action:    r.WorkComment,
			},
			{
				Name:      "comments",
				Usage:     "List the comments of a work",
				Arguments: []cli.Argument{idArg()},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of comments, 0 for all",
						Value: 15,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WorkComments,
			},
			{
				Name:      "replies",
				Usage:     "List the replies of a comment",
				Arguments: []cli.Argument{idArg(), commentArg()},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of replies, 0 for all",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WorkReplies,
			},
			{
				Name:      "reply",
				Usage:     "Reply to a comment, or to a reply with --to",
				Arguments: []cli.Argument{idArg(), commentArg()},
				Flags: []cli.Flag{
					contentFlag(),
					&cli.StringFlag{
						Name:  "to",
						Usage: "ID of the reply to answer",
					},
				},
				Action: r.WorkReply,
			},
			{
				Name:      "export",
				Usage:     "Export a work's comments and replies",
				Arguments: []cli.Argument{idArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (json, csv, markdown, txt)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, - for stdout",
					},
					&cli.IntFlag{
						Name:  "max",
						Usage: "Maximum number of comments, 0 for all",
					},
					&cli.BoolFlag{
						Name:  "skip-replies",
						Usage: "Do not fetch replies",
					},
				},
				Action: r.WorkExport,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the community API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET with the session cookies, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// configCommand handles configuration files
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write the default configuration to --config",
				Action: r.ConfigInit,
			},
		},
	}
}
