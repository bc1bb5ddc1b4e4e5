package main

import (
	"context"
	"os"
)

func main() {
	runner := NewRunner(RunnerOpts{ConfigPath: "config.toml"})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		runner.logger.Fatalf("application error: %v", err)
	}
}
