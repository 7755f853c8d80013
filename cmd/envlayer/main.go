package main

import (
	"errors"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/envlayer/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := exitErr.Error(); msg != "" {
				command.PrintError("%s", msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		command.PrintError("%v", err)
		os.Exit(1)
	}
}
