package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/envlayer/internal/cli/config"
	"github.com/yndnr/envlayer/internal/core/domain"
)

// ConfigCommand returns the settings subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "envlayer settings management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective settings",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write the effective settings to the settings file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing settings file",
					},
				},
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	ws := GetWorkspace(c)
	return ws.Render(c.App.Writer, ws.Settings)
}

func configInit(c *cli.Context) error {
	ws := GetWorkspace(c)

	path := c.String("config")
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		if !c.Bool("force") {
			return domain.ErrInvalidArgument.WithDetails(path + " already exists; use --force to overwrite")
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := config.Save(ws.Settings, path); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	_, err := fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	return err
}
