package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/envlayer/internal/cli/output"
	"github.com/yndnr/envlayer/internal/infra/buildinfo"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			ws := GetWorkspace(c)
			if ws.Format == output.FormatTable || ws.Format == output.FormatDotenv {
				_, err := fmt.Fprintf(c.App.Writer, "%s %s\n", c.App.Name, buildinfo.String())
				return err
			}
			return ws.Render(c.App.Writer, buildinfo.Get())
		},
	}
}
