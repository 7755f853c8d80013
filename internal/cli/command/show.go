package command

import (
	"fmt"
	"maps"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/envlayer/internal/cli/output"
	"github.com/yndnr/envlayer/internal/core/domain"
	"github.com/yndnr/envlayer/internal/infra/confloader"
)

// ShowCommand prints the merged configuration.
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the merged configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Ignore the prefix allow-list",
			},
			&cli.BoolFlag{
				Name:  "origin",
				Usage: "Show which layer supplied each value",
			},
		},
		Action: showAction,
	}
}

// LayersCommand prints the layer files the current mode reads.
func LayersCommand() *cli.Command {
	return &cli.Command{
		Name:   "layers",
		Usage:  "List the layer files in precedence order",
		Action: layersAction,
	}
}

// ModeCommand prints the layering mode.
func ModeCommand() *cli.Command {
	return &cli.Command{
		Name:   "mode",
		Usage:  "Print the layering mode for the directory",
		Action: modeAction,
	}
}

type originRow struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
	Layer string `json:"layer" yaml:"layer"`
}

type layerRow struct {
	Rank   int    `json:"rank" yaml:"rank"`
	Name   string `json:"name" yaml:"name"`
	Exists bool   `json:"exists" yaml:"exists"`
	Keys   int    `json:"keys" yaml:"keys"`
	Path   string `json:"path" yaml:"path" table:"-"`
}

type modeInfo struct {
	Directory   string `json:"directory" yaml:"directory"`
	Environment string `json:"environment" yaml:"environment"`
	Mode        string `json:"mode" yaml:"mode"`
	Forced      bool   `json:"forced" yaml:"forced"`
}

func showAction(c *cli.Context) error {
	ws := GetWorkspace(c)

	cfg, err := ws.Load()
	if err != nil {
		return err
	}

	values := cfg.Raw
	if c.Bool("all") {
		values = cfg.All()
	}
	values = ws.Values(values)

	if !c.Bool("origin") {
		return ws.Render(c.App.Writer, values)
	}
	if ws.Format == output.FormatDotenv {
		return domain.ErrInvalidArgument.WithDetails("--origin cannot be written as dotenv")
	}

	rows := make([]originRow, 0, len(values))
	for _, k := range slices.Sorted(maps.Keys(values)) {
		layer, _ := cfg.Origin(k)
		rows = append(rows, originRow{Key: k, Value: values[k], Layer: layer})
	}
	return ws.Render(c.App.Writer, rows)
}

func layersAction(c *cli.Context) error {
	ws := GetWorkspace(c)
	if ws.Format == output.FormatDotenv {
		return domain.ErrInvalidArgument.WithDetails("layers cannot be written as dotenv")
	}

	cfg, err := ws.Load()
	if err != nil {
		return err
	}

	rows := make([]layerRow, 0, len(cfg.Files))
	for _, f := range cfg.Files {
		rows = append(rows, layerRow{
			Rank:   f.Rank,
			Name:   f.Name,
			Exists: f.Exists,
			Keys:   len(f.Values),
			Path:   f.Path,
		})
	}
	return ws.Render(c.App.Writer, rows)
}

func modeAction(c *cli.Context) error {
	ws := GetWorkspace(c)
	s := ws.Settings

	info := modeInfo{Directory: s.Directory, Environment: s.Environment}
	if s.Mode != "" {
		mode, err := confloader.ParseMode(s.Mode)
		if err != nil {
			return err
		}
		info.Mode, info.Forced = mode.String(), true
	} else {
		mode, err := confloader.DetectMode(s.Directory)
		if err != nil {
			return err
		}
		info.Mode = mode.String()
	}

	switch ws.Format {
	case output.FormatTable:
		_, err := fmt.Fprintln(c.App.Writer, info.Mode)
		return err
	case output.FormatDotenv:
		return ws.Render(c.App.Writer, map[string]string{"ENVLAYER_MODE": info.Mode})
	default:
		return ws.Render(c.App.Writer, info)
	}
}
