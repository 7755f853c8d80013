package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/envlayer/internal/cli/config"
	"github.com/yndnr/envlayer/internal/cli/output"
	"github.com/yndnr/envlayer/internal/infra/buildinfo"
	"github.com/yndnr/envlayer/internal/infra/confloader"
	"github.com/yndnr/envlayer/internal/infra/shutdown"
	"github.com/yndnr/envlayer/internal/telemetry/logger"
	"github.com/yndnr/envlayer/internal/telemetry/metric"
)

const workspaceKey = "workspace"

// shutdownTimeout bounds the cleanup hooks run after every command.
const shutdownTimeout = 5 * time.Second

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:      "envlayer",
		Usage:     "Load layered .env files and run commands with them",
		UsageText: "envlayer [global options] command [command options] [arguments...]",
		Version:   buildinfo.Get().Version,
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			ShowCommand(),
			LayersCommand(),
			ModeCommand(),
			ExecCommand(),
			WatchCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before:   setup,
		After:    teardown,
		Metadata: map[string]any{},
		// main maps cli.ExitCoder to the process exit status.
		ExitErrHandler: func(*cli.Context, error) {},
	}

	return app
}

// globalFlags returns the global CLI flags. Unset flags fall back to
// ENVLAYER_* variables, then the settings file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Directory holding the .env layers",
		},
		&cli.StringFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Environment name (e.g., development, production, test)",
		},
		&cli.StringSliceFlag{
			Name:    "prefix",
			Aliases: []string{"p"},
			Usage:   "Keep only keys with this prefix (repeatable; default: all keys)",
		},
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Force the layering mode: basic, simple, local (default: detect)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml, dotenv",
		},
		&cli.BoolFlag{
			Name:  "reveal",
			Usage: "Print values of secret-looking keys instead of masking them",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Settings file",
			Value:   config.DefaultPath(),
			EnvVars: []string{"ENVLAYER_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "metrics-textfile",
			Usage: "Write Prometheus metrics to this file on exit",
		},
	}
}

// Workspace is the state every command works with, resolved once per run.
type Workspace struct {
	Settings *config.Settings
	Format   output.Format
	Reveal   bool
	Logger   logger.Logger
	Metrics  *metric.Registry
	Loader   *confloader.Loader
	Shutdown *shutdown.Handler

	loaderOpts []confloader.Option
}

// GetWorkspace retrieves the workspace from context.
func GetWorkspace(c *cli.Context) *Workspace {
	if ws, ok := c.App.Metadata[workspaceKey].(*Workspace); ok {
		return ws
	}
	return nil
}

// ApplyFlags overrides settings with the global flags that were set.
func ApplyFlags(c *cli.Context, s *config.Settings) {
	if c.IsSet("dir") {
		s.Directory = c.String("dir")
	}
	if c.IsSet("env") {
		s.Environment = c.String("env")
	}
	if c.IsSet("prefix") {
		s.Prefixes = c.StringSlice("prefix")
	}
	if c.IsSet("mode") {
		s.Mode = c.String("mode")
	}
	if c.IsSet("output") {
		s.Output = c.String("output")
	}
	if c.IsSet("log-level") {
		s.LogLevel = c.String("log-level")
	}
	if c.IsSet("metrics-textfile") {
		s.MetricsTextfile = c.String("metrics-textfile")
	}
}

// NewWorkspace builds a workspace from resolved settings. Logs go to errOut.
func NewWorkspace(s *config.Settings, errOut io.Writer) (*Workspace, error) {
	format, err := output.ParseFormat(s.Output)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  s.LogLevel,
		Format: "text",
		Output: errOut,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	ws := &Workspace{
		Settings: s,
		Format:   format,
		Logger:   log,
		Metrics:  metric.NewRegistry(),
		Shutdown: shutdown.NewHandler(shutdownTimeout),
	}

	ws.loaderOpts = []confloader.Option{
		confloader.WithLogger(log),
		confloader.WithMetrics(ws.Metrics),
	}
	if s.Mode != "" {
		mode, err := confloader.ParseMode(s.Mode)
		if err != nil {
			return nil, err
		}
		ws.loaderOpts = append(ws.loaderOpts, confloader.WithMode(mode))
	}
	ws.Loader = ws.NewLoader()

	if path := s.MetricsTextfile; path != "" {
		ws.Shutdown.OnShutdown(func(context.Context) error {
			if err := ws.Metrics.WriteTextfile(path); err != nil {
				return fmt.Errorf("write metrics textfile: %w", err)
			}
			return nil
		})
	}

	return ws, nil
}

// NewLoader returns a loader configured like ws.Loader plus opts.
func (ws *Workspace) NewLoader(opts ...confloader.Option) *confloader.Loader {
	all := append(append([]confloader.Option(nil), ws.loaderOpts...), opts...)
	return confloader.NewLoader(all...)
}

// Prefixes returns the allow-list. No configured prefix keeps every key.
func (ws *Workspace) Prefixes() []string {
	if len(ws.Settings.Prefixes) == 0 {
		return []string{""}
	}
	return ws.Settings.Prefixes
}

// Load loads the configured directory and environment.
func (ws *Workspace) Load() (*confloader.MergedConfig, error) {
	return ws.Loader.Load(ws.Prefixes(), ws.Settings.Directory, ws.Settings.Environment)
}

// Values masks secret-looking values unless the workspace reveals them.
func (ws *Workspace) Values(values map[string]string) map[string]string {
	if ws.Reveal {
		return values
	}
	return logger.RedactValues(values)
}

// Render writes data to w in the workspace's output format.
func (ws *Workspace) Render(w io.Writer, data any) error {
	return output.NewFormatter(ws.Format).Format(w, data)
}

func setup(c *cli.Context) error {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	ApplyFlags(c, settings)

	ws, err := NewWorkspace(settings, c.App.ErrWriter)
	if err != nil {
		return err
	}
	ws.Reveal = c.Bool("reveal")

	c.App.Metadata[workspaceKey] = ws
	return nil
}

func teardown(c *cli.Context) error {
	ws := GetWorkspace(c)
	if ws == nil {
		return nil
	}
	return ws.Shutdown.Shutdown()
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
