package command

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/envlayer/internal/core/domain"
	"github.com/yndnr/envlayer/internal/infra/confloader"
)

// ExecCommand runs a child process with the layers injected.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Run a command with the merged configuration in its environment",
		ArgsUsage: "-- COMMAND [ARGS...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "override",
				Usage: "Let layer values replace variables that are already set",
			},
		},
		Action: execAction,
	}
}

func execAction(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return domain.ErrInvalidArgument.WithDetails("exec needs a command to run")
	}

	ws := GetWorkspace(c)
	s := ws.Settings

	// The child's table starts as a copy of ours and never touches it.
	env := environMap(os.Environ())
	loader := ws.NewLoader(confloader.WithEnvironment(env))

	cfg, err := loader.Load(ws.Prefixes(), s.Directory, s.Environment)
	if err != nil {
		return err
	}
	res := loader.Inject(cfg, c.Bool("override"))
	ws.Logger.Debug("starting child process",
		"command", args[0],
		"written", len(res.Written),
		"skipped", len(res.Skipped),
	)

	cmd := exec.CommandContext(c.Context, args[0], args[1:]...)
	cmd.Env = environList(env)
	cmd.Stdin = os.Stdin
	cmd.Stdout = c.App.Writer
	cmd.Stderr = c.App.ErrWriter

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				code = 1
			}
			return cli.Exit("", code)
		}
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	return nil
}

// environMap parses KEY=value pairs as returned by os.Environ.
func environMap(pairs []string) confloader.MapEnvironment {
	env := make(confloader.MapEnvironment, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

// environList renders env for exec.Cmd.Env in sorted key order.
func environList(env confloader.MapEnvironment) []string {
	keys := env.Keys()
	slices.Sort(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+env[k])
	}
	return pairs
}
