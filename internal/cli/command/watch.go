package command

import (
	"fmt"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/envlayer/internal/cli/output"
	"github.com/yndnr/envlayer/internal/infra/confloader"
)

// WatchCommand prints the configuration again whenever a layer changes.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print the merged configuration on every layer change until interrupted",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period after a file event before reloading",
				Value: confloader.DefaultDebounce,
			},
		},
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	ws := GetWorkspace(c)
	s := ws.Settings

	r, err := confloader.NewReloader(ws.Loader, ws.Prefixes(), s.Directory, s.Environment,
		confloader.WithDebounce(c.Duration("debounce")),
	)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	emit := func(cfg *confloader.MergedConfig) {
		mu.Lock()
		defer mu.Unlock()
		if ws.Format == output.FormatTable || ws.Format == output.FormatDotenv {
			fmt.Fprintf(c.App.Writer, "# %s mode=%s layers=%v\n",
				time.Now().Format(time.RFC3339), cfg.Mode, cfg.Loaded())
		}
		if err := ws.Render(c.App.Writer, ws.Values(cfg.Raw)); err != nil {
			ws.Logger.Error("cannot print config", "error", err)
		}
	}
	r.Subscribe(emit)
	emit(r.Current())

	ctx, stop := ws.Shutdown.Context(c.Context)
	defer stop()

	return r.Run(ctx)
}
