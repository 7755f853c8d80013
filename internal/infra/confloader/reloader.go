package confloader

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/yndnr/envlayer/internal/telemetry/logger"
)

// DefaultDebounce is how long the Reloader waits after the last file
// event before reloading. Editors often emit several events per save.
const DefaultDebounce = 100 * time.Millisecond

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithDebounce sets the quiet period between a file event and a reload.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *Reloader) {
		r.debounce = d
	}
}

// Reloader keeps a MergedConfig current by reloading it whenever a
// layer file in its directory changes.
type Reloader struct {
	loader      *Loader
	prefixes    []string
	directory   string
	environment string
	debounce    time.Duration

	mu          sync.RWMutex
	current     *MergedConfig
	subscribers []func(*MergedConfig)
}

// NewReloader performs the initial load and returns a Reloader serving
// its result. It fails if the initial load fails.
func NewReloader(loader *Loader, prefixes []string, directory, environment string, opts ...ReloaderOption) (*Reloader, error) {
	r := &Reloader{
		loader:      loader,
		prefixes:    append([]string(nil), prefixes...),
		directory:   directory,
		environment: environment,
		debounce:    DefaultDebounce,
	}
	for _, opt := range opts {
		opt(r)
	}

	cfg, err := loader.Load(r.prefixes, directory, environment)
	if err != nil {
		return nil, err
	}
	r.current = cfg
	return r, nil
}

// Current returns the most recent successfully loaded config.
func (r *Reloader) Current() *MergedConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Subscribe registers fn to receive every config whose filtered values
// differ from the previous one.
func (r *Reloader) Subscribe(fn func(*MergedConfig)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// Reload loads the directory again. On failure the current config is
// kept and the error returned.
func (r *Reloader) Reload() error {
	cfg, err := r.loader.Load(r.prefixes, r.directory, r.environment)
	r.loader.metrics.ObserveReload(err)
	if err != nil {
		r.loader.logger.Warn("reload failed, keeping previous config", "error", err)
		return err
	}

	r.mu.Lock()
	changed := r.current == nil || !maps.Equal(r.current.Raw, cfg.Raw)
	r.current = cfg
	subs := make([]func(*MergedConfig), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.Unlock()

	if !changed {
		r.loader.logger.Debug("reload produced identical config")
		return nil
	}
	for _, fn := range subs {
		fn(cfg)
	}
	return nil
}

// Run watches the directory and reloads on change until ctx is done.
func (r *Reloader) Run(ctx context.Context) error {
	log := logger.L(logger.WithScope(logger.WithLogger(ctx, r.loader.logger), r.directory, r.environment))

	w, err := NewWatcher(WithWatcherLogger(logger.AsSlog(r.loader.logger)))
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Watch(r.directory); err != nil {
		return err
	}

	trigger := make(chan struct{}, 1)
	w.OnChange(func(string) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	w.StartAsync()
	log.Info("watching for layer changes")

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Info("stopped watching")
			return nil
		case <-trigger:
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			_ = r.Reload()
		}
	}
}
