package confloader

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yndnr/envlayer/internal/core/domain"
	"github.com/yndnr/envlayer/internal/telemetry/logger"
	"github.com/yndnr/envlayer/internal/telemetry/metric"
)

// keyDelim is the koanf path delimiter. Dotenv keys may contain dots
// but never colons, so a colon keeps every key flat.
const keyDelim = ":"

// defaultsLayer names the WithDefaults pseudo-layer in origins.
const defaultsLayer = "defaults"

// File is one layer as read from disk.
type File struct {
	Layer
	// Exists is false when the layer file was absent and skipped.
	Exists bool
	// Values holds the parsed pairs; nil when the file does not exist.
	Values map[string]string
}

// MergedConfig is the result of one load.
type MergedConfig struct {
	// Raw holds the merged pairs whose key matches a prefix.
	Raw map[string]string

	Mode        Mode
	Environment string
	Directory   string
	// Files lists every candidate layer in precedence order.
	Files []File

	all    map[string]string
	origin map[string]string
}

// All returns a copy of the merge before prefix filtering.
func (c *MergedConfig) All() map[string]string {
	return copyMap(c.all)
}

// Keys returns the keys of Raw in sorted order.
func (c *MergedConfig) Keys() []string {
	return sortedKeys(c.Raw)
}

// Loaded returns the names of the layers that existed on disk.
func (c *MergedConfig) Loaded() []string {
	var names []string
	for _, f := range c.Files {
		if f.Exists {
			names = append(names, f.Name)
		}
	}
	return names
}

// Origin returns the name of the layer that supplied the winning value
// for key, or false if key is not part of the merge.
func (c *MergedConfig) Origin(key string) (string, bool) {
	name, ok := c.origin[key]
	return name, ok
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithMode forces a mode instead of detecting it from the directory.
func WithMode(mode Mode) Option {
	return func(l *Loader) {
		l.mode = mode
	}
}

// WithDefaults adds a pseudo-layer below .env. Values are stringified.
func WithDefaults(defaults map[string]any) Option {
	return func(l *Loader) {
		l.defaults = defaults
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		l.logger = log
	}
}

// WithMetrics records load and inject outcomes in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(l *Loader) {
		l.metrics = reg
	}
}

// WithEnvironment sets the environment table Inject writes to.
// Defaults to the process environment.
func WithEnvironment(env Environment) Option {
	return func(l *Loader) {
		l.env = env
	}
}

// Loader loads layered dotenv configuration.
// A Loader holds no state between loads and may be reused.
type Loader struct {
	mode     Mode
	defaults map[string]any
	logger   logger.Logger
	metrics  *metric.Registry
	env      Environment
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger: logger.Default(),
		env:    OSEnvironment{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoadConfig loads the layers of directory for environment and keeps
// only keys that start with one of prefixes. It is shorthand for
// NewLoader(opts...).Load(prefixes, directory, environment).
func LoadConfig(prefixes []string, directory, environment string, opts ...Option) (*MergedConfig, error) {
	return NewLoader(opts...).Load(prefixes, directory, environment)
}

// Load resolves the LayerSet, parses every layer that exists, folds
// them in precedence order and filters the result by prefixes.
//
// Missing layer files are skipped. A missing directory yields
// domain.ErrDirectoryNotFound and a malformed file domain.ErrParse.
func (l *Loader) Load(prefixes []string, directory, environment string) (*MergedConfig, error) {
	start := time.Now()
	cfg, err := l.load(prefixes, directory, environment)

	mode := "unknown"
	var loaded []string
	retained := 0
	if cfg != nil {
		mode = cfg.Mode.String()
		loaded = cfg.Loaded()
		retained = len(cfg.Raw)
	} else if l.mode != "" {
		mode = l.mode.String()
	}
	l.metrics.ObserveLoad(mode, err, time.Since(start), loaded, retained)

	if err != nil {
		l.logger.Warn("config load failed",
			"dir", directory,
			"env", environment,
			"error", err,
		)
		return nil, err
	}

	l.logger.Info("config loaded",
		"dir", directory,
		"env", environment,
		"mode", cfg.Mode.String(),
		"layers", strings.Join(loaded, ","),
		"vars", retained,
	)
	return cfg, nil
}

func (l *Loader) load(prefixes []string, directory, environment string) (*MergedConfig, error) {
	if err := checkDirectory(directory); err != nil {
		return nil, err
	}
	if err := ValidateEnvironment(environment); err != nil {
		return nil, err
	}

	mode := l.mode
	if mode == "" {
		detected, err := DetectMode(directory)
		if err != nil {
			return nil, err
		}
		mode = detected
	}

	layers, err := Layers(directory, mode, environment)
	if err != nil {
		return nil, err
	}

	k := koanf.New(keyDelim)
	origin := make(map[string]string)

	if len(l.defaults) > 0 {
		if err := k.Load(mapProvider(copyAnyMap(l.defaults)), nil); err != nil {
			return nil, fmt.Errorf("load defaults: %w", err)
		}
		for key := range l.defaults {
			origin[key] = defaultsLayer
		}
	}

	files := make([]File, 0, len(layers))
	for _, layer := range layers {
		f, parsed, err := readLayer(layer)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		if !f.Exists {
			l.logger.Debug("layer absent, skipped", "layer", layer.Name)
			continue
		}

		if err := k.Load(mapProvider(parsed), nil); err != nil {
			return nil, fmt.Errorf("merge %s: %w", layer.Path, err)
		}
		for key := range f.Values {
			origin[key] = layer.Name
		}
		l.logger.Debug("layer merged", "layer", layer.Name, "vars", len(f.Values))
	}

	all := stringMap(k.All())

	return &MergedConfig{
		Raw:         FilterPrefixes(all, prefixes),
		Mode:        mode,
		Environment: environment,
		Directory:   directory,
		Files:       files,
		all:         all,
		origin:      origin,
	}, nil
}

// readLayer reads and parses one layer. A missing file is returned
// with Exists == false and no error.
func readLayer(layer Layer) (File, map[string]any, error) {
	f := File{Layer: layer}

	info, err := os.Stat(layer.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil, nil
		}
		return f, nil, domain.ErrLayerUnreadable.WithDetails(layer.Path).WithCause(err)
	}
	if info.IsDir() {
		return f, nil, domain.ErrLayerUnreadable.WithDetails(layer.Path + " is a directory")
	}

	b, err := file.Provider(layer.Path).ReadBytes()
	if err != nil {
		return f, nil, domain.ErrLayerUnreadable.WithDetails(layer.Path).WithCause(err)
	}

	parsed, err := dotenv.Parser().Unmarshal(b)
	if err != nil {
		return f, nil, domain.ErrParse.WithDetails(layer.Path).WithCause(err)
	}

	f.Exists = true
	f.Values = stringMap(parsed)
	return f, parsed, nil
}

// FilterPrefixes returns a new map holding the entries of values whose
// key starts with at least one of prefixes. An empty prefix list keeps
// nothing; the empty string prefix keeps everything.
func FilterPrefixes(values map[string]string, prefixes []string) map[string]string {
	out := make(map[string]string)
	for k, v := range values {
		if HasAnyPrefix(k, prefixes) {
			out[k] = v
		}
	}
	return out
}

// HasAnyPrefix reports whether key starts with one of prefixes.
func HasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func stringMap(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch s := v.(type) {
		case string:
			out[k] = s
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(s)
		}
	}
	return out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyAnyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
