package confloader

import (
	"os"
	"sort"
	"strings"

	"github.com/knadh/koanf/providers/env"

	"github.com/yndnr/envlayer/internal/telemetry/logger"
)

// Environment is a mutable key-value table of environment variables.
type Environment interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Unsetenv(key string) error
	// Keys returns every key currently set.
	Keys() []string
}

// OSEnvironment is the process environment.
type OSEnvironment struct{}

// LookupEnv implements Environment.
func (OSEnvironment) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// Setenv implements Environment.
func (OSEnvironment) Setenv(key, value string) error { return os.Setenv(key, value) }

// Unsetenv implements Environment.
func (OSEnvironment) Unsetenv(key string) error { return os.Unsetenv(key) }

// Keys implements Environment.
func (OSEnvironment) Keys() []string {
	environ := os.Environ()
	keys := make([]string, 0, len(environ))
	for _, kv := range environ {
		if k, _, ok := strings.Cut(kv, "="); ok && k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// MapEnvironment is an in-memory Environment for tests and dry runs.
type MapEnvironment map[string]string

// LookupEnv implements Environment.
func (m MapEnvironment) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Setenv implements Environment.
func (m MapEnvironment) Setenv(key, value string) error {
	m[key] = value
	return nil
}

// Unsetenv implements Environment.
func (m MapEnvironment) Unsetenv(key string) error {
	delete(m, key)
	return nil
}

// Keys implements Environment.
func (m MapEnvironment) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// InjectResult reports what an injection did, with keys sorted.
type InjectResult struct {
	// Written holds keys whose value was set.
	Written []string
	// Skipped holds keys left alone because they were already set.
	Skipped []string
	// Failed holds keys the environment refused.
	Failed []string
}

// InjectConfig copies cfg.Raw into the process environment. Unless
// override is true, keys that are already set keep their value.
func InjectConfig(cfg *MergedConfig, override bool) InjectResult {
	return NewLoader().Inject(cfg, override)
}

// Inject copies cfg.Raw into the loader's environment table.
func (l *Loader) Inject(cfg *MergedConfig, override bool) InjectResult {
	if cfg == nil {
		return InjectResult{}
	}
	res := inject(l.env, cfg.Raw, override, l.logger)
	l.metrics.ObserveInject(len(res.Written), len(res.Skipped))
	return res
}

// InjectInto copies values into env. Unless override is true, keys
// already present in env are skipped. Keys are visited in sorted order.
func InjectInto(env Environment, values map[string]string, override bool) InjectResult {
	return inject(env, values, override, logger.Default())
}

func inject(env Environment, values map[string]string, override bool, log logger.Logger) InjectResult {
	var res InjectResult
	for _, k := range sortedKeys(values) {
		if !override {
			if _, exists := env.LookupEnv(k); exists {
				res.Skipped = append(res.Skipped, k)
				continue
			}
		}
		if err := env.Setenv(k, values[k]); err != nil {
			log.Warn("cannot set environment variable", "var", k, "error", err)
			res.Failed = append(res.Failed, k)
			continue
		}
		res.Written = append(res.Written, k)
	}

	log.Debug("config injected",
		"written", len(res.Written),
		"skipped", len(res.Skipped),
		"override", override,
	)
	return res
}

// Flush unsets every key in env that starts with one of prefixes and
// returns the removed keys in sorted order.
func Flush(env Environment, prefixes []string) []string {
	var removed []string
	for _, k := range env.Keys() {
		if !HasAnyPrefix(k, prefixes) {
			continue
		}
		if err := env.Unsetenv(k); err == nil {
			removed = append(removed, k)
		}
	}
	sort.Strings(removed)
	return removed
}

// Snapshot returns the process environment entries whose key starts
// with one of prefixes.
func Snapshot(prefixes []string) (map[string]string, error) {
	provider := env.Provider("", "", func(key string) string {
		if HasAnyPrefix(key, prefixes) {
			return key
		}
		return ""
	})

	values, err := provider.Read()
	if err != nil {
		return nil, err
	}
	return stringMap(values), nil
}

