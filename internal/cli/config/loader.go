package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath returns the settings file path in the working directory.
func DefaultPath() string {
	return FileName
}

// Load resolves settings from defaults, the settings file at path and
// ENVLAYER_* variables. A missing file is not an error. An empty path
// means DefaultPath.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath()
	}

	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load settings file %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat settings file %s: %w", path, err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransformer), nil); err != nil {
		return nil, fmt.Errorf("load settings environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return cfg, nil
}

// envTransformer maps ENVLAYER_LOG_LEVEL to log_level. ENVLAYER_PREFIXES
// is a comma-separated list.
func envTransformer(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "prefixes" {
		var prefixes []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				prefixes = append(prefixes, p)
			}
		}
		return key, prefixes
	}
	return key, value
}

// Save writes settings to path as YAML. An empty path means DefaultPath.
func Save(cfg *Settings, path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
