package confloader

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/envlayer/internal/core/domain"
	"github.com/yndnr/envlayer/internal/telemetry/logger"
	"github.com/yndnr/envlayer/internal/telemetry/metric"
)

const testPrefix = "DOTENV_PREFIX_TEST_"

var (
	testModes = []string{"basic", "simple", "local"}
	testEnvs  = []string{"development", "production", "test"}
)

// writeLayers creates dir/name files with the given contents.
func writeLayers(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.mode != "" {
		t.Errorf("mode = %q, want auto-detect", l.mode)
	}
	if l.logger == nil {
		t.Error("logger is nil")
	}
	if _, ok := l.env.(OSEnvironment); !ok {
		t.Errorf("env = %T, want OSEnvironment", l.env)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	reg := metric.NewRegistry()
	env := MapEnvironment{}
	l := NewLoader(
		WithMode(ModeSimple),
		WithMetrics(reg),
		WithEnvironment(env),
		WithDefaults(map[string]any{"X": 1}),
		WithLogger(logger.Discard()),
	)

	if l.mode != ModeSimple {
		t.Errorf("mode = %q, want %q", l.mode, ModeSimple)
	}
	if l.metrics != reg {
		t.Error("WithMetrics() option not applied")
	}
	if l.defaults["X"] != 1 {
		t.Error("WithDefaults() option not applied")
	}
}

func TestLoadConfig_Matrix(t *testing.T) {
	want := map[string]map[string]map[string]string{
		"basic": {
			"development": {"DOTENV_PREFIX_TEST_A": "1"},
			"production":  {"DOTENV_PREFIX_TEST_A": "1"},
			"test":        {"DOTENV_PREFIX_TEST_A": "1"},
		},
		"simple": {
			"development": {"DOTENV_PREFIX_TEST_A": "1", "DOTENV_PREFIX_TEST_B": "development"},
			"production":  {"DOTENV_PREFIX_TEST_A": "1", "DOTENV_PREFIX_TEST_B": "production"},
			"test":        {"DOTENV_PREFIX_TEST_A": "1", "DOTENV_PREFIX_TEST_B": "test"},
		},
		"local": {
			"development": {
				"DOTENV_PREFIX_TEST_A": "2",
				"DOTENV_PREFIX_TEST_B": "development",
				"DOTENV_PREFIX_TEST_C": "development-local",
			},
			"production": {
				"DOTENV_PREFIX_TEST_A": "2",
				"DOTENV_PREFIX_TEST_B": "production",
				"DOTENV_PREFIX_TEST_C": "local",
			},
			"test": {
				"DOTENV_PREFIX_TEST_A": "2",
				"DOTENV_PREFIX_TEST_B": "test",
				"DOTENV_PREFIX_TEST_C": "local",
			},
		},
	}

	for _, mode := range testModes {
		t.Run(mode, func(t *testing.T) {
			for _, env := range testEnvs {
				t.Run(env, func(t *testing.T) {
					cfg, err := LoadConfig([]string{testPrefix}, filepath.Join("testdata", mode), env,
						WithLogger(logger.Discard()))
					if err != nil {
						t.Fatalf("LoadConfig() error = %v", err)
					}
					if !maps.Equal(cfg.Raw, want[mode][env]) {
						t.Errorf("Raw = %v, want %v", cfg.Raw, want[mode][env])
					}
					if cfg.Mode.String() != mode {
						t.Errorf("Mode = %q, want %q", cfg.Mode, mode)
					}
					if cfg.Environment != env {
						t.Errorf("Environment = %q, want %q", cfg.Environment, env)
					}
				})
			}
		})
	}
}

func TestLoadConfig_LocalOverridesBase(t *testing.T) {
	cfg, err := LoadConfig([]string{testPrefix}, filepath.Join("testdata", "local"), "test",
		WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if got := cfg.Raw["DOTENV_PREFIX_TEST_A"]; got != "2" {
		t.Errorf("DOTENV_PREFIX_TEST_A = %q, want %q", got, "2")
	}
	if origin, _ := cfg.Origin("DOTENV_PREFIX_TEST_A"); origin != ".env.local" {
		t.Errorf("Origin(A) = %q, want %q", origin, ".env.local")
	}
	if origin, _ := cfg.Origin("DOTENV_PREFIX_TEST_B"); origin != ".env.test" {
		t.Errorf("Origin(B) = %q, want %q", origin, ".env.test")
	}
	if _, ok := cfg.Origin("NOPE"); ok {
		t.Error("Origin() should report false for unknown keys")
	}
}

func TestLoadConfig_FilterDoesNotMutateMerge(t *testing.T) {
	cfg, err := LoadConfig([]string{testPrefix}, filepath.Join("testdata", "basic"), "development",
		WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	all := cfg.All()
	if all["UNRELATED_KEY"] != "ignored" {
		t.Errorf("All() should keep unfiltered keys, got %v", all)
	}
	if _, ok := cfg.Raw["UNRELATED_KEY"]; ok {
		t.Error("Raw should not contain keys outside the prefix list")
	}

	// All returns a copy.
	all["DOTENV_PREFIX_TEST_A"] = "changed"
	if cfg.All()["DOTENV_PREFIX_TEST_A"] != "1" {
		t.Error("mutating All() result must not affect the config")
	}
}

func TestLoadConfig_Files(t *testing.T) {
	cfg, err := LoadConfig([]string{testPrefix}, filepath.Join("testdata", "local"), "production",
		WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	wantNames := []string{".env", ".env.production", ".env.local", ".env.production.local"}
	if len(cfg.Files) != len(wantNames) {
		t.Fatalf("len(Files) = %d, want %d", len(cfg.Files), len(wantNames))
	}
	for i, name := range wantNames {
		if cfg.Files[i].Name != name {
			t.Errorf("Files[%d].Name = %q, want %q", i, cfg.Files[i].Name, name)
		}
		if cfg.Files[i].Rank != i {
			t.Errorf("Files[%d].Rank = %d, want %d", i, cfg.Files[i].Rank, i)
		}
	}
	if cfg.Files[3].Exists {
		t.Error(".env.production.local does not exist in the fixture")
	}

	loaded := cfg.Loaded()
	if len(loaded) != 3 {
		t.Errorf("Loaded() = %v, want 3 layers", loaded)
	}
}

func TestLoadConfig_Deterministic(t *testing.T) {
	dir := filepath.Join("testdata", "local")
	first, err := LoadConfig([]string{testPrefix}, dir, "development", WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := LoadConfig([]string{testPrefix}, dir, "development", WithLogger(logger.Discard()))
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if !maps.Equal(first.Raw, again.Raw) {
			t.Fatalf("load %d differs: %v vs %v", i, again.Raw, first.Raw)
		}
	}
}

func TestLoadConfig_DoesNotTouchProcessEnv(t *testing.T) {
	Flush(OSEnvironment{}, []string{testPrefix})

	_, err := LoadConfig([]string{testPrefix}, filepath.Join("testdata", "local"), "test",
		WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	snap, err := Snapshot([]string{testPrefix})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("LoadConfig leaked into the process environment: %v", snap)
	}
}

func TestLoadConfig_ForcedMode(t *testing.T) {
	// The local fixture loaded as basic only sees .env.
	cfg, err := LoadConfig([]string{testPrefix}, filepath.Join("testdata", "local"), "test",
		WithMode(ModeBasic), WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if got := cfg.Raw["DOTENV_PREFIX_TEST_A"]; got != "1" {
		t.Errorf("DOTENV_PREFIX_TEST_A = %q, want %q", got, "1")
	}
	if got := cfg.Raw["DOTENV_PREFIX_TEST_B"]; got != "base" {
		t.Errorf("DOTENV_PREFIX_TEST_B = %q, want %q", got, "base")
	}
	if len(cfg.Files) != 1 {
		t.Errorf("len(Files) = %d, want 1", len(cfg.Files))
	}
}

func TestLoadConfig_MultiplePrefixes(t *testing.T) {
	dir := t.TempDir()
	writeLayers(t, dir, map[string]string{
		".env": "REACT_APP_API=/api\nNEXT_PUBLIC_ID=7\nDATABASE_URL=postgres://\n",
	})

	cfg, err := LoadConfig([]string{"REACT_APP_", "NEXT_PUBLIC_"}, dir, "development",
		WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := map[string]string{"REACT_APP_API": "/api", "NEXT_PUBLIC_ID": "7"}
	if !maps.Equal(cfg.Raw, want) {
		t.Errorf("Raw = %v, want %v", cfg.Raw, want)
	}
	if keys := cfg.Keys(); len(keys) != 2 || keys[0] != "NEXT_PUBLIC_ID" {
		t.Errorf("Keys() = %v, want sorted keys", keys)
	}
}

func TestLoadConfig_EmptyPrefixList(t *testing.T) {
	cfg, err := LoadConfig(nil, filepath.Join("testdata", "basic"), "test", WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Raw) != 0 {
		t.Errorf("Raw = %v, want empty for an empty prefix list", cfg.Raw)
	}
	if len(cfg.All()) == 0 {
		t.Error("All() should still hold the merge")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeLayers(t, dir, map[string]string{
		".env": "APP_PORT=8080\n",
	})

	cfg, err := LoadConfig([]string{"APP_"}, dir, "development",
		WithDefaults(map[string]any{"APP_PORT": 3000, "APP_DEBUG": false}),
		WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if got := cfg.Raw["APP_PORT"]; got != "8080" {
		t.Errorf("APP_PORT = %q, want .env to override defaults", got)
	}
	if got := cfg.Raw["APP_DEBUG"]; got != "false" {
		t.Errorf("APP_DEBUG = %q, want %q", got, "false")
	}
	if origin, _ := cfg.Origin("APP_DEBUG"); origin != defaultsLayer {
		t.Errorf("Origin(APP_DEBUG) = %q, want %q", origin, defaultsLayer)
	}
}

func TestLoadConfig_Expansion(t *testing.T) {
	dir := t.TempDir()
	writeLayers(t, dir, map[string]string{
		".env": "APP_HOST=example.com\nAPP_URL=https://${APP_HOST}/v1\nAPP_RAW='${APP_HOST}'\n",
	})

	cfg, err := LoadConfig([]string{"APP_"}, dir, "development", WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if got := cfg.Raw["APP_URL"]; got != "https://example.com/v1" {
		t.Errorf("APP_URL = %q, want expanded value", got)
	}
	if got := cfg.Raw["APP_RAW"]; got != "${APP_HOST}" {
		t.Errorf("APP_RAW = %q, single quotes must not expand", got)
	}
}

func TestLoadConfig_MissingLayersSkipped(t *testing.T) {
	dir := t.TempDir()
	writeLayers(t, dir, map[string]string{
		".env.local": "APP_ONLY=local\n",
	})

	cfg, err := LoadConfig([]string{"APP_"}, dir, "staging", WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Mode != ModeLocal {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeLocal)
	}
	if cfg.Raw["APP_ONLY"] != "local" {
		t.Errorf("Raw = %v", cfg.Raw)
	}
}

func TestLoadConfig_EmptyDirectory(t *testing.T) {
	cfg, err := LoadConfig([]string{"APP_"}, t.TempDir(), "development", WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Mode != ModeBasic {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeBasic)
	}
	if len(cfg.Raw) != 0 || len(cfg.Loaded()) != 0 {
		t.Errorf("empty directory should load nothing, got %v / %v", cfg.Raw, cfg.Loaded())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	notDir := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(notDir, []byte("X=1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name    string
		dir     string
		env     string
		opts    []Option
		wantErr *domain.DomainError
	}{
		{
			name:    "directory not found",
			dir:     "/nonexistent/envlayer",
			env:     "development",
			wantErr: domain.ErrDirectoryNotFound,
		},
		{
			name:    "path is a file",
			dir:     notDir,
			env:     "development",
			wantErr: domain.ErrNotDirectory,
		},
		{
			name:    "empty environment",
			dir:     filepath.Join("testdata", "basic"),
			env:     "",
			wantErr: domain.ErrInvalidEnvironment,
		},
		{
			name:    "path-like environment",
			dir:     filepath.Join("testdata", "basic"),
			env:     "../prod",
			wantErr: domain.ErrInvalidEnvironment,
		},
		{
			name:    "invalid forced mode",
			dir:     filepath.Join("testdata", "basic"),
			env:     "test",
			opts:    []Option{WithMode("fancy")},
			wantErr: domain.ErrInvalidMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{WithLogger(logger.Discard())}, tt.opts...)
			cfg, err := LoadConfig([]string{"X"}, tt.dir, tt.env, opts...)
			if err == nil {
				t.Fatal("LoadConfig() expected error")
			}
			if cfg != nil {
				t.Error("LoadConfig() should return nil config on error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad key", "APP_A=1\nthis-line-is-broken=2\n"},
		{"unterminated quote", "APP_A=\"never closed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeLayers(t, dir, map[string]string{
				".env":            "APP_A=0\n",
				".env.production": tt.content,
			})

			_, err := LoadConfig([]string{"APP_"}, dir, "production", WithLogger(logger.Discard()))
			if !errors.Is(err, domain.ErrParse) {
				t.Fatalf("LoadConfig() error = %v, want ErrParse", err)
			}

			var de *domain.DomainError
			if !errors.As(err, &de) {
				t.Fatal("error should be a DomainError")
			}
			if de.Details != filepath.Join(dir, ".env.production") {
				t.Errorf("Details = %q, want the offending file", de.Details)
			}
		})
	}
}

func TestLoadConfig_LayerIsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".env"), 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	_, err := LoadConfig([]string{"APP_"}, dir, "development", WithLogger(logger.Discard()))
	if !errors.Is(err, domain.ErrLayerUnreadable) {
		t.Errorf("LoadConfig() error = %v, want ErrLayerUnreadable", err)
	}
}

func TestLoader_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	l := NewLoader(WithMetrics(reg), WithLogger(logger.Discard()))

	if _, err := l.Load([]string{testPrefix}, filepath.Join("testdata", "local"), "test"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := l.Load([]string{testPrefix}, "/nonexistent", "test"); err == nil {
		t.Fatal("Load() expected error")
	}

	if got := testutil.ToFloat64(reg.LoadsTotal.WithLabelValues("local", metric.ResultOK)); got != 1 {
		t.Errorf("loads{local,ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.LoadsTotal.WithLabelValues("unknown", metric.ResultError)); got != 1 {
		t.Errorf("loads{unknown,error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.KeysRetained); got != 3 {
		t.Errorf("keys_retained = %v, want 3", got)
	}
	if got := testutil.ToFloat64(reg.LayersRead.WithLabelValues(".env.local")); got != 1 {
		t.Errorf("layers_read{.env.local} = %v, want 1", got)
	}
}

func TestFilterPrefixes(t *testing.T) {
	values := map[string]string{
		"REACT_APP_A": "1",
		"REACT_B":     "2",
		"OTHER":       "3",
	}

	tests := []struct {
		name     string
		prefixes []string
		want     map[string]string
	}{
		{"single", []string{"REACT_APP_"}, map[string]string{"REACT_APP_A": "1"}},
		{"overlapping", []string{"REACT_", "REACT_APP_"}, map[string]string{"REACT_APP_A": "1", "REACT_B": "2"}},
		{"none", nil, map[string]string{}},
		{"empty prefix keeps all", []string{""}, values},
		{"case sensitive", []string{"react_"}, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPrefixes(values, tt.prefixes)
			if !maps.Equal(got, tt.want) {
				t.Errorf("FilterPrefixes() = %v, want %v", got, tt.want)
			}
		})
	}

	if len(values) != 3 {
		t.Error("FilterPrefixes must not modify its input")
	}
}
