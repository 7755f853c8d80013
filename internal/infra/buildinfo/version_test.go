package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	tests := []struct {
		name  string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"BuildTime", info.BuildTime},
		{"GoVersion", info.GoVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Errorf("%s field should not be empty", tt.name)
			}
		})
	}
}

func TestGet_GoVersionFallback(t *testing.T) {
	old := GoVersion
	GoVersion = ""
	t.Cleanup(func() { GoVersion = old })

	if got := Get().GoVersion; got != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", got, runtime.Version())
	}

	GoVersion = "go1.99"
	if got := Get().GoVersion; got != "go1.99" {
		t.Errorf("GoVersion = %q, want injected value", got)
	}
}

func TestString(t *testing.T) {
	s := String()
	info := Get()

	if !strings.HasPrefix(s, info.Version+" ("+info.Commit+")") {
		t.Errorf("String() = %q, want version and commit first", s)
	}
	if !strings.Contains(s, "built at "+info.BuildTime) {
		t.Errorf("String() = %q, missing build time", s)
	}
	if !strings.HasSuffix(s, info.GoVersion) {
		t.Errorf("String() = %q, missing Go version", s)
	}
}
