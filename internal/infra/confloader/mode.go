package confloader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yndnr/envlayer/internal/core/domain"
)

// Mode selects which layer files take part in a load.
type Mode string

const (
	// ModeBasic reads only the base .env file.
	ModeBasic Mode = "basic"
	// ModeSimple adds the environment-specific .env.<environment> file.
	ModeSimple Mode = "simple"
	// ModeLocal adds the .env.local and .env.<environment>.local overrides.
	ModeLocal Mode = "local"
)

// Modes lists every supported mode in order of increasing layer count.
var Modes = []Mode{ModeBasic, ModeSimple, ModeLocal}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeBasic, ModeSimple, ModeLocal:
		return true
	}
	return false
}

// ParseMode converts a mode name to a Mode. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", domain.ErrInvalidMode.WithDetails(fmt.Sprintf("%q (want basic, simple or local)", s))
	}
	return m, nil
}

// DetectMode derives the mode of dir from the files it contains:
//
//   - local, if .env.local or any .env.<name>.local exists
//   - simple, if any .env.<name> exists
//   - basic, otherwise
//
// Only regular files directly inside dir are considered.
func DetectMode(dir string) (Mode, error) {
	if err := checkDirectory(dir); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", domain.ErrDirectoryUnreadable.WithDetails(dir).WithCause(err)
	}

	mode := ModeBasic
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		switch classify(e.Name()) {
		case kindLocal, kindEnvironmentLocal:
			return ModeLocal, nil
		case kindEnvironment:
			mode = ModeSimple
		}
	}
	return mode, nil
}

// checkDirectory returns a domain error unless dir is an existing directory.
func checkDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrDirectoryNotFound.WithDetails(dir).WithCause(err)
		}
		return domain.ErrDirectoryUnreadable.WithDetails(dir).WithCause(err)
	}
	if !info.IsDir() {
		return domain.ErrNotDirectory.WithDetails(dir)
	}
	return nil
}
