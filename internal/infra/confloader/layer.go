package confloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yndnr/envlayer/internal/core/domain"
)

// BaseFile is the name of the lowest-precedence layer.
const BaseFile = ".env"

const localSuffix = ".local"

// Layer is one candidate file of a LayerSet.
type Layer struct {
	// Rank is the precedence; higher ranks override lower ones.
	Rank int
	// Name is the file name relative to the config directory.
	Name string
	// Path is the full file path.
	Path string
}

// Layers returns the LayerSet for mode and environment in dir,
// ordered from lowest to highest precedence. The files need not exist.
func Layers(dir string, mode Mode, environment string) ([]Layer, error) {
	if !mode.Valid() {
		return nil, domain.ErrInvalidMode.WithDetails(fmt.Sprintf("%q", mode))
	}
	if err := ValidateEnvironment(environment); err != nil {
		return nil, err
	}

	names := []string{BaseFile}
	switch mode {
	case ModeSimple:
		names = append(names, BaseFile+"."+environment)
	case ModeLocal:
		names = append(names,
			BaseFile+"."+environment,
			BaseFile+localSuffix,
			BaseFile+"."+environment+localSuffix,
		)
	}

	layers := make([]Layer, len(names))
	for i, name := range names {
		layers[i] = Layer{
			Rank: i,
			Name: name,
			Path: filepath.Join(dir, name),
		}
	}
	return layers, nil
}

// ValidateEnvironment rejects environment names that cannot form a
// layer file name: empty names, names with path separators or dots,
// and the reserved name "local".
func ValidateEnvironment(environment string) error {
	switch {
	case environment == "":
		return domain.ErrInvalidEnvironment.WithDetails("empty")
	case environment == "local":
		return domain.ErrInvalidEnvironment.WithDetails(`"local" is reserved for override files`)
	case strings.ContainsAny(environment, `/\.`) || strings.TrimSpace(environment) != environment:
		return domain.ErrInvalidEnvironment.WithDetails(fmt.Sprintf("%q", environment))
	}
	return nil
}

// Conventional template names that are committed alongside real layers
// and must not be mistaken for an environment.
var templateNames = map[string]bool{
	"example":  true,
	"sample":   true,
	"template": true,
	"dist":     true,
}

type fileKind int

const (
	kindOther fileKind = iota
	kindBase
	kindEnvironment
	kindLocal
	kindEnvironmentLocal
)

// classify maps a file name onto the layer naming convention.
func classify(name string) fileKind {
	if name == BaseFile {
		return kindBase
	}
	if !strings.HasPrefix(name, BaseFile+".") {
		return kindOther
	}
	rest := strings.TrimPrefix(name, BaseFile+".")
	if rest == "local" {
		return kindLocal
	}
	if env, ok := strings.CutSuffix(rest, localSuffix); ok {
		if ValidateEnvironment(env) == nil {
			return kindEnvironmentLocal
		}
		return kindOther
	}
	if !templateNames[rest] && ValidateEnvironment(rest) == nil {
		return kindEnvironment
	}
	return kindOther
}

// IsLayerFile reports whether name follows the layer naming convention.
func IsLayerFile(name string) bool {
	return classify(name) != kindOther
}
