package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/envlayer/internal/core/domain"
)

// Format represents the output format.
type Format string

const (
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatDotenv Format = "dotenv"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatDotenv}

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// ParseFormat parses a format name. The empty string means table.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown output format %q", s))
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatDotenv:
		return &DotenvFormatter{}
	default:
		return &TableFormatter{}
	}
}
