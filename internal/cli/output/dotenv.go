package output

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"
)

// DotenvFormatter formats a flat key/value map as sorted dotenv lines.
// Integer values are written bare and everything else double-quoted.
type DotenvFormatter struct{}

// Format accepts map[string]string or map[string]any with scalar values.
func (f *DotenvFormatter) Format(w io.Writer, data any) error {
	var values map[string]string
	switch v := data.(type) {
	case nil:
		return nil
	case map[string]string:
		values = v
	case map[string]any:
		values = make(map[string]string, len(v))
		for k, val := range v {
			values[k] = fmt.Sprint(val)
		}
	default:
		return fmt.Errorf("dotenv output needs a key/value map, got %T", data)
	}

	if len(values) == 0 {
		return nil
	}
	content, err := godotenv.Marshal(values)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, content)
	return err
}
