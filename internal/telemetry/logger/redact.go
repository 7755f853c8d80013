// Package logger provides structured logging for envlayer.
package logger

import (
	"log/slog"
	"strings"
)

// Fragments that mark a secret wherever they appear in a key, so
// DB_PASSWORD, npm_token and GITHUBAPIKEY all hit.
var sensitiveKeyFragments = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"privatekey",
	"credential",
}

// Words too short to match by substring. They count only as a whole
// segment of the key: STRIPE_KEY and DB_PASS hit, while
// AUTHOR_NAME and OAUTH_CALLBACK_URL do not.
var sensitiveKeySegments = map[string]bool{
	"key":  true,
	"pass": true,
	"pwd":  true,
	"auth": true,
	"pat":  true,
}

// minMaskedRunes is the shortest value that keeps its ends visible.
const minMaskedRunes = 16

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		return a
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
// Segments are split on '_', '-' and '.'.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(keyLower, fragment) {
			return true
		}
	}
	segments := strings.FieldsFunc(keyLower, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for _, seg := range segments {
		if sensitiveKeySegments[seg] {
			return true
		}
	}
	return false
}

// MaskValue partially masks a sensitive value.
// Values of at least 16 runes keep their first and last 3 runes;
// anything shorter is fully hidden.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) < minMaskedRunes {
		return "***"
	}
	return string(runes[:3]) + "..." + string(runes[len(runes)-3:])
}

// RedactValues returns a copy of values with every sensitive key masked.
// The input map is not modified.
func RedactValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if IsSensitiveKey(k) {
			out[k] = MaskValue(v)
			continue
		}
		out[k] = v
	}
	return out
}
