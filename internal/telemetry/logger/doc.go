// Package logger provides structured logging for envlayer.
//
//   - logger.go: slog-backed Logger with JSON and text output
//   - context.go: carrying a Logger and load scope through context.Context
//   - redact.go: masking of secret-looking env values
//
// Values of attributes whose key looks like a secret env var name
// (…_SECRET, …_TOKEN, …_PASSWORD, …_API_KEY) are masked before they
// reach the handler.
package logger
