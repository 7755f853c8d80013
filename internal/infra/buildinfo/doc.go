// Package buildinfo exposes build-time information for envlayer.
//
//   - Version: semantic version (e.g., "1.0.0")
//   - Commit: git commit hash
//   - BuildTime: build timestamp
//   - GoVersion: Go toolchain, read from the binary when not injected
//
// Usage:
//
//	go build -ldflags "-X github.com/yndnr/envlayer/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
