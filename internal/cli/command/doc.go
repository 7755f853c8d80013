// Package command provides the envlayer command tree.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, workspace setup
//   - show.go: show, layers and mode
//   - exec.go: run a child process with the loaded layers
//   - watch.go: print the config on every layer change
//   - config.go: settings file subcommand group
//   - version.go: build information
//
// Commands resolve a Workspace in the app's Before hook, load through
// its Loader and print through its Formatter.
package command
