// Package main provides the entry point for envlayer.
//
// envlayer loads layered .env files from a directory and either prints
// the merge or runs a command with it:
//
//   - show, layers, mode: inspect a directory
//   - exec: run a child process with the merged values injected
//   - watch: follow layer changes until interrupted
//
// Usage:
//
//	envlayer --env production show
//	envlayer -p APP_ -p DB_ exec -- ./server
//	envlayer --output json layers
package main
