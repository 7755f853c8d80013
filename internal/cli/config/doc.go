// Package config holds envlayer's own CLI settings.
//
// Settings are resolved with the precedence Flag > Env > File > Default:
//
//   - settings.go: Settings struct and defaults
//   - loader.go: reading .envlayer.yaml and ENVLAYER_* variables, saving
//
// The settings file describes where and how to load layers. It is never
// itself a layer.
package config
