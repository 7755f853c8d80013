// Package confloader loads layered dotenv files.
//
// A config directory holds up to four dotenv files. Which of them take
// part in a load is decided by the Mode:
//
//	basic   .env
//	simple  .env < .env.<environment>
//	local   .env < .env.<environment> < .env.local < .env.<environment>.local
//
// Layers are folded lowest to highest precedence with koanf, so a key
// in a later layer replaces the same key from an earlier one. Missing
// layers are skipped. The merged map is then narrowed to keys that
// start with one of the caller's prefixes.
//
// LoadConfig never touches the process environment. InjectConfig is
// the only function that writes to it, and by default it keeps any
// value that is already set.
//
// Watcher and Reloader re-run a load when a layer file changes.
package confloader
