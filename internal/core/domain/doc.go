// Package domain defines the error vocabulary for envlayer.
//
// Every failure surfaced by the loader is a *DomainError carrying a
// stable code, so callers can branch with errors.Is against the
// exported sentinels:
//
//   - ErrDirectoryNotFound / ErrNotDirectory: the config directory is unusable
//   - ErrParse: a layer file is not valid dotenv
//   - ErrInvalidMode / ErrInvalidEnvironment: bad caller input
//
// The package has no IO dependencies.
package domain
