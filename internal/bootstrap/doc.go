// Package bootstrap runs the one-time startup sequence that must finish before
// the HTTP listener binds: decide whether runtime secrets are needed, fetch and
// decode them, and merge them into the process environment without
// overwriting values the operator already set.
package bootstrap
