// Package config resolves runtime configuration from defaults, an optional YAML
// file, an optional dotenv file, environment variables and CLI flags, in that
// order of increasing precedence. The resulting Config is built once at
// startup and handed to the bootstrap and HTTP layers by value.
package config
