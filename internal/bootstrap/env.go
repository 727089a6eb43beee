package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/eugenenazirov/order-service/internal/secrets"
)

// Environment is the key/value store secrets are merged into.
type Environment interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
}

// OSEnvironment is the process environment.
type OSEnvironment struct{}

func (OSEnvironment) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

func (OSEnvironment) Setenv(key, value string) error { return os.Setenv(key, value) }

// MapEnvironment is an in-memory Environment.
type MapEnvironment map[string]string

func (m MapEnvironment) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapEnvironment) Setenv(key, value string) error {
	if key == "" {
		return fmt.Errorf("setenv: empty key")
	}
	m[key] = value
	return nil
}

// MergeIfAbsent copies payload into env, skipping keys that are already set
// (even to the empty string). It returns the keys it wrote, sorted.
func MergeIfAbsent(env Environment, payload secrets.Payload) ([]string, error) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	applied := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, exists := env.LookupEnv(key); exists {
			continue
		}
		value, err := stringify(payload[key])
		if err != nil {
			return applied, fmt.Errorf("encode value for %s: %w", key, err)
		}
		if err := env.Setenv(key, value); err != nil {
			return applied, fmt.Errorf("set %s: %w", key, err)
		}
		applied = append(applied, key)
	}
	return applied, nil
}

// stringify renders strings verbatim and every other JSON value as JSON text.
func stringify(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case nil:
		return "", nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}
