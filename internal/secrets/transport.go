package secrets

import "context"

// RawSecret is the undecoded store response. At most one of Text and Binary is
// expected to be set; Text wins when both are.
type RawSecret struct {
	Text   *string
	Binary []byte
}

// Transport fetches the raw value of a secret from a store.
type Transport interface {
	GetSecretValue(ctx context.Context, secretID string) (RawSecret, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, secretID string) (RawSecret, error)

// GetSecretValue calls f.
func (f TransportFunc) GetSecretValue(ctx context.Context, secretID string) (RawSecret, error) {
	return f(ctx, secretID)
}
