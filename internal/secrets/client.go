package secrets

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Client fetches and decodes secrets through a Transport. It makes exactly one
// attempt per call; retries and deadlines belong to the caller's context.
type Client struct {
	transport Transport
	logger    *zap.Logger
}

// ClientOption configures Client behaviour.
type ClientOption func(*Client)

// WithLogger sets the logger used to report retrieval failures.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a Client over the provided transport.
func NewClient(transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSecret downloads the secret and decodes it into a Payload.
// Every failure is a *RetrievalError.
func (c *Client) FetchSecret(ctx context.Context, secretID string) (Payload, error) {
	raw, err := c.transport.GetSecretValue(ctx, secretID)
	if err != nil {
		var retrievalErr *RetrievalError
		if errors.As(err, &retrievalErr) {
			return nil, err
		}
		return nil, &RetrievalError{SecretID: secretID, Kind: ErrTransport, Cause: err}
	}

	payload, err := DecodePayload(secretID, raw)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("secret decoded",
		zap.String("secret_id", secretID),
		zap.Int("keys", len(payload)),
	)
	return payload, nil
}
