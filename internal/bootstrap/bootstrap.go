package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/order-service/internal/config"
	"github.com/eugenenazirov/order-service/internal/secrets"
)

// ErrInvalidTransition is returned when Run is called out of order, e.g. twice.
var ErrInvalidTransition = errors.New("invalid bootstrap state transition")

// TransportFactory builds the secret store transport for a region and profile.
type TransportFactory func(ctx context.Context, region, profile string) (secrets.Transport, error)

// AWSTransportFactory builds an AWS Secrets Manager transport.
func AWSTransportFactory(ctx context.Context, region, profile string) (secrets.Transport, error) {
	transport, err := secrets.NewAWSTransport(ctx, region, profile)
	if err != nil {
		return nil, err
	}
	return transport, nil
}

// Recorder receives the outcome of a bootstrap run.
type Recorder interface {
	RecordSecretsLoad(outcome string, keys int, elapsed time.Duration)
}

// LoadRuntimeSecrets fetches the configured secret, or returns an empty payload
// without touching the store when secrets are not required. The fetch is
// bounded by cfg.SecretsTimeout. Failures are logged and returned unchanged.
func LoadRuntimeSecrets(ctx context.Context, cfg config.Config, factory TransportFactory, logger *zap.Logger) (secrets.Payload, error) {
	if !cfg.ShouldFetchSecrets() {
		logger.Info("secrets manager disabled; skipping fetch")
		return secrets.Payload{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.SecretsTimeout)
	defer cancel()

	transport, err := factory(ctx, cfg.AWSRegion, cfg.AWSProfile)
	if err != nil {
		err = &secrets.RetrievalError{SecretID: cfg.AWSSecretName, Kind: secrets.ErrTransport, Cause: err}
		logger.Error("failed to load secrets", zap.Error(err))
		return nil, err
	}

	client := secrets.NewClient(transport, secrets.WithLogger(logger))
	payload, err := client.FetchSecret(ctx, cfg.AWSSecretName)
	if err != nil {
		logger.Error("failed to load secrets", zap.Error(err))
		return nil, err
	}

	logger.Info("loaded keys from secrets manager",
		zap.String("secret_id", cfg.AWSSecretName),
		zap.Int("keys", len(payload)),
	)
	return payload, nil
}

// Result summarises a completed bootstrap.
type Result struct {
	State   State
	Fetched int
	Applied []string
}

// Bootstrapper drives the startup sequence and tracks its state.
type Bootstrapper struct {
	factory  TransportFactory
	env      Environment
	logger   *zap.Logger
	recorder Recorder
	clock    func() time.Time

	mu    sync.Mutex
	state State
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithTransportFactory overrides how the secret store transport is built.
func WithTransportFactory(factory TransportFactory) Option {
	return func(b *Bootstrapper) {
		b.factory = factory
	}
}

// WithEnvironment overrides the environment secrets are merged into.
func WithEnvironment(env Environment) Option {
	return func(b *Bootstrapper) {
		b.env = env
	}
}

// WithRecorder reports the outcome to r.
func WithRecorder(r Recorder) Option {
	return func(b *Bootstrapper) {
		b.recorder = r
	}
}

// New constructs a Bootstrapper that talks to AWS and writes to the process
// environment unless options say otherwise.
func New(logger *zap.Logger, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		factory: AWSTransportFactory,
		env:     OSEnvironment{},
		logger:  logger,
		clock:   time.Now,
		state:   StateNotStarted,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current state.
func (b *Bootstrapper) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Run executes the sequence once. On error the Bootstrapper ends in
// StateFailed and the caller must not start serving. Every returned error has
// already been logged.
func (b *Bootstrapper) Run(ctx context.Context, cfg config.Config) (Result, error) {
	if err := b.transition(StateResolvingConfig); err != nil {
		return Result{State: b.State()}, err
	}
	start := b.clock()

	next := StateSkippingSecrets
	if cfg.ShouldFetchSecrets() {
		next = StateFetchingSecret
	}
	if err := b.transition(next); err != nil {
		return Result{State: b.State()}, err
	}

	payload, err := LoadRuntimeSecrets(ctx, cfg, b.factory, b.logger)
	if err != nil {
		return b.fail(start, 0, err)
	}

	applied, err := MergeIfAbsent(b.env, payload)
	if err != nil {
		b.logger.Error("failed to merge secrets into environment", zap.Error(err))
		return b.fail(start, len(payload), err)
	}

	if err := b.transition(StateMerged); err != nil {
		return Result{State: b.State()}, err
	}
	b.record("merged", len(applied), start)
	b.logger.Info("runtime bootstrap complete",
		zap.Int("fetched", len(payload)),
		zap.Int("applied", len(applied)),
		zap.Int("skipped", len(payload)-len(applied)),
	)

	return Result{State: StateMerged, Fetched: len(payload), Applied: applied}, nil
}

func (b *Bootstrapper) fail(start time.Time, fetched int, err error) (Result, error) {
	_ = b.transition(StateFailed)
	b.record("failed", 0, start)
	return Result{State: StateFailed, Fetched: fetched}, err
}

func (b *Bootstrapper) record(outcome string, keys int, start time.Time) {
	if b.recorder == nil {
		return
	}
	b.recorder.RecordSecretsLoad(outcome, keys, b.clock().Sub(start))
}

func (b *Bootstrapper) transition(to State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !canTransition(b.state, to) {
		err := fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.state, to)
		b.logger.Error("bootstrap aborted", zap.Error(err))
		return err
	}
	b.logger.Debug("bootstrap state", zap.Stringer("from", b.state), zap.Stringer("to", to))
	b.state = to
	return nil
}
