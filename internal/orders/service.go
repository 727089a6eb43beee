package orders

import (
	"context"
	"math/rand/v2"
	"time"
)

// Store is the read side of order persistence.
type Store interface {
	Get(id string) (Order, error)
	List() ([]Order, error)
}

// Service serves order lookups, optionally simulating backend latency.
type Service struct {
	store Store
	delay func() time.Duration
}

// ServiceOption configures Service behaviour.
type ServiceOption func(*Service)

// WithLatency makes every lookup wait base plus a random share of jitter.
func WithLatency(base, jitter time.Duration) ServiceOption {
	return func(s *Service) {
		if base <= 0 && jitter <= 0 {
			s.delay = nil
			return
		}
		s.delay = func() time.Duration {
			if jitter <= 0 {
				return base
			}
			return base + rand.N(jitter)
		}
	}
}

// NewService constructs a Service over the provided store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the order with the given ID or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	if err := s.wait(ctx); err != nil {
		return Order{}, err
	}
	return s.store.Get(id)
}

// List returns every order.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.store.List()
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay == nil {
		return ctx.Err()
	}

	timer := time.NewTimer(s.delay())
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
