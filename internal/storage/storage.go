package storage

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/eugenenazirov/order-service/internal/orders"
)

var (
	// ErrInvalidOrder indicates an order failed validation before being stored.
	ErrInvalidOrder = errors.New("order must have a non-empty id and customer name")
	// ErrDuplicateOrder indicates an order with the same ID is already stored.
	ErrDuplicateOrder = errors.New("order with this id already exists")
)

// Storage provides access to orders.
type Storage interface {
	Get(id string) (orders.Order, error)
	List() ([]orders.Order, error)
	Add(order orders.Order) error
}

// MemoryStorage keeps orders in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu     sync.RWMutex
	orders map[string]orders.Order
}

// NewMemoryStorage initialises an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		orders: make(map[string]orders.Order),
	}
}

// NewSampleStorage initialises storage seeded with orders.SampleOrders.
func NewSampleStorage() (*MemoryStorage, error) {
	store := NewMemoryStorage()
	for _, order := range orders.SampleOrders() {
		if err := store.Add(order); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Get returns a defensive copy of the order with the given ID.
func (s *MemoryStorage) Get(id string) (orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return order.Clone(), nil
}

// List returns defensive copies of all orders sorted by ID.
func (s *MemoryStorage) List() ([]orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]orders.Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, order.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

// Add validates and stores an order.
func (s *MemoryStorage) Add(order orders.Order) error {
	if strings.TrimSpace(order.ID) == "" || strings.TrimSpace(order.CustomerName) == "" {
		return ErrInvalidOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return ErrDuplicateOrder
	}
	s.orders[order.ID] = order.Clone()
	return nil
}

// lessID sorts numeric IDs numerically ("2" < "10") ahead of all other IDs,
// which sort as strings.
func lessID(a, b string) bool {
	aNum, bNum := isDigits(a), isDigits(b)
	switch {
	case aNum && bNum:
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	case aNum != bNum:
		return aNum
	default:
		return a < b
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
