package pending

import (
	"sync"
	"time"

	"github.com/telestore/telestore/internal/payment/domain"
)

// Store is the process-local table of orders awaiting provider confirmation.
// Claim is an atomic compare-and-set on the delivered flag so two concurrent
// status polls cannot both win delivery.
type Store struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func NewStore() *Store {
	return &Store{orders: make(map[string]*domain.Order)}
}

func (s *Store) Put(paymentID string, order domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[paymentID] = &order
}

func (s *Store) Get(paymentID string) (*domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[paymentID]
	if !ok {
		return nil, false
	}
	copy := *order
	return &copy, true
}

// Claim flips delivered false -> true. False when the order is unknown or
// already claimed.
func (s *Store) Claim(paymentID string) (*domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[paymentID]
	if !ok || order.Delivered {
		return nil, false
	}
	order.Delivered = true
	copy := *order
	return &copy, true
}

// Release undoes a claim after a failed delivery so a later poll can retry.
func (s *Store) Release(paymentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[paymentID]; ok {
		order.Delivered = false
	}
}

// SweepExpired drops undelivered orders older than ttl and every delivered
// order past ttl as well; returns how many were removed.
func (s *Store) SweepExpired(ttl time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, order := range s.orders {
		if now.Sub(order.CreatedAt) > ttl {
			delete(s.orders, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
