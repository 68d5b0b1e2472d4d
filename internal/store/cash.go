// Package store holds client-side caches of server data with their derived
// aggregates, updated in place after local writes and realtime events.
package store

import (
	"context"
	"errors"
	"sync"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"

	"github.com/shopspring/decimal"
)

var (
	ErrNotCached       = errors.New("product not found in cache")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrMissingAmount   = errors.New("amount and description are required")
)

type CashBackend interface {
	Ledger(ctx context.Context, period repository.Period) (*service.Ledger, error)
	AddMovement(ctx context.Context, req service.MovementRequest) (*model.CashMovement, error)
}

// Cash caches the movements of one period, newest first, and their balance.
// The balance is refolded on every Fetch and moved incrementally by Apply.
type Cash struct {
	backend CashBackend

	mu        sync.RWMutex
	period    repository.Period
	movements []model.CashMovement
	balance   decimal.Decimal
}

func NewCash(backend CashBackend) *Cash {
	return &Cash{backend: backend, balance: decimal.Zero}
}

// Fetch replaces the cache with the movements of period. On error the
// previous cache is kept.
func (s *Cash) Fetch(ctx context.Context, period repository.Period) error {
	ledger, err := s.backend.Ledger(ctx, period)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.period = period
	s.movements = append([]model.CashMovement(nil), ledger.Movements...)
	s.balance = model.Balance(s.movements)
	s.mu.Unlock()
	return nil
}

// Add records a manual income or expense. Amount and description are
// checked before any request is made.
func (s *Cash) Add(ctx context.Context, req service.MovementRequest) (*model.CashMovement, error) {
	if !req.Amount.IsPositive() || req.Description == "" {
		return nil, ErrMissingAmount
	}
	m, err := s.backend.AddMovement(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Apply(*m)
	return m, nil
}

// Apply inserts a movement written elsewhere (checkout, restock) into the
// cache when it falls inside the cached period.
func (s *Cash) Apply(m model.CashMovement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if (s.period.From != "" && m.MovementDate < s.period.From) || (s.period.To != "" && m.MovementDate > s.period.To) {
		return
	}
	s.movements = append([]model.CashMovement{m}, s.movements...)
	s.balance = s.balance.Add(m.Signed())
}

func (s *Cash) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

func (s *Cash) Movements() []model.CashMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CashMovement(nil), s.movements...)
}
