package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/abgdnv/catalog/internal/catalog"
)

var _ catalog.DAO = (*Memory)(nil)

// Memory implements catalog.DAO using an in-memory map.
// Products are listed in insertion order.
type Memory struct {
	mu       sync.RWMutex
	products map[int64]row
	order    []int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		products: make(map[int64]row),
	}
}

// ListProducts returns all products in insertion order.
func (s *Memory) ListProducts(_ context.Context) ([]catalog.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]catalog.Mapping, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.products[id].mapping())
	}
	return list, nil
}

// GetProduct returns the product stored under id, or nil.
func (s *Memory) GetProduct(_ context.Context, id int64) (catalog.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return r.mapping(), nil
}

// AddProduct stores a single product.
func (s *Memory) AddProduct(ctx context.Context, m catalog.Mapping) error {
	return s.AddProducts(ctx, []catalog.Mapping{m})
}

// AddProducts stores every product of ms, or none of them.
func (s *Memory) AddProducts(_ context.Context, ms []catalog.Mapping) error {
	rows, err := toRows(ms)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		if _, exists := s.products[r.ID]; exists {
			return fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	for _, r := range rows {
		s.products[r.ID] = r
		s.order = append(s.order, r.ID)
	}
	return nil
}

// UpdateQty sets the quantity of the product stored under id.
// An unknown id is ignored.
func (s *Memory) UpdateQty(_ context.Context, id int64, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.products[id]
	if !ok {
		return nil
	}
	r.Qty = qty
	s.products[id] = r
	return nil
}

// Close releases nothing; it satisfies the closer returned by Open.
func (s *Memory) Close() error {
	return nil
}
