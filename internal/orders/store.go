package orders

import (
	"sync"
	"time"

	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
)

// Store is the in-memory order collection. All state is process-lifetime;
// durability is explicitly out of scope. Every value crossing the Store
// boundary is a deep copy.
type Store struct {
	mu      sync.RWMutex
	orders  map[int]Order
	nowFunc func() time.Time
}

// NewStore creates an empty order store.
func NewStore() *Store {
	return &Store{
		orders:  make(map[int]Order),
		nowFunc: time.Now,
	}
}

// List returns copies of all orders, ascending by id.
func (s *Store) List() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0, len(s.orders))
	maxID := s.maxIDLocked()
	for id := 1; id <= maxID; id++ {
		if o, ok := s.orders[id]; ok {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Get returns a copy of the order or a NOT_FOUND error.
func (s *Store) Get(id int) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return o.Clone(), nil
}

// Insert stores a new order and assigns its id as max(existing)+1. The id
// is recomputed from content on every insert, not kept as a running
// counter, so deletes re-synchronize numbering with the actual records.
func (s *Store) Insert(draft Order) Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft.ID = s.maxIDLocked() + 1
	now := s.nowFunc()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now
	s.orders[draft.ID] = draft.Clone()
	return draft.Clone()
}

// Replace swaps the stored record for id with the given snapshot and
// refreshes UpdatedAt, keeping it strictly increasing.
func (s *Store) Replace(id int, next Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.orders[id]
	if !ok {
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	next.ID = id
	next.CreatedAt = prev.CreatedAt
	now := s.nowFunc()
	if !now.After(prev.UpdatedAt) {
		now = prev.UpdatedAt.Add(time.Nanosecond)
	}
	next.UpdatedAt = now
	s.orders[id] = next.Clone()
	return next.Clone(), nil
}

// Delete removes the order, reporting whether it existed.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	delete(s.orders, id)
	return nil
}

// Seed resets the store to the given fixture records, keeping their ids.
// Used on process start.
func (s *Store) Seed(fixture []Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = make(map[int]Order, len(fixture))
	now := s.nowFunc()
	for _, o := range fixture {
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		if o.UpdatedAt.IsZero() {
			o.UpdatedAt = o.CreatedAt
		}
		s.orders[o.ID] = o.Clone()
	}
}

func (s *Store) maxIDLocked() int {
	maxID := 0
	for id := range s.orders {
		if id > maxID {
			maxID = id
		}
	}
	return maxID
}
