package orders

import (
	"sort"
	"sync"
)

// Store is the in-process order book used while the database is
// unreachable. It starts empty and is lost on restart.
type Store struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewStore() *Store {
	return &Store{orders: make(map[string]Order)}
}

func (s *Store) Insert(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o.Clone()
}

func (s *Store) Get(id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o.Clone(), nil
}

// List returns every order, newest first.
func (s *Store) List() []Order {
	s.mu.RLock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	s.mu.RUnlock()

	SortNewest(out)
	return out
}

func (s *Store) Update(o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return ErrNotFound
	}
	s.orders[o.ID] = o.Clone()
	return nil
}

func (s *Store) Track(q TrackQuery) (Order, error) {
	for _, o := range s.List() {
		if q.Match(o) {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

// SortNewest orders by creation time descending, then id.
func SortNewest(list []Order) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
