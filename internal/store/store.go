// Package store holds todo items in memory, keyed by id.
package store

import (
	"errors"
	"sync"

	"github.com/todoflow-labs/todo-service/internal/dto"
)

var ErrNotFound = errors.New("item not found")

// Store is an in-memory item collection. State lives for the lifetime of the
// process. Each method is atomic on its own; there are no multi-step transactions.
type Store struct {
	mu    sync.RWMutex
	items map[string]dto.Item
	order []string
}

func New() *Store {
	return &Store{items: make(map[string]dto.Item)}
}

// GetAll returns a copy of every item in insertion order.
func (s *Store) GetAll() []dto.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dto.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

func (s *Store) Get(id string) (dto.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return dto.Item{}, ErrNotFound
	}
	return it.Clone(), nil
}

// Insert adds item under item.ID. Ids come from a collision-resistant generator
// so no collision check is made.
func (s *Store) Insert(item dto.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok {
		s.order = append(s.order, item.ID)
	}
	s.items[item.ID] = item.Clone()
}

// Replace overwrites the item stored under id.
func (s *Store) Replace(id string, item dto.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	item = item.Clone()
	item.ID = id
	s.items[id] = item
	return nil
}

// Remove deletes id and reports whether it was present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
