// Package memory keeps rooms in process memory. It is the default store and
// the one the game tests run against.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
)

type Store struct {
	mu    sync.RWMutex
	rooms map[string]engine.Room
}

func New() *Store {
	return &Store{rooms: make(map[string]engine.Room)}
}

// Get returns a copy so callers can never reach the stored snapshot.
func (s *Store) Get(_ context.Context, roomID string) (engine.Room, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return engine.Room{}, false, nil
	}
	return room.Clone(), true, nil
}

func (s *Store) Save(_ context.Context, room engine.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[room.RoomID] = room.Clone()
	return nil
}

func (s *Store) Delete(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, roomID)
	return nil
}

func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Close() error { return nil }
