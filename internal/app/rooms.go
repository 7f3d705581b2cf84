package app

import (
	"sync"

	"github.com/dkeye/Lobby/internal/domain"
)

// roomSet is the membership of one session. Only the owning session
// mutates it; the lock exists because broadcasters running on other
// sessions' goroutines read it while selecting room targets.
type roomSet struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]struct{}
}

func newRoomSet() *roomSet {
	return &roomSet{rooms: make(map[domain.RoomName]struct{})}
}

func (s *roomSet) Join(room domain.RoomName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room] = struct{}{}
}

func (s *roomSet) Leave(room domain.RoomName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room]; !ok {
		return false
	}
	delete(s.rooms, room)
	return true
}

func (s *roomSet) Has(room domain.RoomName) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[room]
	return ok
}

func (s *roomSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
