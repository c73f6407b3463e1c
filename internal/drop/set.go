package drop

import (
	"sync"
	"time"
)

// Set holds the live drops for a session. The engine serializes all game
// mutations, but the set keeps its own lock so read-only snapshot requests
// stay safe regardless of caller.
type Set struct {
	mu    sync.RWMutex
	drops []Drop
}

func NewSet() *Set {
	return &Set{}
}

func (s *Set) Add(d Drop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drops = append(s.drops, d)
}

// Take removes and returns the drop with the given id.
func (s *Set) Take(id string) (Drop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.drops {
		if d.ID == id {
			s.drops = append(s.drops[:i], s.drops[i+1:]...)
			return d, true
		}
	}
	return Drop{}, false
}

// Sweep removes drops older than the lifespan and reports how many were
// removed.
func (s *Set) Sweep(now time.Time, lifespan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.drops[:0]
	removed := 0
	for _, d := range s.drops {
		if d.Expired(now, lifespan) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	s.drops = kept
	return removed
}

// ShiftCreated moves every drop's creation timestamp forward by the given
// duration. Called on resume so no drop ages while the game is paused.
func (s *Set) ShiftCreated(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.drops {
		s.drops[i].CreatedAt = s.drops[i].CreatedAt.Add(d)
	}
}

func (s *Set) List() []Drop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Drop, len(s.drops))
	copy(out, s.drops)
	return out
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drops)
}
