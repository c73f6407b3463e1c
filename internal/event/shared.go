package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dexhavrelock-sketch/oil-management/internal/storage"
)

// MoonRunName is the only cross-session event kind.
const MoonRunName = "moonRun"

// GlobalEvent is the durable shared event record. EndTime is milliseconds
// since the epoch, matching the persisted wire shape; the zero value means
// no event.
type GlobalEvent struct {
	Name    string `json:"name"`
	EndTime int64  `json:"endTime"`
}

// Active reports whether the event is a moon run whose end time is still in
// the future.
func (e GlobalEvent) Active(now time.Time) bool {
	return e.Name == MoonRunName && e.EndTime > now.UnixMilli()
}

// Remaining is the whole seconds left, zero when inactive.
func (e GlobalEvent) Remaining(now time.Time) int {
	if !e.Active(now) {
		return 0
	}
	ms := e.EndTime - now.UnixMilli()
	return int((ms + 500) / 1000)
}

// SharedSlot wraps the durable record every session reads and writes for
// the moon run. Writers overwrite wholesale; readers treat an expired end
// time as absent and clear it opportunistically, so stale state self-heals
// without coordination.
type SharedSlot struct {
	store storage.Store
	key   string

	mu      sync.Mutex
	current GlobalEvent
}

func NewSharedSlot(store storage.Store, key string) *SharedSlot {
	return &SharedSlot{store: store, key: key}
}

// Sync re-reads the shared record and returns the converged event. Corrupt
// records are treated as absent.
func (s *SharedSlot) Sync(ctx context.Context, now time.Time) (GlobalEvent, error) {
	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return s.Current(), err
	}
	if !ok {
		s.setCurrent(GlobalEvent{})
		return GlobalEvent{}, nil
	}

	var ev GlobalEvent
	if err := json.Unmarshal(raw, &ev); err != nil || !ev.Active(now) {
		// Expired or unreadable: whoever notices clears the slot.
		_ = s.store.Delete(ctx, s.key)
		s.setCurrent(GlobalEvent{})
		return GlobalEvent{}, nil
	}

	s.setCurrent(ev)
	return ev, nil
}

// Start writes a fresh moon run ending duration from now.
func (s *SharedSlot) Start(ctx context.Context, now time.Time, duration time.Duration) (GlobalEvent, error) {
	ev := GlobalEvent{Name: MoonRunName, EndTime: now.Add(duration).UnixMilli()}
	raw, err := json.Marshal(ev)
	if err != nil {
		return GlobalEvent{}, err
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		return GlobalEvent{}, err
	}
	s.setCurrent(ev)
	return ev, nil
}

// Stop clears the shared record for every session.
func (s *SharedSlot) Stop(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		return err
	}
	s.setCurrent(GlobalEvent{})
	return nil
}

// Current returns the last synced event without touching the store.
func (s *SharedSlot) Current() GlobalEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SharedSlot) setCurrent(ev GlobalEvent) {
	s.mu.Lock()
	s.current = ev
	s.mu.Unlock()
}
