// Package convo implements the per-conversation message store.
//
// History is volatile: conversations live for the process lifetime and are
// never evicted. That is a documented limitation of the design, not a bug.
package convo

import (
	"sync"

	"github.com/tmarkell/quotebot/internal/domain"
)

// maxTurns bounds each conversation's history. Oldest turns are dropped
// first once the cap is exceeded.
const maxTurns = 20

// conversation is the mutable state for one conversation id.
type conversation struct {
	mu    sync.Mutex // serializes webhook processing for this conversation
	turns []domain.Turn
}

// Store keeps a bounded turn log per conversation id.
//
// The store-level lock only guards the conversation map; each conversation
// carries its own mutex so concurrent webhook deliveries for the same
// conversation are serialized while different conversations proceed in
// parallel.
type Store struct {
	mu    sync.RWMutex
	convs map[string]*conversation
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{convs: make(map[string]*conversation)}
}

// get returns the conversation for id, creating it lazily.
func (s *Store) get(id string) *conversation {
	s.mu.RLock()
	c, ok := s.convs[id]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.convs[id]; ok {
		return c
	}
	c = &conversation{}
	s.convs[id] = c
	return c
}

// Lock acquires the per-conversation mutex and returns the unlock func.
// Callers hold it for the duration of one webhook delivery's processing.
func (s *Store) Lock(id string) (unlock func()) {
	if id == "" {
		return func() {}
	}
	c := s.get(id)
	c.mu.Lock()
	return c.mu.Unlock
}

// Append adds a turn to the conversation's history, truncating to the most
// recent maxTurns. A no-op if id is empty.
func (s *Store) Append(id string, t domain.Turn) {
	if id == "" {
		return
	}
	c := s.get(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	c.turns = append(c.turns, t)
	if len(c.turns) > maxTurns {
		c.turns = c.turns[len(c.turns)-maxTurns:]
		// A tool-result turn is only valid after the assistant turn that
		// requested it. If truncation cut that assistant turn off, drop the
		// orphaned results too: a replay starting with a tool turn is
		// rejected by the completion backend.
		for len(c.turns) > 0 && c.turns[0].Role == domain.RoleTool {
			c.turns = c.turns[1:]
		}
	}
}

// History returns a copy of the conversation's turns in append order.
// Unknown ids yield an empty slice.
func (s *Store) History(id string) []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[id]
	if !ok {
		return nil
	}
	out := make([]domain.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len reports the number of turns stored for a conversation.
func (s *Store) Len(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.convs[id]; ok {
		return len(c.turns)
	}
	return 0
}
