package block

import (
	"sync"
	"time"
)

// Store is a thread-safe in-memory block registry with TTL eviction.
type Store struct {
	mu     sync.Mutex
	blocks map[string]*Block
	ttl    time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		blocks: make(map[string]*Block),
		ttl:    ttl,
	}
}

func (s *Store) Put(b *Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[b.ID] = b
}

func (s *Store) Get(id string) *Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks[id]
}

// Delete removes a block; it reports whether the block existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blocks[id]
	delete(s.blocks, id)
	return ok
}

// Len returns the number of live blocks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blocks)
}

// Cleanup removes blocks idle for longer than the TTL.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, b := range s.blocks {
		if now.Sub(b.LastUpdated()) > s.ttl {
			delete(s.blocks, id)
			removed++
		}
	}
	return removed
}
