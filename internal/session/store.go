package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Portrait is a generated portrait kept in memory until it expires. The image
// stays a data URL so handlers can return it without re-encoding.
type Portrait struct {
	ID                string
	ImageDataURL      string
	OutfitDescription string
	Locale            string
	CreatedAt         time.Time
	ExpiresAt         time.Time
}

// Store holds recently generated portraits for pickup and bundling. Entries
// expire after the configured TTL, and when the store is full the oldest
// portrait is evicted first.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	capacity int
	items    map[string]Portrait
	now      func() time.Time
}

func NewStore(ttl time.Duration, capacity int) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if capacity <= 0 {
		capacity = 128
	}
	return &Store{
		ttl:      ttl,
		capacity: capacity,
		items:    make(map[string]Portrait),
		now:      time.Now,
	}
}

// Put stores a portrait and returns it with its assigned ID and lifetime.
func (s *Store) Put(p Portrait) Portrait {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpired(now)
	for len(s.items) >= s.capacity {
		s.evictOldest()
	}

	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.ExpiresAt = now.Add(s.ttl)
	s.items[p.ID] = p
	return p
}

// Get returns the portrait with the given ID if it has not expired.
func (s *Store) Get(id string) (Portrait, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok || s.now().After(p.ExpiresAt) {
		return Portrait{}, false
	}
	return p, true
}

// Len reports how many portraits are currently stored, counting entries that
// expired but have not been purged yet.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) purgeExpired(now time.Time) {
	for id, p := range s.items {
		if now.After(p.ExpiresAt) {
			delete(s.items, id)
		}
	}
}

func (s *Store) evictOldest() {
	var oldestID string
	var oldestAt time.Time
	for id, p := range s.items {
		if oldestID == "" || p.CreatedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = p.CreatedAt
		}
	}
	if oldestID != "" {
		delete(s.items, oldestID)
	}
}
