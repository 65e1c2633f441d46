package cache

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/use-agent/scrapesheet/models"
)

// entry holds a stored bundle with its creation timestamp.
type entry struct {
	bundle    *models.AllDetailsBundle
	createdAt time.Time
}

// Store keeps all-details bundles so a workbook can be downloaded after the
// fetch that produced it. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a Store with the given capacity and time-to-live.
// A background goroutine runs every 5 minutes to evict expired entries
// until Close is called.
func New(maxEntries int, ttl time.Duration) *Store {
	s := newStore(maxEntries, ttl, time.Now)
	go s.cleanupLoop()
	return s
}

func newStore(maxEntries int, ttl time.Duration, now func() time.Time) *Store {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Store{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        now,
		stop:       make(chan struct{}),
	}
}

// Put stores a bundle and returns its ID. If the store is at capacity, the
// oldest entry is evicted to make room.
func (s *Store) Put(b *models.AllDetailsBundle) string {
	id := "bundle-" + randomID()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.store) >= s.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range s.store {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey, oldest = k, e.createdAt
			}
		}
		delete(s.store, oldestKey)
	}

	s.store[id] = &entry{bundle: b, createdAt: s.now()}
	return id
}

// Get returns the bundle for id. A missing or expired bundle yields a
// NO_DATA error.
func (s *Store) Get(id string) (*models.AllDetailsBundle, error) {
	s.mu.RLock()
	e, ok := s.store[id]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		return nil, models.NewPipelineError(models.ErrCodeNoData, "nothing to export yet: run an all-details fetch first", nil)
	}
	return e.bundle, nil
}

// Len reports the number of stored bundles, expired ones included until the
// next sweep.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

// Close stops the cleanup goroutine.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) expired(e *entry) bool {
	return s.ttl > 0 && s.now().Sub(e.createdAt) > s.ttl
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.store {
		if s.expired(e) {
			delete(s.store, k)
		}
	}
}

// cleanupLoop evicts expired entries every 5 minutes.
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// randomID generates a short random hex string for bundle IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
