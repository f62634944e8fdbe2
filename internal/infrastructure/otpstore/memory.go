package otpstore

import (
	"sync"
	"time"

	"github.com/trainingdesk-api/internal/domain"
)

// Store is the key-value abstraction for live login codes. Keys are
// normalized email addresses. The default implementation is in-process
// memory; a shared cache can be swapped in for multi-instance deployments
// without touching the auth service.
type Store interface {
	Get(email string) (*domain.OTPEntry, bool)
	Put(entry *domain.OTPEntry)
	Delete(email string)
}

// MemoryStore keeps entries in a mutex-guarded map and sweeps expired ones
// periodically. The sweep only bounds memory growth — verification treats
// expired entries as absent either way.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*domain.OTPEntry
	stop    chan struct{}
}

// NewMemoryStore creates a store and starts its sweep loop. sweepEvery <= 0
// disables the background sweep (useful in tests).
func NewMemoryStore(sweepEvery time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*domain.OTPEntry),
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.sweepLoop(sweepEvery)
	}
	return s
}

func (s *MemoryStore) Get(email string) (*domain.OTPEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	return e, ok
}

// Put stores an entry, unconditionally replacing any prior entry for the
// same email. Last write wins on concurrent requests for the same address.
func (s *MemoryStore) Put(entry *domain.OTPEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Email] = entry
}

func (s *MemoryStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
}

// Sweep removes every entry expired at t and reports how many were removed.
func (s *MemoryStore) Sweep(t time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for email, e := range s.entries {
		if e.Expired(t) {
			delete(s.entries, email)
			removed++
		}
	}
	return removed
}

// Stop terminates the sweep loop.
func (s *MemoryStore) Stop() {
	close(s.stop)
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep(time.Now())
		case <-s.stop:
			return
		}
	}
}
