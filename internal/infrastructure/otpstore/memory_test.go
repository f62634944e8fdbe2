package otpstore

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/trainingdesk-api/internal/domain"
)

func entry(email, code string, ttl time.Duration) *domain.OTPEntry {
	now := time.Now()
	return &domain.OTPEntry{Email: email, Code: code, IssuedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestMemoryStore_PutGetDelete(t *testing.T) {
	s := NewMemoryStore(0)

	_, ok := s.Get("a@b.com")
	assert.False(t, ok)

	s.Put(entry("a@b.com", "123456", 10*time.Minute))
	e, ok := s.Get("a@b.com")
	assert.True(t, ok)
	assert.Equal(t, "123456", e.Code)

	s.Delete("a@b.com")
	_, ok = s.Get("a@b.com")
	assert.False(t, ok)
}

func TestMemoryStore_PutReplacesExisting(t *testing.T) {
	s := NewMemoryStore(0)
	s.Put(entry("a@b.com", "111111", 10*time.Minute))
	s.Put(entry("a@b.com", "222222", 10*time.Minute))

	e, ok := s.Get("a@b.com")
	assert.True(t, ok)
	assert.Equal(t, "222222", e.Code)
}

func TestMemoryStore_SweepRemovesOnlyExpired(t *testing.T) {
	s := NewMemoryStore(0)
	s.Put(entry("old@b.com", "111111", -time.Minute))
	s.Put(entry("fresh@b.com", "222222", 10*time.Minute))

	removed := s.Sweep(time.Now())
	assert.Equal(t, 1, removed)

	_, ok := s.Get("old@b.com")
	assert.False(t, ok)
	_, ok = s.Get("fresh@b.com")
	assert.True(t, ok)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@b.com", n%5)
			s.Put(entry(email, "123456", 10*time.Minute))
			s.Get(email)
			s.Sweep(time.Now())
			s.Delete(email)
		}(i)
	}
	wg.Wait()
}
