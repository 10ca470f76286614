package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

const cleanupInterval = 5 * time.Minute

// ContextCache is the in-process Cache used when Redis is not configured.
type ContextCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

type cacheEntry struct {
	context   *models.RequestContext
	expiresAt time.Time
}

var _ Cache = (*ContextCache)(nil)

// NewContextCache starts a background sweep of expired entries; call Close
// to stop it.
func NewContextCache(ttl time.Duration) *ContextCache {
	cc := &ContextCache{
		cache: make(map[string]*cacheEntry),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}

	go cc.cleanupLoop(cleanupInterval)

	return cc
}

func (cc *ContextCache) Set(_ context.Context, rc *models.RequestContext) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.cache[rc.RequestID] = &cacheEntry{
		context:   rc,
		expiresAt: time.Now().Add(cc.ttl),
	}
	return nil
}

func (cc *ContextCache) Get(_ context.Context, requestID string) (*models.RequestContext, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	entry, exists := cc.cache[requestID]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, ErrContextNotFound
	}
	return entry.context, nil
}

func (cc *ContextCache) Delete(_ context.Context, requestID string) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	delete(cc.cache, requestID)
	return nil
}

// Size counts entries including expired ones not yet swept.
func (cc *ContextCache) Size(_ context.Context) (int, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	return len(cc.cache), nil
}

func (cc *ContextCache) Close() {
	cc.once.Do(func() { close(cc.stop) })
}

func (cc *ContextCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cc.cleanup()
		case <-cc.stop:
			return
		}
	}
}

func (cc *ContextCache) cleanup() {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	now := time.Now()
	for requestID, entry := range cc.cache {
		if now.After(entry.expiresAt) {
			delete(cc.cache, requestID)
		}
	}
}
