package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"talentflow-assessments/internal/domain"
)

// Backend is the persistence collaborator a cache sits in front of.
type Backend interface {
	Load(ctx context.Context, jobID string) (*domain.Assessment, error)
	Save(ctx context.Context, assessment domain.Assessment) (domain.Assessment, error)
	Submit(ctx context.Context, jobID string, responses domain.ResponseSet) (domain.Submission, error)
}

// CachedStore caches loaded assessments with TTL to avoid repeated backend hits.
// Missing assessments are not cached, so a first save is visible immediately.
type CachedStore struct {
	backend Backend
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand
	rndMu   sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedAssessment
}

type cachedAssessment struct {
	assessment domain.Assessment
	expiresAt  time.Time
}

func NewCachedStore(backend Backend, ttl time.Duration) *CachedStore {
	return &CachedStore{
		backend: backend,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedAssessment),
	}
}

func (c *CachedStore) Load(ctx context.Context, jobID string) (*domain.Assessment, error) {
	if a, ok := c.lookup(jobID); ok {
		return a, nil
	}

	result, err, _ := c.sf.Do(jobID, func() (interface{}, error) {
		// Re-check in case another caller filled the entry.
		if a, ok := c.lookup(jobID); ok {
			return a, nil
		}
		a, err := c.backend.Load(ctx, jobID)
		if err != nil || a == nil {
			return a, err
		}
		c.storeIfAbsent(*a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	a, _ := result.(*domain.Assessment)
	if a == nil {
		return nil, nil
	}
	out := a.Clone()
	return &out, nil
}

// Save writes through and refreshes the cached copy.
func (c *CachedStore) Save(ctx context.Context, assessment domain.Assessment) (domain.Assessment, error) {
	saved, err := c.backend.Save(ctx, assessment)
	if err != nil {
		c.invalidate(assessment.JobID)
		return domain.Assessment{}, err
	}
	c.store(saved)
	return saved, nil
}

func (c *CachedStore) Submit(ctx context.Context, jobID string, responses domain.ResponseSet) (domain.Submission, error) {
	return c.backend.Submit(ctx, jobID, responses)
}

func (c *CachedStore) lookup(jobID string) (*domain.Assessment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[jobID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	out := entry.assessment.Clone()
	return &out, true
}

func (c *CachedStore) store(a domain.Assessment) {
	expires := c.clock().Add(c.ttlWithJitter())
	c.mu.Lock()
	c.cache[a.JobID] = cachedAssessment{assessment: a.Clone(), expiresAt: expires}
	c.mu.Unlock()
}

// storeIfAbsent keeps a live entry written by a concurrent Save.
func (c *CachedStore) storeIfAbsent(a domain.Assessment) {
	expires := c.clock().Add(c.ttlWithJitter())
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.cache[a.JobID]; ok && entry.expiresAt.After(c.clock()) {
		return
	}
	c.cache[a.JobID] = cachedAssessment{assessment: a.Clone(), expiresAt: expires}
}

func (c *CachedStore) invalidate(jobID string) {
	c.mu.Lock()
	delete(c.cache, jobID)
	c.mu.Unlock()
}

func (c *CachedStore) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
