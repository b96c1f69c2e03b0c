package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"talentflow-assessments/internal/domain"
)

// Backend fetches and persists assessments behind the cache (e.g., Postgres).
type Backend interface {
	Load(ctx context.Context, jobID string) (*domain.Assessment, error)
	Save(ctx context.Context, assessment domain.Assessment) (domain.Assessment, error)
	Submit(ctx context.Context, jobID string, responses domain.ResponseSet) (domain.Submission, error)
}

// fillIfAbsent writes the hash only when no entry exists, so a load that raced
// a save never replaces the saved document.
var fillIfAbsent = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "id", ARGV[1], "sections", ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[3])
end
return 1
`)

// AssessmentCache caches assessments in Redis (hash per job) and falls back to
// the backend on a miss. The document is stored as:
//
//	HSET assessment:{jobID} id {assessmentID} sections {json}
//
// Jobs without a stored assessment are not cached.
type AssessmentCache struct {
	client  *redis.Client
	backend Backend
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
	rndMu   sync.Mutex
}

func NewAssessmentCache(client *redis.Client, backend Backend, ttl time.Duration) *AssessmentCache {
	return &AssessmentCache{
		client:  client,
		backend: backend,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AssessmentCache) Load(ctx context.Context, jobID string) (*domain.Assessment, error) {
	if a, ok := c.fromCache(ctx, jobID); ok {
		return a, nil
	}

	result, err, _ := c.sf.Do(jobID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if a, ok := c.fromCache(ctx, jobID); ok {
			return a, nil
		}
		a, err := c.backend.Load(ctx, jobID)
		if err != nil || a == nil {
			return a, err
		}
		c.fillMissing(ctx, *a)
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

// Save writes through to the backend, then refreshes the cached hash. A failed
// save drops the entry so the next load goes to the backend.
func (c *AssessmentCache) Save(ctx context.Context, assessment domain.Assessment) (domain.Assessment, error) {
	saved, err := c.backend.Save(ctx, assessment)
	if err != nil {
		_ = c.client.Del(ctx, c.key(assessment.JobID)).Err()
		return domain.Assessment{}, err
	}
	c.fill(ctx, saved)
	return saved, nil
}

func (c *AssessmentCache) Submit(ctx context.Context, jobID string, responses domain.ResponseSet) (domain.Submission, error) {
	return c.backend.Submit(ctx, jobID, responses)
}

func (c *AssessmentCache) fromCache(ctx context.Context, jobID string) (*domain.Assessment, bool) {
	fields, err := c.client.HGetAll(ctx, c.key(jobID)).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	raw, ok := fields["sections"]
	if !ok {
		return nil, false
	}
	a := domain.Assessment{ID: fields["id"], JobID: jobID}
	if err := json.Unmarshal([]byte(raw), &a.Sections); err != nil {
		// corrupt entry: drop it and treat as a miss
		_ = c.client.Del(ctx, c.key(jobID)).Err()
		return nil, false
	}
	return &a, true
}

func (c *AssessmentCache) fill(ctx context.Context, a domain.Assessment) {
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return
	}
	key := c.key(a.JobID)
	ttl := c.ttlWithJitter()
	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "id", a.ID, "sections", string(sections))
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, _ = pipe.Exec(ctx)
}

func (c *AssessmentCache) fillMissing(ctx context.Context, a domain.Assessment) {
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return
	}
	ttl := c.ttlWithJitter()
	_ = fillIfAbsent.Run(ctx, c.client, []string{c.key(a.JobID)}, a.ID, string(sections), ttl.Milliseconds()).Err()
}

func (c *AssessmentCache) key(jobID string) string {
	return "assessment:" + jobID
}

func (c *AssessmentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
