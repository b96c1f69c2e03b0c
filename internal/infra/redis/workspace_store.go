package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"talentflow-assessments/internal/app"
	"talentflow-assessments/internal/metrics"
)

// WorkspaceStore is a Redis-aware implementation of app.WorkspaceRepository.
// Workspaces live in a local map so the in-process snapshot fan-out keeps
// working; Redis only carries a liveness marker per workspace.
type WorkspaceStore struct {
	client     *redis.Client
	ttl        time.Duration
	mu         sync.RWMutex
	workspaces map[string]*app.Workspace
}

func NewWorkspaceStore(client *redis.Client, ttl time.Duration) *WorkspaceStore {
	return &WorkspaceStore{
		client:     client,
		ttl:        ttl,
		workspaces: make(map[string]*app.Workspace),
	}
}

func (s *WorkspaceStore) GetOrCreate(workspaceID string) *app.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[workspaceID]; ok {
		return ws
	}
	ws := app.NewWorkspace(workspaceID)
	s.workspaces[workspaceID] = ws
	metrics.ActiveWorkspaces.Inc()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(workspaceID), "1", s.ttl).Err()
	return ws
}

func (s *WorkspaceStore) Get(workspaceID string) (*app.Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[workspaceID]
	return ws, ok
}

func (s *WorkspaceStore) Delete(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(workspaceID)
}

// DeleteIfIdle drops the workspace when no preview is attached to it.
func (s *WorkspaceStore) DeleteIfIdle(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[workspaceID]
	if !ok || ws.HasSubscribers() {
		return
	}
	s.deleteLocked(workspaceID)
}

// Touch extends the liveness marker of an open workspace.
func (s *WorkspaceStore) Touch(ctx context.Context, workspaceID string) error {
	if _, ok := s.Get(workspaceID); !ok {
		return nil
	}
	return s.client.Expire(ctx, s.key(workspaceID), s.ttl).Err()
}

func (s *WorkspaceStore) deleteLocked(workspaceID string) {
	if _, ok := s.workspaces[workspaceID]; !ok {
		return
	}
	delete(s.workspaces, workspaceID)
	metrics.ActiveWorkspaces.Dec()
	_ = s.client.Del(context.Background(), s.key(workspaceID)).Err()
}

func (s *WorkspaceStore) key(workspaceID string) string {
	return "talentflow:workspace:" + workspaceID
}
