package memory

import (
	"sync"

	"talentflow-assessments/internal/app"
	"talentflow-assessments/internal/metrics"
)

// WorkspaceStore is an in-memory implementation of app.WorkspaceRepository.
type WorkspaceStore struct {
	mu         sync.RWMutex
	workspaces map[string]*app.Workspace
}

func NewWorkspaceStore() *WorkspaceStore {
	return &WorkspaceStore{
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
	if _, ok := s.workspaces[workspaceID]; !ok {
		return
	}
	delete(s.workspaces, workspaceID)
	metrics.ActiveWorkspaces.Dec()
}

// DeleteIfIdle drops the workspace when no preview is attached to it.
func (s *WorkspaceStore) DeleteIfIdle(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[workspaceID]
	if !ok || ws.HasSubscribers() {
		return
	}
	delete(s.workspaces, workspaceID)
	metrics.ActiveWorkspaces.Dec()
}
