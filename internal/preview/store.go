// Package preview evaluates conditional visibility and holds the in-progress
// response set of a preview session.
package preview

import (
	"sync"

	"talentflow-assessments/internal/domain"
)

// Store is the response set of one preview session.
type Store struct {
	mu        sync.RWMutex
	responses domain.ResponseSet
}

func NewStore() *Store {
	return &Store{responses: make(domain.ResponseSet)}
}

// Set replaces the response for questionID.
func (s *Store) Set(questionID string, value domain.Response) domain.ResponseSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[questionID] = value
	return s.responses.Clone()
}

// Toggle adds or removes one option of a multi-choice response and stores the
// resulting set.
func (s *Store) Toggle(questionID, option string, checked bool) domain.ResponseSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.responses[questionID]
	if !ok {
		current = domain.Choices()
	}
	s.responses[questionID] = current.With(option, checked)
	return s.responses.Clone()
}

// Snapshot returns a copy of the current responses.
func (s *Store) Snapshot() domain.ResponseSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responses.Clone()
}

// Reset empties the store, e.g. after a submit or a job switch.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = make(domain.ResponseSet)
}
