package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"talentflow-assessments/internal/domain"
)

// Store keeps jobs, assessments and submissions in process memory. It serves
// demos and tests as the persistence collaborator and job directory.
type Store struct {
	clock func() time.Time

	mu          sync.RWMutex
	jobs        []domain.JobRef
	assessments map[string]domain.Assessment
	submissions []domain.Submission
}

func NewStore(jobs []domain.JobRef, assessments map[string]domain.Assessment) *Store {
	s := &Store{
		clock:       time.Now,
		jobs:        append([]domain.JobRef(nil), jobs...),
		assessments: make(map[string]domain.Assessment, len(assessments)),
	}
	for jobID, a := range assessments {
		s.assessments[jobID] = a.Clone()
	}
	return s
}

// NewSeededStore returns a store holding the demo jobs and assessments.
func NewSeededStore() *Store {
	return NewStore(SeedJobs(), SeedAssessments())
}

func (s *Store) ListJobs(_ context.Context) ([]domain.JobRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.JobRef{}, s.jobs...), nil
}

func (s *Store) Load(_ context.Context, jobID string) (*domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[jobID]
	if !ok {
		return nil, nil
	}
	out := a.Clone()
	return &out, nil
}

func (s *Store) Save(_ context.Context, assessment domain.Assessment) (domain.Assessment, error) {
	if assessment.JobID == "" {
		return domain.Assessment{}, fmt.Errorf("save assessment: %w", domain.ErrJobNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[assessment.JobID] = assessment.Clone()
	return assessment.Clone(), nil
}

func (s *Store) Submit(_ context.Context, jobID string, responses domain.ResponseSet) (domain.Submission, error) {
	sub := domain.Submission{
		SubmissionID: domain.NewSubmissionID(),
		JobID:        jobID,
		Responses:    responses.Clone(),
		SubmittedAt:  s.clock(),
	}
	s.mu.Lock()
	s.submissions = append(s.submissions, sub)
	s.mu.Unlock()
	return sub, nil
}

// Submissions returns every stored submission for jobID in arrival order.
func (s *Store) Submissions(jobID string) []domain.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Submission
	for _, sub := range s.submissions {
		if sub.JobID == jobID {
			out = append(out, sub)
		}
	}
	return out
}
