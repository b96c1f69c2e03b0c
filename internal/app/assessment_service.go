package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentflow-assessments/internal/builder"
	"talentflow-assessments/internal/domain"
	"talentflow-assessments/internal/metrics"
	"talentflow-assessments/internal/preview"
	"talentflow-assessments/internal/validation"
)

// AssessmentStore is the persistence collaborator. Load returns (nil, nil)
// when the job has no stored assessment. Save is an upsert keyed by job id.
type AssessmentStore interface {
	Load(ctx context.Context, jobID string) (*domain.Assessment, error)
	Save(ctx context.Context, assessment domain.Assessment) (domain.Assessment, error)
	Submit(ctx context.Context, jobID string, responses domain.ResponseSet) (domain.Submission, error)
}

// JobDirectory supplies the jobs offered by the assessment selector.
type JobDirectory interface {
	ListJobs(ctx context.Context) ([]domain.JobRef, error)
}

// WorkspaceRepository abstracts where open workspaces live (in-memory, Redis-marked, etc).
type WorkspaceRepository interface {
	GetOrCreate(workspaceID string) *Workspace
	Get(workspaceID string) (*Workspace, bool)
	Delete(workspaceID string)
}

// NewWorkspace is exported for infrastructure layers that create workspaces.
func NewWorkspace(id string) *Workspace {
	return newWorkspace(id)
}

// AssessmentService contains the builder, preview and submit use cases.
type AssessmentService struct {
	workspaces WorkspaceRepository
	store      AssessmentStore
	jobs       JobDirectory
	editor     *builder.Editor
	logger     *zap.Logger
	newID      func() string
}

// ServiceOption configures an AssessmentService.
type ServiceOption func(*AssessmentService)

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *AssessmentService) { s.logger = l }
}

func WithEditor(e *builder.Editor) ServiceOption {
	return func(s *AssessmentService) { s.editor = e }
}

// WithAssessmentIDs overrides the id source for assessments created on first access.
func WithAssessmentIDs(fn func() string) ServiceOption {
	return func(s *AssessmentService) { s.newID = fn }
}

func NewAssessmentService(workspaces WorkspaceRepository, store AssessmentStore, jobs JobDirectory, opts ...ServiceOption) *AssessmentService {
	s := &AssessmentService{
		workspaces: workspaces,
		store:      store,
		jobs:       jobs,
		editor:     builder.NewEditor(),
		logger:     zap.NewNop(),
		newID: func() string {
			return "a" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Jobs lists the selectable jobs.
func (s *AssessmentService) Jobs(ctx context.Context) ([]domain.JobRef, error) {
	if s.jobs == nil {
		return []domain.JobRef{}, nil
	}
	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		s.logger.Warn("list jobs failed", zap.Error(err))
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Open returns the workspace, creating an empty one if needed.
func (s *AssessmentService) Open(workspaceID string) Snapshot {
	return s.workspaces.GetOrCreate(workspaceID).snapshot()
}

// SelectJob loads the job's assessment into the workspace, or a default one
// when none is stored. Unsaved edits and preview responses are discarded. On a
// load failure the workspace keeps its previous state.
func (s *AssessmentService) SelectJob(ctx context.Context, workspaceID, jobID string) (Snapshot, error) {
	ws := s.workspaces.GetOrCreate(workspaceID)
	doc, err := s.LoadAssessment(ctx, jobID)
	if err != nil {
		return ws.snapshot(), err
	}
	s.logger.Debug("job selected", zap.String("workspace", workspaceID), zap.String("job", jobID))
	return ws.load(jobID, doc), nil
}

// LoadAssessment fetches the stored assessment or builds the default one.
func (s *AssessmentService) LoadAssessment(ctx context.Context, jobID string) (domain.Assessment, error) {
	stored, err := s.StoredAssessment(ctx, jobID)
	if err != nil {
		return domain.Assessment{}, err
	}
	if stored == nil {
		return domain.NewAssessment(jobID, s.newID()), nil
	}
	return *stored, nil
}

// StoredAssessment returns the persisted assessment of jobID, or nil when the
// job has none.
func (s *AssessmentService) StoredAssessment(ctx context.Context, jobID string) (*domain.Assessment, error) {
	start := time.Now()
	stored, err := s.store.Load(ctx, jobID)
	metrics.StoreDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("load assessment failed", zap.String("job", jobID), zap.Error(err))
		return nil, fmt.Errorf("load assessment %s: %w", jobID, err)
	}
	return stored, nil
}

// Edit applies one builder command to the workspace's draft.
func (s *AssessmentService) Edit(_ context.Context, workspaceID string, op builder.Op) (Snapshot, error) {
	ws, ok := s.workspaces.Get(workspaceID)
	if !ok {
		return Snapshot{}, domain.ErrWorkspaceNotFound
	}
	snap, err := ws.edit(func(doc domain.Assessment) (domain.Assessment, error) {
		return s.editor.Apply(doc, op)
	})
	if err != nil {
		return Snapshot{}, err
	}
	metrics.EditOperations.WithLabelValues(string(op.Kind)).Inc()
	return snap, nil
}

// SetResponse replaces the preview response of one question.
func (s *AssessmentService) SetResponse(_ context.Context, workspaceID, questionID string, value domain.Response) (Snapshot, error) {
	ws, ok := s.workspaces.Get(workspaceID)
	if !ok {
		return Snapshot{}, domain.ErrWorkspaceNotFound
	}
	return ws.respond(func(store *preview.Store) {
		store.Set(questionID, value)
	})
}

// ToggleChoice checks or unchecks one option of a multi-choice question.
func (s *AssessmentService) ToggleChoice(_ context.Context, workspaceID, questionID, option string, checked bool) (Snapshot, error) {
	ws, ok := s.workspaces.Get(workspaceID)
	if !ok {
		return Snapshot{}, domain.ErrWorkspaceNotFound
	}
	return ws.respond(func(store *preview.Store) {
		store.Toggle(questionID, option, checked)
	})
}

// Save persists the workspace's draft. A second save while one is pending is
// rejected with domain.ErrRequestInFlight. On failure the draft is kept so the
// operator can retry.
func (s *AssessmentService) Save(ctx context.Context, workspaceID string) (domain.Assessment, []builder.ReferenceIssue, error) {
	ws, ok := s.workspaces.Get(workspaceID)
	if !ok {
		return domain.Assessment{}, nil, domain.ErrWorkspaceNotFound
	}
	p, err := ws.beginSave()
	if err != nil {
		if errors.Is(err, domain.ErrRequestInFlight) {
			metrics.Saves.WithLabelValues("busy").Inc()
		}
		return domain.Assessment{}, nil, err
	}
	saved, issues, err := s.SaveAssessment(ctx, p.doc)
	ws.endSave(p, err == nil)
	return saved, issues, err
}

// SaveAssessment upserts doc and reports conditional reference warnings.
func (s *AssessmentService) SaveAssessment(ctx context.Context, doc domain.Assessment) (domain.Assessment, []builder.ReferenceIssue, error) {
	issues := builder.ReferenceIssues(doc)
	for _, issue := range issues {
		s.logger.Warn("conditional reference", zap.String("job", doc.JobID), zap.String("issue", issue.String()))
	}

	start := time.Now()
	saved, err := s.store.Save(ctx, doc)
	metrics.StoreDuration.WithLabelValues("save").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Saves.WithLabelValues("error").Inc()
		s.logger.Warn("save assessment failed", zap.String("job", doc.JobID), zap.Error(err))
		return domain.Assessment{}, issues, fmt.Errorf("save assessment %s: %w", doc.JobID, err)
	}
	metrics.Saves.WithLabelValues("ok").Inc()
	s.logger.Info("assessment saved", zap.String("job", saved.JobID), zap.String("assessment", saved.ID))
	return saved, issues, nil
}

// Submit validates the preview responses and hands them to the store. Validation
// failures are returned as *domain.ValidationError and never reach the store.
// A successful submit clears the responses.
func (s *AssessmentService) Submit(ctx context.Context, workspaceID string) (domain.Submission, error) {
	ws, ok := s.workspaces.Get(workspaceID)
	if !ok {
		return domain.Submission{}, domain.ErrWorkspaceNotFound
	}
	p, err := ws.beginSubmit()
	if err != nil {
		s.recordSubmitRejection(err)
		return domain.Submission{}, err
	}
	sub, err := s.submit(ctx, p.jobID, p.responses)
	ws.endSubmit(p, err == nil)
	return sub, err
}

// SubmitResponses validates responses against the stored assessment of jobID
// and submits them.
func (s *AssessmentService) SubmitResponses(ctx context.Context, jobID string, responses domain.ResponseSet) (domain.Submission, error) {
	doc, err := s.LoadAssessment(ctx, jobID)
	if err != nil {
		metrics.Submissions.WithLabelValues("error").Inc()
		return domain.Submission{}, err
	}
	if err := validation.Validate(doc, responses); err != nil {
		s.recordSubmitRejection(err)
		return domain.Submission{}, err
	}
	return s.submit(ctx, jobID, responses)
}

func (s *AssessmentService) submit(ctx context.Context, jobID string, responses domain.ResponseSet) (domain.Submission, error) {
	start := time.Now()
	sub, err := s.store.Submit(ctx, jobID, responses)
	metrics.StoreDuration.WithLabelValues("submit").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Submissions.WithLabelValues("error").Inc()
		s.logger.Warn("submit failed", zap.String("job", jobID), zap.Error(err))
		return domain.Submission{}, fmt.Errorf("submit responses %s: %w", jobID, err)
	}
	metrics.Submissions.WithLabelValues("ok").Inc()
	s.logger.Info("responses submitted", zap.String("job", jobID), zap.String("submission", sub.SubmissionID))
	return sub, nil
}

func (s *AssessmentService) recordSubmitRejection(err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		metrics.Submissions.WithLabelValues("invalid").Inc()
		metrics.ValidationFailures.WithLabelValues(string(verr.Code)).Inc()
	case errors.Is(err, domain.ErrRequestInFlight):
		metrics.Submissions.WithLabelValues("busy").Inc()
	}
}

// Snapshot returns the workspace's current preview state.
func (s *AssessmentService) Snapshot(_ context.Context, workspaceID string) (Snapshot, error) {
	ws, ok := s.workspaces.Get(workspaceID)
	if !ok {
		return Snapshot{}, domain.ErrWorkspaceNotFound
	}
	return ws.snapshot(), nil
}

// Subscribe returns a channel of snapshots for the workspace, starting with the
// current one. The caller must invoke the returned cancel function to avoid leaks.
func (s *AssessmentService) Subscribe(_ context.Context, workspaceID string) (<-chan Snapshot, func(), error) {
	ws, ok := s.workspaces.Get(workspaceID)
	if !ok {
		return nil, nil, domain.ErrWorkspaceNotFound
	}
	ch, cancel := ws.subscribe()
	return ch, cancel, nil
}

// Candidates lists the questions a conditional on questionID may reference.
func (s *AssessmentService) Candidates(_ context.Context, workspaceID, questionID string) ([]builder.Candidate, error) {
	ws, ok := s.workspaces.Get(workspaceID)
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	snap := ws.snapshot()
	if snap.Assessment == nil {
		return nil, domain.ErrNoJobSelected
	}
	return builder.ConditionalCandidates(*snap.Assessment, questionID), nil
}

// Release drops the workspace once its last preview disconnects, when the
// repository supports idle eviction.
func (s *AssessmentService) Release(_ context.Context, workspaceID string) {
	if r, ok := s.workspaces.(interface{ DeleteIfIdle(string) }); ok {
		r.DeleteIfIdle(workspaceID)
	}
}

// Touch extends the liveness of an open workspace, when the repository tracks
// liveness outside the process.
func (s *AssessmentService) Touch(ctx context.Context, workspaceID string) {
	r, ok := s.workspaces.(interface {
		Touch(ctx context.Context, workspaceID string) error
	})
	if !ok {
		return
	}
	if err := r.Touch(ctx, workspaceID); err != nil {
		s.logger.Debug("touch workspace failed", zap.String("workspace", workspaceID), zap.Error(err))
	}
}

// Close drops the workspace and ends its subscriptions. Unsaved edits are lost.
func (s *AssessmentService) Close(_ context.Context, workspaceID string) {
	ws, ok := s.workspaces.Get(workspaceID)
	if !ok {
		return
	}
	ws.closeSubscribers()
	s.workspaces.Delete(workspaceID)
}
