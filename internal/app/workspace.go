package app

import (
	"sync"
	"time"

	"talentflow-assessments/internal/builder"
	"talentflow-assessments/internal/domain"
	"talentflow-assessments/internal/preview"
	"talentflow-assessments/internal/validation"
)

// Snapshot is what the live preview renders after every change.
type Snapshot struct {
	WorkspaceID string                   `json:"workspaceId"`
	JobID       string                   `json:"jobId"`
	Assessment  *domain.Assessment       `json:"assessment"`
	Responses   domain.ResponseSet       `json:"responses"`
	Visible     []string                 `json:"visible"`
	Issues      []builder.ReferenceIssue `json:"issues,omitempty"`
	Dirty       bool                     `json:"dirty"`
	Saving      bool                     `json:"saving"`
	Submitting  bool                     `json:"submitting"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// Workspace is one operator's builder and preview: the selected job, its draft
// document and the preview responses. A job switch discards unsaved edits.
type Workspace struct {
	id        string
	now       func() time.Time
	responses *preview.Store

	mu          sync.RWMutex
	jobID       string
	doc         domain.Assessment
	dirty       bool
	revision    uint64
	generation  uint64
	saving      bool
	submitting  bool
	subscribers map[chan Snapshot]struct{}
}

func newWorkspace(id string) *Workspace {
	return newWorkspaceWithClock(id, time.Now)
}

// newWorkspaceWithClock allows deterministic timestamps in tests.
func newWorkspaceWithClock(id string, now func() time.Time) *Workspace {
	return &Workspace{
		id:          id,
		now:         now,
		responses:   preview.NewStore(),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// ID returns the workspace id.
func (w *Workspace) ID() string { return w.id }

// pending carries the state captured when a save or submit starts.
type pending struct {
	jobID      string
	generation uint64
	revision   uint64
	doc        domain.Assessment
	responses  domain.ResponseSet
}

func (w *Workspace) load(jobID string, doc domain.Assessment) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.jobID = jobID
	w.doc = doc.WithDefaultSection()
	w.dirty = false
	w.revision = 0
	w.generation++
	w.saving = false
	w.submitting = false
	w.responses.Reset()
	return w.broadcastLocked()
}

func (w *Workspace) edit(fn func(domain.Assessment) (domain.Assessment, error)) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.jobID == "" {
		return Snapshot{}, domain.ErrNoJobSelected
	}
	next, err := fn(w.doc)
	if err != nil {
		return Snapshot{}, err
	}
	w.doc = next
	w.dirty = true
	w.revision++
	return w.broadcastLocked(), nil
}

func (w *Workspace) respond(fn func(*preview.Store)) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.jobID == "" {
		return Snapshot{}, domain.ErrNoJobSelected
	}
	fn(w.responses)
	return w.broadcastLocked(), nil
}

func (w *Workspace) beginSave() (pending, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.jobID == "" {
		return pending{}, domain.ErrNoJobSelected
	}
	if w.saving {
		return pending{}, domain.ErrRequestInFlight
	}
	w.saving = true
	w.broadcastLocked()
	return pending{jobID: w.jobID, generation: w.generation, revision: w.revision, doc: w.doc.Clone()}, nil
}

// endSave clears the dirty flag only if nothing was edited while the save was
// in flight and the job was not switched.
func (w *Workspace) endSave(p pending, ok bool) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p.generation != w.generation {
		return w.snapshotLocked()
	}
	w.saving = false
	if ok && p.revision == w.revision {
		w.dirty = false
	}
	return w.broadcastLocked()
}

// beginSubmit validates the current responses and marks the submit in flight.
// A validation failure leaves no trace on the workspace.
func (w *Workspace) beginSubmit() (pending, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.jobID == "" {
		return pending{}, domain.ErrNoJobSelected
	}
	if w.submitting {
		return pending{}, domain.ErrRequestInFlight
	}
	responses := w.responses.Snapshot()
	if err := validation.Validate(w.doc, responses); err != nil {
		return pending{}, err
	}
	w.submitting = true
	w.broadcastLocked()
	return pending{jobID: w.jobID, generation: w.generation, doc: w.doc.Clone(), responses: responses}, nil
}

func (w *Workspace) endSubmit(p pending, ok bool) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p.generation != w.generation {
		return w.snapshotLocked()
	}
	w.submitting = false
	if ok {
		w.responses.Reset()
	}
	return w.broadcastLocked()
}

func (w *Workspace) snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshotLocked()
}

func (w *Workspace) subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	// the initial snapshot is queued before any broadcast can reach ch
	w.mu.Lock()
	ch <- w.snapshotLocked()
	w.subscribers[ch] = struct{}{}
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		if _, ok := w.subscribers[ch]; ok {
			delete(w.subscribers, ch)
			close(ch)
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

func (w *Workspace) closeSubscribers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for ch := range w.subscribers {
		delete(w.subscribers, ch)
		close(ch)
	}
}

// HasSubscribers reports whether a live preview is attached.
func (w *Workspace) HasSubscribers() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subscribers) > 0
}

func (w *Workspace) broadcastLocked() Snapshot {
	snap := w.snapshotLocked()
	for ch := range w.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the oldest pending snapshot so a slow reader never blocks edits
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (w *Workspace) snapshotLocked() Snapshot {
	snap := Snapshot{
		WorkspaceID: w.id,
		JobID:       w.jobID,
		Responses:   w.responses.Snapshot(),
		Visible:     []string{},
		Dirty:       w.dirty,
		Saving:      w.saving,
		Submitting:  w.submitting,
		UpdatedAt:   w.now(),
	}
	if w.jobID == "" {
		return snap
	}
	doc := w.doc.Clone()
	snap.Assessment = &doc
	snap.Visible = preview.VisibleQuestions(doc, snap.Responses)
	snap.Issues = builder.ReferenceIssues(doc)
	return snap
}
