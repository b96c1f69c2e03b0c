package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType names the input shape of a question on the wire.
type QuestionType string

const (
	ShortTextType    QuestionType = "short-text"
	LongTextType     QuestionType = "long-text"
	NumericType      QuestionType = "numeric"
	SingleChoiceType QuestionType = "single-choice"
	MultiChoiceType  QuestionType = "multi-choice"
	FileUploadType   QuestionType = "file-upload"
)

// IsChoice reports whether t carries an options list.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoiceType || t == MultiChoiceType
}

// Body is the type-specific part of a question. Exactly one variant is set per question.
type Body interface {
	Type() QuestionType
	clone() Body
}

type ShortText struct{}

type LongText struct {
	MaxLength *int
}

type Numeric struct {
	Min *float64
	Max *float64
}

type SingleChoice struct {
	Options []string
}

type MultiChoice struct {
	Options []string
}

// FileUpload is rendered disabled in the preview and never validated.
type FileUpload struct{}

func (ShortText) Type() QuestionType    { return ShortTextType }
func (LongText) Type() QuestionType     { return LongTextType }
func (Numeric) Type() QuestionType      { return NumericType }
func (SingleChoice) Type() QuestionType { return SingleChoiceType }
func (MultiChoice) Type() QuestionType  { return MultiChoiceType }
func (FileUpload) Type() QuestionType   { return FileUploadType }

func (b ShortText) clone() Body  { return b }
func (b FileUpload) clone() Body { return b }

func (b LongText) clone() Body {
	return LongText{MaxLength: cloneInt(b.MaxLength)}
}

func (b Numeric) clone() Body {
	return Numeric{Min: cloneFloat(b.Min), Max: cloneFloat(b.Max)}
}

func (b SingleChoice) clone() Body {
	return SingleChoice{Options: cloneStrings(b.Options)}
}

func (b MultiChoice) clone() Body {
	return MultiChoice{Options: cloneStrings(b.Options)}
}

// NewBody returns the empty variant for t. Choice variants start with an empty options list.
func NewBody(t QuestionType) (Body, error) {
	switch t {
	case ShortTextType:
		return ShortText{}, nil
	case LongTextType:
		return LongText{}, nil
	case NumericType:
		return Numeric{}, nil
	case SingleChoiceType:
		return SingleChoice{Options: []string{}}, nil
	case MultiChoiceType:
		return MultiChoice{Options: []string{}}, nil
	case FileUploadType:
		return FileUpload{}, nil
	}
	return nil, ErrUnknownQuestionType
}

// OptionsOf returns the options of a choice body, or nil for other variants.
func OptionsOf(b Body) []string {
	switch v := b.(type) {
	case SingleChoice:
		return v.Options
	case MultiChoice:
		return v.Options
	}
	return nil
}

// ConditionalRule gates a question on another question's current response.
type ConditionalRule struct {
	QuestionID string `json:"questionId" yaml:"questionId"`
	Value      string `json:"value" yaml:"value"`
}

// Question is one form field.
type Question struct {
	ID          string
	Text        string
	Required    bool
	Body        Body
	Conditional *ConditionalRule
}

// Type returns the question's type, defaulting to short-text for a zero Question.
func (q Question) Type() QuestionType {
	if q.Body == nil {
		return ShortTextType
	}
	return q.Body.Type()
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	out := q
	if q.Body != nil {
		out.Body = q.Body.clone()
	}
	if q.Conditional != nil {
		c := *q.Conditional
		out.Conditional = &c
	}
	return out
}

// Section is a titled, ordered group of questions.
type Section struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Clone returns a deep copy of s.
func (s Section) Clone() Section {
	out := s
	if s.Questions == nil {
		return out
	}
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

// Assessment is the custom form attached to one job.
type Assessment struct {
	ID       string    `json:"id" yaml:"id"`
	JobID    string    `json:"jobId" yaml:"jobId"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Clone returns a deep copy of a. Edits always operate on a clone so readers of
// the previous value never observe a change.
func (a Assessment) Clone() Assessment {
	out := a
	if a.Sections == nil {
		return out
	}
	out.Sections = make([]Section, len(a.Sections))
	for i, s := range a.Sections {
		out.Sections[i] = s.Clone()
	}
	return out
}

// Question looks up a question by id across all sections.
func (a Assessment) Question(id string) (Question, bool) {
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Questions returns every question in document order.
func (a Assessment) Questions() []Question {
	var out []Question
	for _, s := range a.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

const (
	DefaultSectionID    = "s1"
	DefaultSectionTitle = "Default Section"
)

// DefaultSection is the section a document is (re)initialised with.
func DefaultSection() Section {
	return Section{ID: DefaultSectionID, Title: DefaultSectionTitle, Questions: []Question{}}
}

// NewAssessment builds the document used when a job has no stored assessment yet.
func NewAssessment(jobID, id string) Assessment {
	return Assessment{
		ID:       id,
		JobID:    jobID,
		Sections: []Section{DefaultSection()},
	}
}

// WithDefaultSection returns a copy of a that holds at least one section.
func (a Assessment) WithDefaultSection() Assessment {
	out := a.Clone()
	if len(out.Sections) == 0 {
		out.Sections = []Section{DefaultSection()}
	}
	return out
}

// JobRef is the slice of a job the assessment selector needs.
type JobRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Submission is a stored response set.
type Submission struct {
	SubmissionID string      `json:"submissionId"`
	JobID        string      `json:"jobId"`
	Responses    ResponseSet `json:"responses"`
	SubmittedAt  time.Time   `json:"submittedAt"`
}

// NewSubmissionID returns a "sub_" prefixed unique id.
func NewSubmissionID() string {
	return "sub_" + uuid.NewString()
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
