// Package builder holds the structural edit operations of the assessment
// builder. Every operation takes a document and returns a new one; the input is
// never modified and out-of-range indices turn the operation into a no-op.
package builder

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"talentflow-assessments/internal/domain"
)

const (
	NewSectionTitle  = "New Section"
	NewQuestionText  = "New Question"
	sectionIDPrefix  = "s"
	questionIDPrefix = "q"
)

// Direction moves an item one slot towards the top (Up) or bottom (Down).
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// Field names a question attribute settable through SetQuestionField.
type Field string

const (
	FieldText     Field = "text"
	FieldRequired Field = "required"
	FieldType     Field = "type"
	FieldOptions  Field = "options"
)

// ValidationKey names a bound settable through SetValidation.
type ValidationKey string

const (
	KeyMin       ValidationKey = "min"
	KeyMax       ValidationKey = "max"
	KeyMaxLength ValidationKey = "maxLength"
)

// Editor applies structural edits. The zero value is not usable; call NewEditor.
type Editor struct {
	newID func(prefix string) string
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator replaces the uuid-based id source, mainly for tests.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

func NewEditor(opts ...Option) *Editor {
	e := &Editor{newID: randomID}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func randomID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// uniqueID draws ids until one is unused by any section or question in doc.
func (e *Editor) uniqueID(doc domain.Assessment, prefix string) string {
	taken := make(map[string]struct{})
	for _, s := range doc.Sections {
		taken[s.ID] = struct{}{}
		for _, q := range s.Questions {
			taken[q.ID] = struct{}{}
		}
	}
	for {
		id := e.newID(prefix)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

// AddSection appends an empty section with a fresh id.
func (e *Editor) AddSection(doc domain.Assessment) domain.Assessment {
	next := doc.Clone()
	next.Sections = append(next.Sections, domain.Section{
		ID:        e.uniqueID(doc, sectionIDPrefix),
		Title:     NewSectionTitle,
		Questions: []domain.Question{},
	})
	return next
}

// RemoveSection drops the section at index. A document never ends up with zero
// sections: removing the last one reseeds the default section. Conditionals
// pointing at questions of the removed section are cleared.
func (e *Editor) RemoveSection(doc domain.Assessment, index int) domain.Assessment {
	if !inRange(index, len(doc.Sections)) {
		return doc.WithDefaultSection()
	}
	next := doc.Clone()
	removed := next.Sections[index]
	next.Sections = append(next.Sections[:index], next.Sections[index+1:]...)
	if len(next.Sections) == 0 {
		next.Sections = []domain.Section{domain.DefaultSection()}
	}
	for _, q := range removed.Questions {
		scrubConditionals(&next, q.ID)
	}
	return next
}

// MoveSection swaps the section at index with its neighbour in dir.
func (e *Editor) MoveSection(doc domain.Assessment, index int, dir Direction) domain.Assessment {
	next := doc.Clone()
	swapAdjacent(next.Sections, index, dir)
	return next
}

// SetSectionTitle renames the section at index.
func (e *Editor) SetSectionTitle(doc domain.Assessment, index int, title string) domain.Assessment {
	next := doc.Clone()
	if inRange(index, len(next.Sections)) {
		next.Sections[index].Title = title
	}
	return next
}

// AddQuestion appends an optional short-text question to the section.
func (e *Editor) AddQuestion(doc domain.Assessment, section int) domain.Assessment {
	next := doc.Clone()
	if !inRange(section, len(next.Sections)) {
		return next
	}
	next.Sections[section].Questions = append(next.Sections[section].Questions, domain.Question{
		ID:   e.uniqueID(doc, questionIDPrefix),
		Text: NewQuestionText,
		Body: domain.ShortText{},
	})
	return next
}

// RemoveQuestion drops a question and clears every conditional that referenced it.
func (e *Editor) RemoveQuestion(doc domain.Assessment, section, question int) domain.Assessment {
	next := doc.Clone()
	if !inRange(section, len(next.Sections)) {
		return next
	}
	qs := next.Sections[section].Questions
	if !inRange(question, len(qs)) {
		return next
	}
	removedID := qs[question].ID
	next.Sections[section].Questions = append(qs[:question], qs[question+1:]...)
	scrubConditionals(&next, removedID)
	return next
}

// MoveQuestion swaps a question with its neighbour inside the same section.
func (e *Editor) MoveQuestion(doc domain.Assessment, section, question int, dir Direction) domain.Assessment {
	next := doc.Clone()
	if inRange(section, len(next.Sections)) {
		swapAdjacent(next.Sections[section].Questions, question, dir)
	}
	return next
}

// SetQuestionField sets one attribute. Values of the wrong Go type are ignored.
// Accepted values: text string; required bool; type domain.QuestionType or
// string; options []string, []any of strings, or a comma separated string.
func (e *Editor) SetQuestionField(doc domain.Assessment, section, question int, field Field, value any) domain.Assessment {
	next := doc.Clone()
	q := questionAt(&next, section, question)
	if q == nil {
		return next
	}
	switch field {
	case FieldText:
		if v, ok := value.(string); ok {
			q.Text = v
		}
	case FieldRequired:
		if v, ok := value.(bool); ok {
			q.Required = v
		}
	case FieldType:
		switch v := value.(type) {
		case domain.QuestionType:
			changeType(q, v)
		case string:
			changeType(q, domain.QuestionType(v))
		}
	case FieldOptions:
		if opts, ok := toOptions(value); ok {
			setOptions(q, opts)
		}
	}
	return next
}

// SetType is SetQuestionField for the type field.
func (e *Editor) SetType(doc domain.Assessment, section, question int, t domain.QuestionType) domain.Assessment {
	return e.SetQuestionField(doc, section, question, FieldType, t)
}

// SetValidation sets or, for a nil value, clears one bound. Keys that do not
// apply to the question's type are ignored, as is a maxLength that is not a
// non-negative whole number representable as int.
func (e *Editor) SetValidation(doc domain.Assessment, section, question int, key ValidationKey, value *float64) domain.Assessment {
	next := doc.Clone()
	q := questionAt(&next, section, question)
	if q == nil {
		return next
	}
	switch body := q.Body.(type) {
	case domain.Numeric:
		switch key {
		case KeyMin:
			body.Min = copyFloat(value)
		case KeyMax:
			body.Max = copyFloat(value)
		}
		q.Body = body
	case domain.LongText:
		if key == KeyMaxLength {
			if value == nil {
				body.MaxLength = nil
			} else if n, ok := lengthLimit(*value); ok {
				body.MaxLength = &n
			}
			q.Body = body
		}
	}
	return next
}

// SetConditional clears the rule when enabled is false, otherwise replaces it.
// Self and forward references are accepted here; see ReferenceIssues.
func (e *Editor) SetConditional(doc domain.Assessment, section, question int, enabled bool, refQuestionID, refValue string) domain.Assessment {
	next := doc.Clone()
	q := questionAt(&next, section, question)
	if q == nil {
		return next
	}
	if !enabled {
		q.Conditional = nil
		return next
	}
	q.Conditional = &domain.ConditionalRule{QuestionID: refQuestionID, Value: refValue}
	return next
}

// changeType swaps the body variant. Choice targets keep existing options and
// the conditional; any other target starts from an empty body and loses the
// conditional. A long-text question keeps its max length.
func changeType(q *domain.Question, t domain.QuestionType) {
	body, err := domain.NewBody(t)
	if err != nil {
		return
	}
	if t.IsChoice() {
		if opts := domain.OptionsOf(q.Body); opts != nil {
			body = withOptions(body, opts)
		}
		q.Body = body
		return
	}
	if prev, ok := q.Body.(domain.LongText); ok && t == domain.LongTextType {
		body = prev
	}
	q.Body = body
	q.Conditional = nil
}

func setOptions(q *domain.Question, opts []string) {
	if !q.Type().IsChoice() {
		return
	}
	q.Body = withOptions(q.Body, opts)
}

func withOptions(b domain.Body, opts []string) domain.Body {
	cp := make([]string, len(opts))
	copy(cp, opts)
	switch b.(type) {
	case domain.SingleChoice:
		return domain.SingleChoice{Options: cp}
	case domain.MultiChoice:
		return domain.MultiChoice{Options: cp}
	}
	return b
}

// ParseOptions splits the comma separated options input, trimming blanks.
func ParseOptions(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toOptions(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case string:
		return ParseOptions(v), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case nil:
		return []string{}, true
	}
	return nil, false
}

func scrubConditionals(doc *domain.Assessment, removedID string) {
	for si := range doc.Sections {
		for qi := range doc.Sections[si].Questions {
			q := &doc.Sections[si].Questions[qi]
			if q.Conditional != nil && q.Conditional.QuestionID == removedID {
				q.Conditional = nil
			}
		}
	}
}

func questionAt(doc *domain.Assessment, section, question int) *domain.Question {
	if !inRange(section, len(doc.Sections)) {
		return nil
	}
	qs := doc.Sections[section].Questions
	if !inRange(question, len(qs)) {
		return nil
	}
	return &qs[question]
}

func swapAdjacent[T any](items []T, index int, dir Direction) {
	to := index + int(dir)
	if (dir != Up && dir != Down) || !inRange(index, len(items)) || !inRange(to, len(items)) {
		return
	}
	items[index], items[to] = items[to], items[index]
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}

func lengthLimit(v float64) (int, bool) {
	if math.IsNaN(v) || v < 0 || v != math.Trunc(v) || v >= float64(math.MaxInt) {
		return 0, false
	}
	return int(v), true
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
