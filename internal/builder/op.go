package builder

import (
	"encoding/json"
	"errors"
	"fmt"

	"talentflow-assessments/internal/domain"
)

// OpKind names an edit command.
type OpKind string

const (
	OpAddSection      OpKind = "addSection"
	OpRemoveSection   OpKind = "removeSection"
	OpMoveSection     OpKind = "moveSection"
	OpSetSectionTitle OpKind = "setSectionTitle"
	OpAddQuestion     OpKind = "addQuestion"
	OpRemoveQuestion  OpKind = "removeQuestion"
	OpMoveQuestion    OpKind = "moveQuestion"
	OpSetField        OpKind = "setField"
	OpSetValidation   OpKind = "setValidation"
	OpSetConditional  OpKind = "setConditional"
)

// ErrUnknownOp is returned by Apply for an unrecognised command.
var ErrUnknownOp = errors.New("unknown edit operation")

// Op is a serialisable edit command as sent by the builder client.
type Op struct {
	Kind      OpKind          `json:"op"`
	Section   int             `json:"section"`
	Question  int             `json:"question"`
	Direction Direction       `json:"direction,omitempty"`
	Title     string          `json:"title,omitempty"`
	Field     Field           `json:"field,omitempty"`
	Key       ValidationKey   `json:"key,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Enabled   bool            `json:"enabled,omitempty"`
	RefID     string          `json:"refQuestionId,omitempty"`
	RefValue  string          `json:"refValue,omitempty"`
}

// Apply runs op against doc. Errors only report a malformed command; the edit
// itself never fails.
func (e *Editor) Apply(doc domain.Assessment, op Op) (domain.Assessment, error) {
	switch op.Kind {
	case OpAddSection:
		return e.AddSection(doc), nil
	case OpRemoveSection:
		return e.RemoveSection(doc, op.Section), nil
	case OpMoveSection:
		return e.MoveSection(doc, op.Section, op.Direction), nil
	case OpSetSectionTitle:
		return e.SetSectionTitle(doc, op.Section, op.Title), nil
	case OpAddQuestion:
		return e.AddQuestion(doc, op.Section), nil
	case OpRemoveQuestion:
		return e.RemoveQuestion(doc, op.Section, op.Question), nil
	case OpMoveQuestion:
		return e.MoveQuestion(doc, op.Section, op.Question, op.Direction), nil
	case OpSetField:
		var value any
		if len(op.Value) > 0 {
			if err := json.Unmarshal(op.Value, &value); err != nil {
				return doc, fmt.Errorf("decode %s value: %w", op.Field, err)
			}
		}
		return e.SetQuestionField(doc, op.Section, op.Question, op.Field, value), nil
	case OpSetValidation:
		var value *float64
		if len(op.Value) > 0 {
			if err := json.Unmarshal(op.Value, &value); err != nil {
				return doc, fmt.Errorf("decode %s bound: %w", op.Key, err)
			}
		}
		return e.SetValidation(doc, op.Section, op.Question, op.Key, value), nil
	case OpSetConditional:
		return e.SetConditional(doc, op.Section, op.Question, op.Enabled, op.RefID, op.RefValue), nil
	}
	return doc, fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
}
