package domain

import (
	"encoding/json"
	"fmt"
)

type validationJSON struct {
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
}

// questionJSON is the wire shape of a question. Options is a pointer so choice
// questions can serialise an empty list while other types omit the key.
type questionJSON struct {
	ID          string           `json:"id" yaml:"id"`
	Text        string           `json:"text" yaml:"text"`
	Type        QuestionType     `json:"type" yaml:"type"`
	Required    bool             `json:"required" yaml:"required"`
	Options     *[]string        `json:"options,omitempty" yaml:"options,omitempty"`
	Validation  *validationJSON  `json:"validation,omitempty" yaml:"validation,omitempty"`
	Conditional *ConditionalRule `json:"conditional,omitempty" yaml:"conditional,omitempty"`
}

func (q Question) toWire() questionJSON {
	out := questionJSON{
		ID:          q.ID,
		Text:        q.Text,
		Type:        q.Type(),
		Required:    q.Required,
		Conditional: q.Conditional,
	}
	switch b := q.Body.(type) {
	case LongText:
		if b.MaxLength != nil {
			out.Validation = &validationJSON{MaxLength: b.MaxLength}
		}
	case Numeric:
		if b.Min != nil || b.Max != nil {
			out.Validation = &validationJSON{Min: b.Min, Max: b.Max}
		}
	case SingleChoice, MultiChoice:
		opts := OptionsOf(b)
		if opts == nil {
			opts = []string{}
		}
		out.Options = &opts
	}
	return out
}

func (w questionJSON) toQuestion() (Question, error) {
	if w.Type == "" {
		w.Type = ShortTextType
	}
	body, err := NewBody(w.Type)
	if err != nil {
		return Question{}, fmt.Errorf("question %q: %w: %s", w.ID, err, w.Type)
	}
	switch body.(type) {
	case LongText:
		if w.Validation != nil {
			body = LongText{MaxLength: w.Validation.MaxLength}
		}
	case Numeric:
		if w.Validation != nil {
			body = Numeric{Min: w.Validation.Min, Max: w.Validation.Max}
		}
	case SingleChoice:
		if w.Options != nil {
			body = SingleChoice{Options: *w.Options}
		}
	case MultiChoice:
		if w.Options != nil {
			body = MultiChoice{Options: *w.Options}
		}
	}
	return Question{
		ID:          w.ID,
		Text:        w.Text,
		Required:    w.Required,
		Body:        body,
		Conditional: w.Conditional,
	}, nil
}

// MarshalJSON writes the flat wire shape: type-specific fields are folded into
// options and validation.
func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.toWire())
}

// UnmarshalJSON keeps only the fields applicable to the decoded type.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := w.toQuestion()
	if err != nil {
		return err
	}
	*q = decoded
	return nil
}

// MarshalYAML mirrors MarshalJSON for assessment files used by the CLI.
func (q Question) MarshalYAML() (interface{}, error) {
	return q.toWire(), nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (q *Question) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var w questionJSON
	if err := unmarshal(&w); err != nil {
		return err
	}
	decoded, err := w.toQuestion()
	if err != nil {
		return err
	}
	*q = decoded
	return nil
}
