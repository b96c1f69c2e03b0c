package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response is a candidate-entered value: a single string for scalar question
// types, or a set of option values for multi-choice.
type Response struct {
	text   string
	values []string
	multi  bool
}

// Text builds a scalar response.
func Text(v string) Response {
	return Response{text: v}
}

// Choices builds a multi-value response. Duplicates are dropped, first occurrence wins.
func Choices(values ...string) Response {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !containsString(out, v) {
			out = append(out, v)
		}
	}
	return Response{values: out, multi: true}
}

// IsMulti reports whether r holds a set of values.
func (r Response) IsMulti() bool { return r.multi }

// Scalar returns the single string value; ok is false for multi-value responses.
func (r Response) Scalar() (string, bool) {
	if r.multi {
		return "", false
	}
	return r.text, true
}

// Values returns the selected options of a multi-value response, or the
// scalar wrapped in a slice when it is non-empty.
func (r Response) Values() []string {
	if r.multi {
		out := make([]string, len(r.values))
		copy(out, r.values)
		return out
	}
	if r.text == "" {
		return nil
	}
	return []string{r.text}
}

// Has reports whether a multi-value response contains v.
func (r Response) Has(v string) bool {
	return r.multi && containsString(r.values, v)
}

// IsEmpty is true for an empty string or an empty selection.
func (r Response) IsEmpty() bool {
	if r.multi {
		return len(r.values) == 0
	}
	return r.text == ""
}

// With returns a copy of a multi-value response with v added or removed.
func (r Response) With(v string, selected bool) Response {
	current := r.Values()
	if !r.multi {
		current = nil
	}
	if selected {
		if r.Has(v) {
			return r
		}
		return Choices(append(current, v)...)
	}
	kept := current[:0]
	for _, existing := range current {
		if existing != v {
			kept = append(kept, existing)
		}
	}
	return Choices(kept...)
}

func (r Response) String() string {
	if r.multi {
		return fmt.Sprintf("%q", r.values)
	}
	return r.text
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.multi {
		values := r.values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(values)
	}
	return json.Marshal(r.text)
}

// UnmarshalJSON accepts a JSON string or an array of strings. Numbers are kept
// as their literal text so numeric answers survive clients that send them unquoted.
func (r *Response) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Text("")
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Text(s)
		return nil
	case '[':
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		*r = Choices(values...)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResponse, data)
	}
	*r = Text(n.String())
	return nil
}

// ResponseSet maps question id to the current response.
type ResponseSet map[string]Response

// Clone returns a shallow copy; Response values are immutable.
func (rs ResponseSet) Clone() ResponseSet {
	out := make(ResponseSet, len(rs))
	for k, v := range rs {
		out[k] = v
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, existing := range list {
		if existing == v {
			return true
		}
	}
	return false
}
