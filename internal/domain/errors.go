package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrJobNotFound indicates the job id is not known to the job directory.
	ErrJobNotFound = errors.New("job not found")
	// ErrUnknownQuestionType indicates a type string outside the supported set.
	ErrUnknownQuestionType = errors.New("unknown question type")
	// ErrInvalidResponse indicates a response value that is neither a string nor a list of strings.
	ErrInvalidResponse = errors.New("invalid response value")
	// ErrWorkspaceNotFound is returned when a workspace has not been opened.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrNoJobSelected is returned when a workspace action needs a selected job.
	ErrNoJobSelected = errors.New("no job selected")
	// ErrRequestInFlight rejects a save or submit while the previous one is pending.
	ErrRequestInFlight = errors.New("request already in flight")
)

// Validation failure codes, one per rule of the validation engine.
var (
	ErrRequiredFieldMissing = errors.New("required field missing")
	ErrNotANumber           = errors.New("not a number")
	ErrBelowMinimum         = errors.New("below minimum")
	ErrAboveMaximum         = errors.New("above maximum")
	ErrTooLong              = errors.New("too long")
)

// ValidationCode is the stable machine-readable name of a validation failure.
type ValidationCode string

const (
	CodeRequiredFieldMissing ValidationCode = "RequiredFieldMissing"
	CodeNotANumber           ValidationCode = "NotANumber"
	CodeBelowMinimum         ValidationCode = "BelowMinimum"
	CodeAboveMaximum         ValidationCode = "AboveMaximum"
	CodeTooLong              ValidationCode = "TooLong"
)

var codeSentinels = map[ValidationCode]error{
	CodeRequiredFieldMissing: ErrRequiredFieldMissing,
	CodeNotANumber:           ErrNotANumber,
	CodeBelowMinimum:         ErrBelowMinimum,
	CodeAboveMaximum:         ErrAboveMaximum,
	CodeTooLong:              ErrTooLong,
}

// ValidationError names the first question that blocked a submit.
type ValidationError struct {
	Code       ValidationCode `json:"code"`
	QuestionID string         `json:"questionId"`
	Text       string         `json:"text"`
	// Limit is the violated bound for BelowMinimum, AboveMaximum and TooLong.
	Limit float64 `json:"limit,omitempty"`
}

// Error renders the user-facing message shown in the preview.
func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeRequiredFieldMissing:
		return fmt.Sprintf("\"%s\" is required.", e.Text)
	case CodeNotANumber:
		return fmt.Sprintf("\"%s\" must be a number.", e.Text)
	case CodeBelowMinimum:
		return fmt.Sprintf("\"%s\" must be ≥ %s.", e.Text, formatLimit(e.Limit))
	case CodeAboveMaximum:
		return fmt.Sprintf("\"%s\" must be ≤ %s.", e.Text, formatLimit(e.Limit))
	case CodeTooLong:
		return fmt.Sprintf("\"%s\" must be ≤ %s chars.", e.Text, formatLimit(e.Limit))
	}
	return fmt.Sprintf("\"%s\" is invalid.", e.Text)
}

// Unwrap lets callers match a code with errors.Is.
func (e *ValidationError) Unwrap() error {
	return codeSentinels[e.Code]
}

func formatLimit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
