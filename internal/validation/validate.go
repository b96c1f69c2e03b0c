// Package validation checks a response set against an assessment at submit time.
package validation

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"talentflow-assessments/internal/domain"
	"talentflow-assessments/internal/preview"
)

// Validate walks the document in order and returns the first failure as a
// *domain.ValidationError, or nil when the responses may be submitted.
// Hidden questions impose no requirements. Choice answers are only checked
// for presence.
func Validate(doc domain.Assessment, responses domain.ResponseSet) error {
	for _, q := range doc.Questions() {
		if !preview.IsVisible(q, responses) {
			continue
		}
		if err := checkQuestion(q, responses); err != nil {
			return err
		}
	}
	return nil
}

func checkQuestion(q domain.Question, responses domain.ResponseSet) *domain.ValidationError {
	resp, ok := responses[q.ID]
	if !ok || resp.IsEmpty() {
		if q.Required {
			return failure(domain.CodeRequiredFieldMissing, q, 0)
		}
		return nil
	}

	switch body := q.Body.(type) {
	case domain.Numeric:
		raw, scalar := resp.Scalar()
		if !scalar {
			return failure(domain.CodeNotANumber, q, 0)
		}
		n, ok := parseNumber(raw)
		if !ok {
			return failure(domain.CodeNotANumber, q, 0)
		}
		if body.Min != nil && n < *body.Min {
			return failure(domain.CodeBelowMinimum, q, *body.Min)
		}
		if body.Max != nil && n > *body.Max {
			return failure(domain.CodeAboveMaximum, q, *body.Max)
		}
	case domain.LongText:
		raw, scalar := resp.Scalar()
		if scalar && body.MaxLength != nil && utf8.RuneCountInString(raw) > *body.MaxLength {
			return failure(domain.CodeTooLong, q, float64(*body.MaxLength))
		}
	}
	return nil
}

// parseNumber accepts decimal and exponent notation with surrounding spaces.
// NaN is rejected; blank input never reaches here.
func parseNumber(raw string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func failure(code domain.ValidationCode, q domain.Question, limit float64) *domain.ValidationError {
	return &domain.ValidationError{Code: code, QuestionID: q.ID, Text: q.Text, Limit: limit}
}
