package builder

import (
	"fmt"

	"talentflow-assessments/internal/domain"
)

// IssueKind classifies a suspicious conditional reference.
type IssueKind string

const (
	IssueSelf     IssueKind = "self"
	IssueForward  IssueKind = "forward"
	IssueDangling IssueKind = "dangling"
)

// ReferenceIssue describes one conditional that points at itself, at a later
// question, or at nothing. These are warnings: the preview still evaluates them.
type ReferenceIssue struct {
	Kind       IssueKind `json:"kind"`
	QuestionID string    `json:"questionId"`
	RefID      string    `json:"refId"`
}

func (i ReferenceIssue) String() string {
	switch i.Kind {
	case IssueSelf:
		return fmt.Sprintf("question %s is conditional on itself", i.QuestionID)
	case IssueForward:
		return fmt.Sprintf("question %s is conditional on later question %s", i.QuestionID, i.RefID)
	}
	return fmt.Sprintf("question %s is conditional on unknown question %q", i.QuestionID, i.RefID)
}

// ReferenceIssues lists conditional reference problems in document order.
func ReferenceIssues(doc domain.Assessment) []ReferenceIssue {
	position := make(map[string]int)
	for i, q := range doc.Questions() {
		if _, seen := position[q.ID]; !seen {
			position[q.ID] = i
		}
	}

	var issues []ReferenceIssue
	for i, q := range doc.Questions() {
		if q.Conditional == nil {
			continue
		}
		ref := q.Conditional.QuestionID
		pos, ok := position[ref]
		switch {
		case ref == q.ID:
			issues = append(issues, ReferenceIssue{Kind: IssueSelf, QuestionID: q.ID, RefID: ref})
		case !ok:
			issues = append(issues, ReferenceIssue{Kind: IssueDangling, QuestionID: q.ID, RefID: ref})
		case pos > i:
			issues = append(issues, ReferenceIssue{Kind: IssueForward, QuestionID: q.ID, RefID: ref})
		}
	}
	return issues
}

const candidateLabelMax = 50

// Candidate is one entry of the "depends on" selector.
type Candidate struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ConditionalCandidates lists every question except questionID, labelled by the
// first 50 characters of its text, or by its id when the text is empty.
func ConditionalCandidates(doc domain.Assessment, questionID string) []Candidate {
	var out []Candidate
	for _, q := range doc.Questions() {
		if q.ID == questionID {
			continue
		}
		label := q.Text
		if r := []rune(label); len(r) > candidateLabelMax {
			label = string(r[:candidateLabelMax])
		}
		if label == "" {
			label = q.ID
		}
		out = append(out, Candidate{ID: q.ID, Label: label})
	}
	return out
}
