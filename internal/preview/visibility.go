package preview

import "talentflow-assessments/internal/domain"

// IsVisible reports whether q is shown for the given responses. A conditional
// question is visible only while the referenced question holds exactly the
// rule's value; a missing or multi-value response never matches.
func IsVisible(q domain.Question, responses domain.ResponseSet) bool {
	if q.Conditional == nil {
		return true
	}
	resp, ok := responses[q.Conditional.QuestionID]
	if !ok {
		return false
	}
	v, scalar := resp.Scalar()
	return scalar && v == q.Conditional.Value
}

// VisibleQuestions returns the ids of the currently visible questions in document order.
func VisibleQuestions(doc domain.Assessment, responses domain.ResponseSet) []string {
	out := []string{}
	for _, q := range doc.Questions() {
		if IsVisible(q, responses) {
			out = append(out, q.ID)
		}
	}
	return out
}
