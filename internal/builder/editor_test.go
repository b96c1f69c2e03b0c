package builder_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow-assessments/internal/builder"
	"talentflow-assessments/internal/domain"
)

func newEditor() *builder.Editor {
	n := 0
	return builder.NewEditor(builder.WithIDGenerator(func(prefix string) string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}))
}

func ptr(v float64) *float64 { return &v }

func sampleDoc() domain.Assessment {
	return domain.Assessment{
		ID:    "a1",
		JobID: "j1",
		Sections: []domain.Section{
			{ID: "s1", Title: "Personal", Questions: []domain.Question{
				{ID: "q1", Text: "Full Name", Required: true, Body: domain.ShortText{}},
				{ID: "q5", Text: "TypeScript?", Required: true, Body: domain.SingleChoice{Options: []string{"Yes", "No"}}},
			}},
			{ID: "s2", Title: "Technical", Questions: []domain.Question{
				{ID: "q3", Text: "Years", Required: true, Body: domain.Numeric{Min: ptr(1), Max: ptr(20)}},
				{ID: "q6", Text: "Rate", Body: domain.Numeric{}, Conditional: &domain.ConditionalRule{QuestionID: "q5", Value: "Yes"}},
				{ID: "q7", Text: "Pick", Body: domain.MultiChoice{Options: []string{"A"}}, Conditional: &domain.ConditionalRule{QuestionID: "q5", Value: "No"}},
			}},
		},
	}
}

func TestAddSectionAppendsWithUniqueID(t *testing.T) {
	calls := 0
	ed := builder.NewEditor(builder.WithIDGenerator(func(prefix string) string {
		calls++
		if calls == 1 {
			return "s2" // collides with an existing section
		}
		return "s-new"
	}))

	doc := sampleDoc()
	next := ed.AddSection(doc)

	require.Len(t, next.Sections, 3)
	assert.Equal(t, "s-new", next.Sections[2].ID)
	assert.Equal(t, builder.NewSectionTitle, next.Sections[2].Title)
	assert.Empty(t, next.Sections[2].Questions)
	assert.Len(t, doc.Sections, 2, "input must not change")
}

func TestRemoveSectionNeverLeavesEmptyDocument(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()

	for i := 0; i < 5; i++ {
		doc = ed.RemoveSection(doc, 0)
		require.GreaterOrEqual(t, len(doc.Sections), 1)
	}
	assert.Equal(t, []domain.Section{domain.DefaultSection()}, doc.Sections)
}

func TestRemoveSectionOnEmptyDocumentReseedsDefault(t *testing.T) {
	ed := newEditor()
	empty := domain.Assessment{ID: "a3", JobID: "j3", Sections: []domain.Section{}}

	next := ed.RemoveSection(empty, 0)
	assert.Equal(t, []domain.Section{domain.DefaultSection()}, next.Sections)
	assert.Empty(t, empty.Sections, "input must not change")

	next = ed.AddQuestion(next, 0)
	assert.Len(t, next.Sections[0].Questions, 1)
}

func TestSectionCountStaysPositive(t *testing.T) {
	starts := map[string]domain.Assessment{
		"sample": sampleDoc(),
		"empty":  {ID: "a3", JobID: "j3"},
		"single": domain.NewAssessment("j4", "a4"),
	}
	for name, start := range starts {
		t.Run(name, func(t *testing.T) {
			ed := newEditor()
			rnd := rand.New(rand.NewSource(42))
			doc := ed.RemoveSection(start, 0)
			require.NotEmpty(t, doc.Sections)

			for step := 0; step < 200; step++ {
				if rnd.Intn(3) == 0 {
					doc = ed.AddSection(doc)
				} else {
					doc = ed.RemoveSection(doc, rnd.Intn(len(doc.Sections)+1)-1)
				}
				require.NotEmpty(t, doc.Sections, "step %d", step)
			}
		})
	}
}

func TestRemoveSectionOutOfRangeIsNoOp(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()
	assert.Equal(t, doc, ed.RemoveSection(doc, 7))
	assert.Equal(t, doc, ed.RemoveSection(doc, -1))
}

func TestRemoveSectionScrubsConditionalsOnItsQuestions(t *testing.T) {
	ed := newEditor()
	next := ed.RemoveSection(sampleDoc(), 0)

	for _, q := range next.Questions() {
		assert.Nil(t, q.Conditional, "question %s kept a dangling conditional", q.ID)
	}
}

func TestMoveSection(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()

	moved := ed.MoveSection(doc, 0, builder.Down)
	assert.Equal(t, "s2", moved.Sections[0].ID)
	assert.Equal(t, "s1", moved.Sections[1].ID)
	assert.Equal(t, "s1", doc.Sections[0].ID)

	assert.Equal(t, doc, ed.MoveSection(doc, 0, builder.Up))
	assert.Equal(t, doc, ed.MoveSection(doc, 1, builder.Down))
	assert.Equal(t, doc, ed.MoveSection(doc, 9, builder.Up))
	assert.Equal(t, doc, ed.MoveSection(doc, 0, builder.Direction(2)))
}

func TestMoveQuestion(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()

	moved := ed.MoveQuestion(doc, 1, 2, builder.Up)
	ids := []string{}
	for _, q := range moved.Sections[1].Questions {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"q3", "q7", "q6"}, ids)

	assert.Equal(t, doc, ed.MoveQuestion(doc, 1, 0, builder.Up))
	assert.Equal(t, doc, ed.MoveQuestion(doc, 1, 2, builder.Down))
	assert.Equal(t, doc, ed.MoveQuestion(doc, 5, 0, builder.Down))
}

func TestAddQuestionDefaults(t *testing.T) {
	ed := newEditor()
	next := ed.AddQuestion(sampleDoc(), 0)

	q := next.Sections[0].Questions[2]
	assert.Equal(t, builder.NewQuestionText, q.Text)
	assert.Equal(t, domain.ShortTextType, q.Type())
	assert.False(t, q.Required)
	assert.Nil(t, domain.OptionsOf(q.Body))
	assert.Equal(t, "q2", q.ID, "q1 is taken, so the next generated id is used")

	assert.Equal(t, sampleDoc(), ed.AddQuestion(sampleDoc(), 3))
}

func TestRemoveQuestionClearsReferences(t *testing.T) {
	ed := newEditor()
	next := ed.RemoveQuestion(sampleDoc(), 0, 1)

	_, found := next.Question("q5")
	assert.False(t, found)
	for _, q := range next.Questions() {
		if q.Conditional != nil {
			assert.NotEqual(t, "q5", q.Conditional.QuestionID)
		}
	}
	assert.Equal(t, sampleDoc(), ed.RemoveQuestion(sampleDoc(), 0, 9))
}

func TestTypeChangeToNonChoiceClearsStaleData(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()
	doc = ed.SetConditional(doc, 0, 1, true, "q1", "Ada")

	for _, target := range []domain.QuestionType{domain.ShortTextType, domain.LongTextType, domain.NumericType, domain.FileUploadType} {
		next := ed.SetQuestionField(doc, 0, 1, builder.FieldType, target)
		q := next.Sections[0].Questions[1]
		assert.Equal(t, target, q.Type())
		assert.Nil(t, domain.OptionsOf(q.Body))
		assert.Nil(t, q.Conditional)

		raw, err := json.Marshal(q)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), `"options"`)
		assert.NotContains(t, string(raw), `"min"`)
	}

	// numeric bounds are dropped even when re-selecting numeric
	next := ed.SetType(doc, 1, 0, domain.NumericType)
	assert.Equal(t, domain.Numeric{}, next.Sections[1].Questions[0].Body)
}

func TestTypeChangeBetweenChoiceTypesKeepsOptions(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()

	next := ed.SetType(doc, 0, 1, domain.MultiChoiceType)
	q := next.Sections[0].Questions[1]
	assert.Equal(t, domain.MultiChoice{Options: []string{"Yes", "No"}}, q.Body)

	fresh := ed.SetType(doc, 0, 0, domain.SingleChoiceType)
	assert.Equal(t, domain.SingleChoice{Options: []string{}}, fresh.Sections[0].Questions[0].Body)
}

func TestSetQuestionFieldIgnoresBadValues(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()

	assert.Equal(t, doc, ed.SetQuestionField(doc, 0, 0, builder.FieldRequired, "yes"))
	assert.Equal(t, doc, ed.SetQuestionField(doc, 0, 0, builder.FieldType, "slider"))
	assert.Equal(t, doc, ed.SetQuestionField(doc, 0, 0, builder.FieldOptions, []string{"x"}))
	assert.Equal(t, doc, ed.SetQuestionField(doc, 4, 0, builder.FieldText, "x"))

	next := ed.SetQuestionField(doc, 0, 1, builder.FieldOptions, " Yes, No ,, Maybe")
	assert.Equal(t, []string{"Yes", "No", "Maybe"}, domain.OptionsOf(next.Sections[0].Questions[1].Body))

	next = ed.SetQuestionField(doc, 0, 0, builder.FieldText, "Name")
	assert.Equal(t, "Name", next.Sections[0].Questions[0].Text)
}

func TestSetValidation(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()

	next := ed.SetValidation(doc, 1, 0, builder.KeyMax, ptr(30))
	body := next.Sections[1].Questions[0].Body.(domain.Numeric)
	assert.Equal(t, 30.0, *body.Max)
	assert.Equal(t, 1.0, *body.Min)

	next = ed.SetValidation(next, 1, 0, builder.KeyMin, nil)
	assert.Nil(t, next.Sections[1].Questions[0].Body.(domain.Numeric).Min)

	long := ed.SetType(doc, 0, 0, domain.LongTextType)
	long = ed.SetValidation(long, 0, 0, builder.KeyMaxLength, ptr(280))
	assert.Equal(t, 280, *long.Sections[0].Questions[0].Body.(domain.LongText).MaxLength)

	// keys foreign to the type are ignored
	assert.Equal(t, doc, ed.SetValidation(doc, 0, 0, builder.KeyMin, ptr(1)))
}

func TestSetValidationIgnoresUnusableMaxLength(t *testing.T) {
	ed := newEditor()
	long := ed.SetType(sampleDoc(), 0, 0, domain.LongTextType)
	long = ed.SetValidation(long, 0, 0, builder.KeyMaxLength, ptr(280))

	for _, v := range []float64{1e300, -3, 2.9, math.NaN(), math.Inf(1)} {
		next := ed.SetValidation(long, 0, 0, builder.KeyMaxLength, ptr(v))
		assert.Equal(t, 280, *next.Sections[0].Questions[0].Body.(domain.LongText).MaxLength, "value %v", v)
	}

	next := ed.SetValidation(long, 0, 0, builder.KeyMaxLength, ptr(0))
	assert.Equal(t, 0, *next.Sections[0].Questions[0].Body.(domain.LongText).MaxLength)
}

func TestSetConditional(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()

	next := ed.SetConditional(doc, 0, 0, true, "q5", "Yes")
	assert.Equal(t, &domain.ConditionalRule{QuestionID: "q5", Value: "Yes"}, next.Sections[0].Questions[0].Conditional)

	next = ed.SetConditional(next, 0, 0, false, "", "")
	assert.Nil(t, next.Sections[0].Questions[0].Conditional)
}

func TestApplyDecodesOps(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()

	var op builder.Op
	require.NoError(t, json.Unmarshal([]byte(`{"op":"setField","section":0,"question":1,"field":"options","value":["A","B"]}`), &op))
	next, err := ed.Apply(doc, op)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, domain.OptionsOf(next.Sections[0].Questions[1].Body))

	require.NoError(t, json.Unmarshal([]byte(`{"op":"setValidation","section":1,"question":0,"key":"max","value":null}`), &op))
	next, err = ed.Apply(doc, op)
	require.NoError(t, err)
	assert.Nil(t, next.Sections[1].Questions[0].Body.(domain.Numeric).Max)

	_, err = ed.Apply(doc, builder.Op{Kind: "explode"})
	assert.True(t, errors.Is(err, builder.ErrUnknownOp))
}

func TestReferenceIssues(t *testing.T) {
	ed := newEditor()
	doc := sampleDoc()
	doc = ed.SetConditional(doc, 0, 0, true, "q1", "x")  // self
	doc = ed.SetConditional(doc, 1, 0, true, "q7", "A")  // forward
	doc = ed.SetConditional(doc, 0, 1, true, "q99", "A") // dangling

	issues := builder.ReferenceIssues(doc)
	require.Len(t, issues, 3)
	assert.Equal(t, builder.IssueSelf, issues[0].Kind)
	assert.Equal(t, builder.IssueDangling, issues[1].Kind)
	assert.Equal(t, builder.IssueForward, issues[2].Kind)
	assert.Empty(t, builder.ReferenceIssues(sampleDoc()))
}

func TestConditionalCandidatesExcludeSelf(t *testing.T) {
	doc := sampleDoc()
	doc.Sections[0].Questions[0].Text = ""
	cands := builder.ConditionalCandidates(doc, "q5")

	require.Len(t, cands, 4)
	assert.Equal(t, builder.Candidate{ID: "q1", Label: "q1"}, cands[0])
	for _, c := range cands {
		assert.NotEqual(t, "q5", c.ID)
	}
}
