package memory

import "talentflow-assessments/internal/domain"

// SeedJobs is the demo job list.
func SeedJobs() []domain.JobRef {
	return []domain.JobRef{
		{ID: "j1", Title: "Senior Frontend Engineer"},
		{ID: "j2", Title: "Product Manager"},
		{ID: "j3", Title: "UX/UI Designer"},
		{ID: "j4", Title: "Full-Stack Developer"},
		{ID: "j5", Title: "DevOps Engineer"},
		{ID: "j6", Title: "Data Scientist"},
		{ID: "j7", Title: "Junior Backend Engineer"},
		{ID: "j8", Title: "Marketing Lead"},
		{ID: "j9", Title: "Head of People"},
		{ID: "j10", Title: "Customer Support Rep"},
	}
}

// SeedAssessments returns the demo assessments keyed by job id.
func SeedAssessments() map[string]domain.Assessment {
	return map[string]domain.Assessment{
		"j1": {
			ID:    "a1",
			JobID: "j1",
			Sections: []domain.Section{
				{ID: "s1", Title: "Personal Information", Questions: []domain.Question{
					{ID: "q1", Text: "Full Name", Required: true, Body: domain.ShortText{}},
					{ID: "q2", Text: "Portfolio URL", Required: true, Body: domain.ShortText{}},
				}},
				{ID: "s2", Title: "Technical Skills", Questions: []domain.Question{
					{ID: "q3", Text: "Years of React Experience", Required: true, Body: domain.Numeric{Min: float(1), Max: float(20)}},
					{ID: "q4", Text: "Which state management libraries have you used?", Required: true, Body: domain.MultiChoice{Options: []string{"Redux", "Zustand", "Jotai", "Recoil", "Context API"}}},
					{ID: "q5", Text: "Do you have TypeScript experience?", Required: true, Body: domain.SingleChoice{Options: []string{"Yes", "No"}}},
					{
						ID:          "q6",
						Text:        `If "Yes", please rate your TypeScript proficiency (1-5)`,
						Body:        domain.Numeric{Min: float(1), Max: float(5)},
						Conditional: &domain.ConditionalRule{QuestionID: "q5", Value: "Yes"},
					},
					{ID: "q7", Text: "Describe a complex problem you solved with React.", Required: true, Body: domain.LongText{MaxLength: integer(1000)}},
				}},
			},
		},
		"j2": {
			ID:    "a2",
			JobID: "j2",
			Sections: []domain.Section{
				{ID: "s3", Title: "Background", Questions: []domain.Question{
					{ID: "q8", Text: "How many years of PM experience do you have?", Required: true, Body: domain.Numeric{}},
					{ID: "q9", Text: "What is your preferred prioritization framework?", Required: true, Body: domain.ShortText{}},
					{ID: "q10", Text: "Describe your process for gathering user requirements.", Required: true, Body: domain.LongText{}},
				}},
			},
		},
	}
}

func float(v float64) *float64 { return &v }

func integer(v int) *int { return &v }
