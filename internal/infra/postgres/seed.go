package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/uptrace/bun"

	"talentflow-assessments/internal/domain"
)

type jobRow struct {
	bun.BaseModel `bun:"table:jobs"`

	ID       string `bun:"id,pk"`
	Title    string `bun:"title"`
	Position int    `bun:"position"`
}

type assessmentRow struct {
	bun.BaseModel `bun:"table:assessments"`

	JobID string          `bun:"job_id,pk"`
	ID    string          `bun:"id"`
	Data  json.RawMessage `bun:"data,type:jsonb"`
}

// Seed upserts jobs and inserts assessments for jobs that have none yet, in one
// transaction. Existing assessments are left alone so operator edits survive a
// re-seed.
func Seed(ctx context.Context, db *bun.DB, jobs []domain.JobRef, assessments map[string]domain.Assessment) error {
	jobRows := make([]jobRow, len(jobs))
	for i, j := range jobs {
		jobRows[i] = jobRow{ID: j.ID, Title: j.Title, Position: i}
	}

	jobIDs := make([]string, 0, len(assessments))
	for jobID := range assessments {
		jobIDs = append(jobIDs, jobID)
	}
	sort.Strings(jobIDs)

	assessmentRows := make([]assessmentRow, 0, len(jobIDs))
	for _, jobID := range jobIDs {
		a := assessments[jobID]
		raw, err := json.Marshal(a.Sections)
		if err != nil {
			return fmt.Errorf("marshal assessment %s: %w", jobID, err)
		}
		assessmentRows = append(assessmentRows, assessmentRow{JobID: jobID, ID: a.ID, Data: raw})
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(jobRows) > 0 {
			_, err := tx.NewInsert().
				Model(&jobRows).
				On("CONFLICT (id) DO UPDATE").
				Set("title = EXCLUDED.title").
				Set("position = EXCLUDED.position").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("seed jobs: %w", err)
			}
		}
		if len(assessmentRows) > 0 {
			_, err := tx.NewInsert().
				Model(&assessmentRows).
				On("CONFLICT (job_id) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("seed assessments: %w", err)
			}
		}
		return nil
	})
}
