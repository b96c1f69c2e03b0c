package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"talentflow-assessments/internal/domain"
)

// Store persists assessments as JSONB, one row per job, and appends submitted
// response sets to assessment_responses.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) ListJobs(ctx context.Context) ([]domain.JobRef, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title FROM jobs ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.JobRef{}
	for rows.Next() {
		var j domain.JobRef
		if err := rows.Scan(&j.ID, &j.Title); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Load returns (nil, nil) when the job has no assessment row.
func (s *Store) Load(ctx context.Context, jobID string) (*domain.Assessment, error) {
	var (
		id  string
		raw []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT id, data FROM assessments WHERE job_id=$1`, jobID).Scan(&id, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load assessment: %w", err)
	}
	a := domain.Assessment{ID: id, JobID: jobID}
	if err := json.Unmarshal(raw, &a.Sections); err != nil {
		return nil, fmt.Errorf("unmarshal assessment: %w", err)
	}
	return &a, nil
}

// Save upserts the assessment keyed by job id.
func (s *Store) Save(ctx context.Context, assessment domain.Assessment) (domain.Assessment, error) {
	if assessment.JobID == "" {
		return domain.Assessment{}, fmt.Errorf("save assessment: %w", domain.ErrJobNotFound)
	}
	sections := assessment.Sections
	if sections == nil {
		sections = []domain.Section{}
	}
	raw, err := json.Marshal(sections)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("marshal assessment: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO assessments (job_id, id, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (job_id) DO UPDATE SET id = EXCLUDED.id, data = EXCLUDED.data, updated_at = now()`,
		assessment.JobID, assessment.ID, raw)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("upsert assessment: %w", err)
	}
	return assessment.Clone(), nil
}

func (s *Store) Submit(ctx context.Context, jobID string, responses domain.ResponseSet) (domain.Submission, error) {
	if responses == nil {
		responses = domain.ResponseSet{}
	}
	raw, err := json.Marshal(responses)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("marshal responses: %w", err)
	}
	sub := domain.Submission{
		SubmissionID: domain.NewSubmissionID(),
		JobID:        jobID,
		Responses:    responses.Clone(),
	}
	var createdAt time.Time
	err = s.pool.QueryRow(ctx, `
		INSERT INTO assessment_responses (submission_id, job_id, responses)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		sub.SubmissionID, jobID, raw).Scan(&createdAt)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("insert responses: %w", err)
	}
	sub.SubmittedAt = createdAt
	return sub, nil
}
