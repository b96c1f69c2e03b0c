package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"talentflow-assessments/internal/config"
	"talentflow-assessments/internal/infra/memory"
	"talentflow-assessments/internal/infra/postgres"
	"talentflow-assessments/internal/logger"
)

// NewSeedCmd loads the demo jobs and assessments into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and load demo jobs and assessments into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := openBunDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := applyMigrations(cmd.Context(), db, log); err != nil {
				return err
			}
			jobs := memory.SeedJobs()
			assessments := memory.SeedAssessments()
			if err := postgres.Seed(cmd.Context(), db, jobs, assessments); err != nil {
				return err
			}
			log.Info("seed data loaded", zap.Int("jobs", len(jobs)), zap.Int("assessments", len(assessments)))
			return nil
		},
	}
}
