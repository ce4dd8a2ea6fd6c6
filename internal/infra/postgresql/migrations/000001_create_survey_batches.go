package migrations

import (
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createSurveyBatchesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_survey_batches",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.SurveyBatchModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				// At most one active batch system-wide. Activation races lose here.
				`CREATE UNIQUE INDEX IF NOT EXISTS ` + repository.ConstraintSingleActive + ` ON survey_batches ((status)) WHERE status = 'active'`,
				`CREATE UNIQUE INDEX IF NOT EXISTS ` + repository.ConstraintNameKey + ` ON survey_batches (batch_name_key)`,
				`CREATE INDEX IF NOT EXISTS idx_survey_batches_status_created ON survey_batches (status, created_at)`,
				`ALTER TABLE survey_batches ADD CONSTRAINT ck_survey_batches_status CHECK (status IN ('draft', 'active', 'closed'))`,
				`ALTER TABLE survey_batches ADD CONSTRAINT ck_survey_batches_category CHECK (category IN ('general', 'kk_profiling'))`,
				`ALTER TABLE survey_batches ADD CONSTRAINT ` + repository.ConstraintDateOrder + ` CHECK (start_date < end_date)`,
				`ALTER TABLE survey_batches ADD CONSTRAINT ` + repository.ConstraintAgeRange + ` CHECK (target_age_min >= 15 AND target_age_max <= 30 AND target_age_min < target_age_max)`,
				`ALTER TABLE survey_batches ADD CONSTRAINT ` + repository.ConstraintPauseReason + ` CHECK (paused_at IS NULL OR btrim(coalesce(paused_reason, '')) <> '')`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SurveyBatchModel{})
		},
	}
}
