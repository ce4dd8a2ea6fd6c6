package migrations

import (
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Inclusive date windows of two batches may not overlap, whatever their status.
func addSurveyBatchWindowExclusion() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_add_survey_batch_window_exclusion",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`ALTER TABLE survey_batches ADD CONSTRAINT ` + repository.ConstraintWindow +
				` EXCLUDE USING gist (daterange(start_date, end_date, '[]') WITH &&)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`ALTER TABLE survey_batches DROP CONSTRAINT IF EXISTS ` + repository.ConstraintWindow).Error
		},
	}
}
