package migrations

import (
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createSurveyResponsesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_survey_responses",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.SurveyResponseModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`ALTER TABLE survey_responses ADD CONSTRAINT ` + repository.ConstraintResponseFK +
					` FOREIGN KEY (batch_id) REFERENCES survey_batches (batch_id) ON DELETE RESTRICT`,
				`ALTER TABLE survey_responses ADD CONSTRAINT fk_survey_responses_youth` +
					` FOREIGN KEY (youth_id) REFERENCES youth_profiles (youth_id) ON DELETE CASCADE`,
				`ALTER TABLE survey_responses ADD CONSTRAINT ck_survey_responses_validation_status` +
					` CHECK (validation_status IN ('pending', 'validated', 'rejected'))`,
				`CREATE INDEX IF NOT EXISTS idx_survey_responses_batch_status ON survey_responses (batch_id, validation_status)`,
				`CREATE INDEX IF NOT EXISTS idx_survey_responses_batch_created ON survey_responses (batch_id, created_at DESC)`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SurveyResponseModel{})
		},
	}
}
