package migrations

import (
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createYouthProfilesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_youth_profiles",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.YouthProfileModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_youth_profiles_age ON youth_profiles (age)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.YouthProfileModel{})
		},
	}
}
