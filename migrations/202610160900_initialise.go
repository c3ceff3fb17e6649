package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"prizewheel/models"
)

var initialise = &gormigrate.Migration{
	ID: "202610160900-initialise",
	Migrate: func(db *gorm.DB) error {
		if err := db.AutoMigrate(
			&models.Plan{},
			&models.Operator{},
			&models.CreditTransaction{},
			&models.CreditUsage{},
			&models.Campaign{},
			&models.AttemptCounter{},
			&models.SpinAttempt{},
			&models.Lead{},
		); err != nil {
			return err
		}
		return models.CreateDefaultPlans(db)
	},
	Rollback: func(db *gorm.DB) error {
		return db.Migrator().DropTable(
			&models.Lead{},
			&models.SpinAttempt{},
			&models.AttemptCounter{},
			&models.Campaign{},
			&models.CreditUsage{},
			&models.CreditTransaction{},
			&models.Operator{},
			&models.Plan{},
		)
	},
}
