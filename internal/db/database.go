package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shieldpool/internal/models"
)

// Open connects to postgres and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(
		&models.Pool{},
		&models.TreeState{},
		&models.VerificationKeyRecord{},
		&models.SpentNullifier{},
		&models.CommitmentRecord{},
		&models.WithdrawalRecord{},
		&models.VaultAccount{},
	); err != nil {
		return nil, err
	}

	log.Println("database schema migrated")
	return database, nil
}
