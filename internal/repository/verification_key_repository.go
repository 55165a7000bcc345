package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shieldpool/internal/models"
	"shieldpool/internal/protocol"
)

// VerificationKeyRepository defines the interface for verification key
// storage.
type VerificationKeyRepository interface {
	Get(ctx context.Context, poolID string) (*models.VerificationKeyRecord, error)
	Set(ctx context.Context, record *models.VerificationKeyRecord) error
}

type verificationKeyRepository struct {
	db *gorm.DB
}

// NewVerificationKeyRepository creates a new VerificationKeyRepository
// instance.
func NewVerificationKeyRepository(db *gorm.DB) VerificationKeyRepository {
	return &verificationKeyRepository{db: db}
}

func (r *verificationKeyRepository) Get(ctx context.Context, poolID string) (*models.VerificationKeyRecord, error) {
	var record models.VerificationKeyRecord
	err := r.db.WithContext(ctx).Where("pool_id = ?", poolID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, protocol.ErrVerificationKeyNotSet
		}
		return nil, err
	}
	return &record, nil
}

// Set upserts the key record. Mutability policy (locking, no replacement
// after deposits) is enforced by the service layer.
func (r *verificationKeyRepository) Set(ctx context.Context, record *models.VerificationKeyRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pool_id"}},
			UpdateAll: true,
		}).
		Create(record).Error
}
