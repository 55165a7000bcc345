package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shieldpool/internal/models"
	"shieldpool/internal/protocol"
)

// NullifierRepository defines the interface for spent-nullifier markers.
type NullifierRepository interface {
	// MarkSpent records the nullifier as consumed. It is an atomic
	// insert-if-absent: a nullifier already on record fails with
	// ErrNullifierAlreadySpent, and two concurrent calls cannot both
	// succeed.
	MarkSpent(ctx context.Context, poolID, nullifierHash string) error

	IsSpent(ctx context.Context, poolID, nullifierHash string) (bool, error)
	Get(ctx context.Context, poolID, nullifierHash string) (*models.SpentNullifier, error)
}

type nullifierRepository struct {
	db *gorm.DB
}

// NewNullifierRepository creates a new NullifierRepository instance.
func NewNullifierRepository(db *gorm.DB) NullifierRepository {
	return &nullifierRepository{db: db}
}

// nullifierKey derives the deterministic record key.
func nullifierKey(poolID, nullifierHash string) string {
	return fmt.Sprintf("nf_%s_%s", poolID, nullifierHash)
}

func (r *nullifierRepository) MarkSpent(ctx context.Context, poolID, nullifierHash string) error {
	marker := models.SpentNullifier{
		ID:            nullifierKey(poolID, nullifierHash),
		PoolID:        poolID,
		NullifierHash: nullifierHash,
		SpentAt:       time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&marker).Error; err != nil {
		if isUniqueViolation(err) {
			return protocol.ErrNullifierAlreadySpent
		}
		return err
	}
	return nil
}

func (r *nullifierRepository) IsSpent(ctx context.Context, poolID, nullifierHash string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SpentNullifier{}).
		Where("pool_id = ? AND nullifier_hash = ?", poolID, nullifierHash).
		Count(&count).Error
	return count > 0, err
}

func (r *nullifierRepository) Get(ctx context.Context, poolID, nullifierHash string) (*models.SpentNullifier, error) {
	var marker models.SpentNullifier
	err := r.db.WithContext(ctx).
		Where("pool_id = ? AND nullifier_hash = ?", poolID, nullifierHash).
		First(&marker).Error
	if err != nil {
		return nil, err
	}
	return &marker, nil
}
