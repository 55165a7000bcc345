package repository

import (
	"context"

	"gorm.io/gorm"

	"shieldpool/internal/models"
)

// WithdrawalRepository defines the interface for the withdrawal journal.
type WithdrawalRepository interface {
	Create(ctx context.Context, record *models.WithdrawalRecord) error
	List(ctx context.Context, poolID string, page, pageSize int) ([]*models.WithdrawalRecord, int64, error)
}

type withdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates a new WithdrawalRepository instance.
func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) Create(ctx context.Context, record *models.WithdrawalRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *withdrawalRepository) List(ctx context.Context, poolID string, page, pageSize int) ([]*models.WithdrawalRecord, int64, error) {
	var records []*models.WithdrawalRecord
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.WithdrawalRecord{}).
		Where("pool_id = ?", poolID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&records).Error

	return records, total, err
}
