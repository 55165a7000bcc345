package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shieldpool/internal/models"
	"shieldpool/internal/protocol"
)

// CommitmentRepository defines the interface for the deposit journal.
type CommitmentRepository interface {
	Create(ctx context.Context, record *models.CommitmentRecord) error
	GetByHash(ctx context.Context, poolID, commitment string) (*models.CommitmentRecord, error)
	Exists(ctx context.Context, poolID, commitment string) (bool, error)
	List(ctx context.Context, poolID string, page, pageSize int) ([]*models.CommitmentRecord, int64, error)
}

type commitmentRepository struct {
	db *gorm.DB
}

// NewCommitmentRepository creates a new CommitmentRepository instance.
func NewCommitmentRepository(db *gorm.DB) CommitmentRepository {
	return &commitmentRepository{db: db}
}

func (r *commitmentRepository) Create(ctx context.Context, record *models.CommitmentRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return protocol.ErrDuplicateCommitment
		}
		return err
	}
	return nil
}

func (r *commitmentRepository) GetByHash(ctx context.Context, poolID, commitment string) (*models.CommitmentRecord, error) {
	var record models.CommitmentRecord
	err := r.db.WithContext(ctx).
		Where("pool_id = ? AND commitment = ?", poolID, commitment).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *commitmentRepository) Exists(ctx context.Context, poolID, commitment string) (bool, error) {
	_, err := r.GetByHash(ctx, poolID, commitment)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List retrieves paginated commitments for a pool, newest first.
func (r *commitmentRepository) List(ctx context.Context, poolID string, page, pageSize int) ([]*models.CommitmentRecord, int64, error) {
	var records []*models.CommitmentRecord
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.CommitmentRecord{}).
		Where("pool_id = ?", poolID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Offset(offset).
		Limit(pageSize).
		Order("leaf_index DESC").
		Find(&records).Error

	return records, total, err
}
