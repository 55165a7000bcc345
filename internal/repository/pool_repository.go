package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shieldpool/internal/models"
	"shieldpool/internal/protocol"
)

// PoolRepository defines the interface for pool configuration access.
type PoolRepository interface {
	Create(ctx context.Context, pool *models.Pool) error
	GetByID(ctx context.Context, id string) (*models.Pool, error)

	// GetByIDForUpdate locks the pool row until the surrounding
	// transaction ends. Any flow that mutates the pool record reads it
	// through this inside the transaction, so a concurrently committed
	// pause or key lock is seen instead of overwritten.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Pool, error)

	GetByTokenMint(ctx context.Context, tokenMint string) (*models.Pool, error)
	Update(ctx context.Context, pool *models.Pool) error
	List(ctx context.Context) ([]*models.Pool, error)
}

type poolRepository struct {
	db *gorm.DB
}

// NewPoolRepository creates a new PoolRepository instance.
func NewPoolRepository(db *gorm.DB) PoolRepository {
	return &poolRepository{db: db}
}

// PoolID derives the deterministic record key for a token mint.
func PoolID(tokenMint string) string {
	return fmt.Sprintf("pool_%s", tokenMint)
}

func (r *poolRepository) Create(ctx context.Context, pool *models.Pool) error {
	if err := r.db.WithContext(ctx).Create(pool).Error; err != nil {
		if isUniqueViolation(err) {
			return protocol.ErrPoolAlreadyExists
		}
		return err
	}
	return nil
}

func (r *poolRepository) GetByID(ctx context.Context, id string) (*models.Pool, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *poolRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Pool, error) {
	return r.getByID(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *poolRepository) getByID(ctx context.Context, db *gorm.DB, id string) (*models.Pool, error) {
	var pool models.Pool
	err := db.WithContext(ctx).Where("id = ?", id).First(&pool).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, protocol.ErrPoolNotFound
		}
		return nil, err
	}
	return &pool, nil
}

func (r *poolRepository) GetByTokenMint(ctx context.Context, tokenMint string) (*models.Pool, error) {
	var pool models.Pool
	err := r.db.WithContext(ctx).Where("token_mint = ?", tokenMint).First(&pool).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, protocol.ErrPoolNotFound
		}
		return nil, err
	}
	return &pool, nil
}

func (r *poolRepository) Update(ctx context.Context, pool *models.Pool) error {
	return r.db.WithContext(ctx).Save(pool).Error
}

func (r *poolRepository) List(ctx context.Context) ([]*models.Pool, error) {
	var pools []*models.Pool
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&pools).Error
	return pools, err
}
