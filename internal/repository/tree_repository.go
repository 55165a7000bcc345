package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shieldpool/internal/models"
	"shieldpool/internal/protocol"
)

// TreeRepository defines the interface for merkle tree state persistence.
type TreeRepository interface {
	Get(ctx context.Context, poolID string) (*models.TreeState, error)

	// GetForUpdate locks the tree row until the surrounding transaction
	// ends. Every read-modify-write of the tree state must go through it,
	// or two concurrent deposits would extend the tree from the same
	// stale filled subtrees and the later commit would drop the earlier
	// leaf.
	GetForUpdate(ctx context.Context, poolID string) (*models.TreeState, error)

	Save(ctx context.Context, state *models.TreeState) error
}

type treeRepository struct {
	db *gorm.DB
}

// NewTreeRepository creates a new TreeRepository instance.
func NewTreeRepository(db *gorm.DB) TreeRepository {
	return &treeRepository{db: db}
}

func (r *treeRepository) Get(ctx context.Context, poolID string) (*models.TreeState, error) {
	return r.get(ctx, r.db, poolID)
}

func (r *treeRepository) GetForUpdate(ctx context.Context, poolID string) (*models.TreeState, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), poolID)
}

func (r *treeRepository) get(ctx context.Context, db *gorm.DB, poolID string) (*models.TreeState, error) {
	var state models.TreeState
	err := db.WithContext(ctx).Where("pool_id = ?", poolID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, protocol.ErrPoolNotFound
		}
		return nil, err
	}
	return &state, nil
}

// Save upserts the tree state keyed by pool.
func (r *treeRepository) Save(ctx context.Context, state *models.TreeState) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pool_id"}},
			UpdateAll: true,
		}).
		Create(state).Error
}
