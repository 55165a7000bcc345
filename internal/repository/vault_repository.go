package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shieldpool/internal/models"
	"shieldpool/internal/protocol"
)

// VaultRepository is the token custody ledger. Credit and Debit lock the
// account row and must run inside the same transaction as the journal
// writes they belong to.
type VaultRepository interface {
	// Ensure creates the zero-balance account if it does not exist yet.
	// Called once at pool initialization so later Credit/Debit always
	// have a row to lock.
	Ensure(ctx context.Context, poolID string) error

	Balance(ctx context.Context, poolID string) (uint64, error)
	Credit(ctx context.Context, poolID string, amount uint64) error
	Debit(ctx context.Context, poolID string, amount uint64) error
}

type vaultRepository struct {
	db *gorm.DB
}

// NewVaultRepository creates a new VaultRepository instance.
func NewVaultRepository(db *gorm.DB) VaultRepository {
	return &vaultRepository{db: db}
}

func (r *vaultRepository) Ensure(ctx context.Context, poolID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pool_id"}},
			DoNothing: true,
		}).
		Create(&models.VaultAccount{PoolID: poolID, UpdatedAt: time.Now().UTC()}).Error
}

func (r *vaultRepository) Balance(ctx context.Context, poolID string) (uint64, error) {
	account, err := r.get(ctx, r.db, poolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.Balance, nil
}

func (r *vaultRepository) Credit(ctx context.Context, poolID string, amount uint64) error {
	account, err := r.getLocked(ctx, poolID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		account = &models.VaultAccount{PoolID: poolID}
	}
	if account.Balance > math.MaxUint64-amount {
		return protocol.ErrArithmeticOverflow
	}
	account.Balance += amount
	account.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *vaultRepository) Debit(ctx context.Context, poolID string, amount uint64) error {
	account, err := r.getLocked(ctx, poolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return protocol.ErrInsufficientBalance
		}
		return err
	}
	if account.Balance < amount {
		return protocol.ErrInsufficientBalance
	}
	account.Balance -= amount
	account.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(account).Error
}

// getLocked takes FOR UPDATE on the account row so concurrent credits and
// debits serialize on it instead of racing the read-modify-write.
func (r *vaultRepository) getLocked(ctx context.Context, poolID string) (*models.VaultAccount, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), poolID)
}

func (r *vaultRepository) get(ctx context.Context, db *gorm.DB, poolID string) (*models.VaultAccount, error) {
	var account models.VaultAccount
	err := db.WithContext(ctx).Where("pool_id = ?", poolID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}
