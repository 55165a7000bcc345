// Package repository provides data access for the shielded pool over gorm.
// Each entity gets an interface plus a gorm implementation; Store bundles
// them and carries the transaction boundary, so a service can run a flow
// where either every write lands or none do.
package repository

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Store bundles all repositories over one database handle.
type Store interface {
	Pools() PoolRepository
	Trees() TreeRepository
	VerificationKeys() VerificationKeyRepository
	Nullifiers() NullifierRepository
	Commitments() CommitmentRepository
	Withdrawals() WithdrawalRepository
	Vault() VaultRepository

	// WithinTransaction runs fn against a Store bound to one database
	// transaction. Returning an error rolls everything back.
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store over a gorm handle.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Pools() PoolRepository                       { return NewPoolRepository(s.db) }
func (s *gormStore) Trees() TreeRepository                       { return NewTreeRepository(s.db) }
func (s *gormStore) VerificationKeys() VerificationKeyRepository { return NewVerificationKeyRepository(s.db) }
func (s *gormStore) Nullifiers() NullifierRepository             { return NewNullifierRepository(s.db) }
func (s *gormStore) Commitments() CommitmentRepository           { return NewCommitmentRepository(s.db) }
func (s *gormStore) Withdrawals() WithdrawalRepository           { return NewWithdrawalRepository(s.db) }
func (s *gormStore) Vault() VaultRepository                      { return NewVaultRepository(s.db) }

func (s *gormStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// isUniqueViolation detects a postgres unique-index conflict, the signal
// behind insert-if-absent semantics for nullifiers and commitments.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
