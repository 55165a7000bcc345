// Package services contains the shielded pool orchestration: the deposit
// and withdraw flows, pool lifecycle, and verification key management.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shieldpool/internal/events"
	"shieldpool/internal/merkle"
	"shieldpool/internal/metrics"
	"shieldpool/internal/models"
	"shieldpool/internal/protocol"
	"shieldpool/internal/repository"
	"shieldpool/internal/utils"
	"shieldpool/internal/zk"
)

// PoolDefaults are applied when InitializePool omits a parameter.
type PoolDefaults struct {
	TreeDepth       int
	RootHistorySize int
	HashAlgorithm   string
}

// PoolService orchestrates all pool operations. Proof math lives in the zk
// package and tree math in merkle; this layer owns ordering, atomicity, and
// failure semantics.
type PoolService struct {
	store     repository.Store
	publisher events.Publisher
	logger    *logrus.Logger
	defaults  PoolDefaults
}

// NewPoolService creates a new PoolService instance.
func NewPoolService(store repository.Store, publisher events.Publisher, logger *logrus.Logger, defaults PoolDefaults) *PoolService {
	return &PoolService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		defaults:  defaults,
	}
}

// InitializePoolRequest carries the parameters for a new pool. Zero-valued
// fields fall back to the service defaults.
type InitializePoolRequest struct {
	TokenMint       string
	Authority       string
	TreeDepth       int
	RootHistorySize int
	HashAlgorithm   string
}

// InitializePool creates the pool record, its empty merkle tree, and the
// vault account.
func (s *PoolService) InitializePool(ctx context.Context, req InitializePoolRequest) (*models.Pool, error) {
	if req.TreeDepth == 0 {
		req.TreeDepth = s.defaults.TreeDepth
	}
	if req.RootHistorySize == 0 {
		req.RootHistorySize = s.defaults.RootHistorySize
	}
	if req.HashAlgorithm == "" {
		req.HashAlgorithm = s.defaults.HashAlgorithm
	}

	hasher, err := zk.NewHasher(req.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	tree, err := merkle.NewWithHasher(req.TreeDepth, req.RootHistorySize, hasher)
	if err != nil {
		return nil, err
	}

	pool := &models.Pool{
		ID:              repository.PoolID(req.TokenMint),
		TokenMint:       req.TokenMint,
		Authority:       req.Authority,
		TreeDepth:       req.TreeDepth,
		RootHistorySize: req.RootHistorySize,
		HashAlgorithm:   req.HashAlgorithm,
	}

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if err := tx.Pools().Create(ctx, pool); err != nil {
			return err
		}
		if err := tx.Vault().Ensure(ctx, pool.ID); err != nil {
			return err
		}
		return saveTree(ctx, tx, pool.ID, tree)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"pool":       pool.ID,
		"token_mint": pool.TokenMint,
		"depth":      pool.TreeDepth,
		"hash":       pool.HashAlgorithm,
	}).Info("Pool initialized")

	s.publisher.PublishPoolEvent(events.SubjectPoolInitialize, events.PoolEvent{
		Pool:      pool.ID,
		TokenMint: pool.TokenMint,
		Timestamp: time.Now().UTC(),
	})
	metrics.TreeCapacity.WithLabelValues(pool.ID).Set(float64(tree.Capacity()))
	return pool, nil
}

// GetPool returns a pool by ID.
func (s *PoolService) GetPool(ctx context.Context, poolID string) (*models.Pool, error) {
	return s.store.Pools().GetByID(ctx, poolID)
}

// ListPools returns all pools.
func (s *PoolService) ListPools(ctx context.Context) ([]*models.Pool, error) {
	return s.store.Pools().List(ctx)
}

// DepositRequest shields tokens under a client-computed commitment.
type DepositRequest struct {
	PoolID     string
	Commitment [32]byte
	Amount     uint64
}

// DepositResult reports where the commitment landed.
type DepositResult struct {
	LeafIndex  uint64
	MerkleRoot [32]byte
}

// Deposit inserts the commitment into the pool tree and credits the vault.
// The tree update, the vault credit, the journal entry, and the pool
// counters all commit atomically; any failure leaves no partial effects.
func (s *PoolService) Deposit(ctx context.Context, req DepositRequest) (*DepositResult, error) {
	if zk.IsZeroElement(req.Commitment) {
		return nil, protocol.ErrInvalidCommitment
	}
	if req.Amount == 0 {
		return nil, protocol.ErrInvalidAmount
	}

	var result DepositResult
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		// row locks serialize concurrent deposits per pool; without them
		// two transactions would extend the tree from the same filled
		// subtrees and the later commit would drop the earlier leaf
		pool, err := tx.Pools().GetByIDForUpdate(ctx, req.PoolID)
		if err != nil {
			return err
		}
		if pool.Paused {
			return protocol.ErrPoolPaused
		}

		tree, err := loadTreeForUpdate(ctx, tx, pool)
		if err != nil {
			return err
		}

		leafIndex, root, err := tree.Insert(req.Commitment)
		if err != nil {
			return err
		}

		if err := tx.Commitments().Create(ctx, &models.CommitmentRecord{
			ID:         uuid.NewString(),
			PoolID:     pool.ID,
			Commitment: utils.HashToHex(req.Commitment),
			LeafIndex:  leafIndex,
			MerkleRoot: utils.HashToHex(root),
			Amount:     req.Amount,
		}); err != nil {
			return err
		}

		if err := tx.Vault().Credit(ctx, pool.ID, req.Amount); err != nil {
			return err
		}

		pool.DepositCount++
		if err := tx.Pools().Update(ctx, pool); err != nil {
			return err
		}
		if err := saveTree(ctx, tx, pool.ID, tree); err != nil {
			return err
		}

		result = DepositResult{LeafIndex: leafIndex, MerkleRoot: root}
		return nil
	})
	if err != nil {
		metrics.DepositsTotal.WithLabelValues(req.PoolID, "error").Inc()
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"pool":       req.PoolID,
		"commitment": utils.HashToHex(req.Commitment),
		"leaf_index": result.LeafIndex,
		"amount":     req.Amount,
	}).Info("Deposit accepted")

	s.publisher.PublishDeposit(events.DepositEvent{
		Pool:       req.PoolID,
		Commitment: utils.HashToHex(req.Commitment),
		LeafIndex:  result.LeafIndex,
		MerkleRoot: utils.HashToHex(result.MerkleRoot),
		Amount:     req.Amount,
		Timestamp:  time.Now().UTC(),
	})
	metrics.DepositsTotal.WithLabelValues(req.PoolID, "ok").Inc()
	metrics.DepositAmount.WithLabelValues(req.PoolID).Add(float64(req.Amount))
	metrics.TreeLeafCount.WithLabelValues(req.PoolID).Set(float64(result.LeafIndex + 1))
	s.updateVaultGauge(ctx, req.PoolID)
	return &result, nil
}

// WithdrawRequest unshields tokens against a Groth16 proof.
type WithdrawRequest struct {
	PoolID string
	Proof  []byte
	Inputs zk.WithdrawPublicInputs
}

// WithdrawResult reports how the withdrawn amount was split.
type WithdrawResult struct {
	NetAmount  uint64
	RelayerFee uint64
}

// Withdraw runs the full withdrawal chain in order: pool state, input
// invariants, root recency, double-spend check, proof verification, vault
// balance, then the atomic state mutation (nullifier marker, vault debit,
// journal, counters). A proof is never verified against an unknown root,
// and a nullifier can be consumed exactly once even under concurrent
// requests.
func (s *PoolService) Withdraw(ctx context.Context, req WithdrawRequest) (*WithdrawResult, error) {
	pool, err := s.store.Pools().GetByID(ctx, req.PoolID)
	if err != nil {
		return nil, err
	}
	if pool.Paused {
		return nil, protocol.ErrPoolPaused
	}

	if err := req.Inputs.Validate(); err != nil {
		return nil, err
	}

	proof, err := zk.ProofFromBytes(req.Proof)
	if err != nil {
		return nil, err
	}

	tree, err := loadTree(ctx, s.store, pool)
	if err != nil {
		return nil, err
	}
	if !tree.IsKnownRoot(req.Inputs.MerkleRoot) {
		return nil, protocol.ErrInvalidMerkleRoot
	}

	nullifierHex := utils.HashToHex(req.Inputs.NullifierHash)
	spent, err := s.store.Nullifiers().IsSpent(ctx, pool.ID, nullifierHex)
	if err != nil {
		return nil, err
	}
	if spent {
		return nil, protocol.ErrNullifierAlreadySpent
	}

	vkRecord, err := s.store.VerificationKeys().Get(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	vk, err := zk.VerificationKeyFromBytes(vkRecord.KeyData)
	if err != nil {
		return nil, err
	}

	verifyStart := time.Now()
	if err := zk.VerifyWithdrawProof(vk, proof, &req.Inputs); err != nil {
		metrics.ProofVerificationsTotal.WithLabelValues(pool.ID, "invalid").Inc()
		metrics.WithdrawalsTotal.WithLabelValues(pool.ID, "error").Inc()
		s.logger.WithFields(logrus.Fields{
			"pool":      pool.ID,
			"nullifier": nullifierHex,
			"error":     err.Error(),
		}).Warn("Proof rejected")
		return nil, err
	}
	metrics.ProofVerificationsTotal.WithLabelValues(pool.ID, "valid").Inc()
	metrics.ProofVerificationDuration.Observe(time.Since(verifyStart).Seconds())

	netAmount, err := req.Inputs.NetAmount()
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		// re-read under lock: the pre-transaction copy may predate an
		// admin pause, and writing it back would revert that pause
		current, err := tx.Pools().GetByIDForUpdate(ctx, pool.ID)
		if err != nil {
			return err
		}
		if current.Paused {
			return protocol.ErrPoolPaused
		}

		// insert-if-absent: loses the race to any concurrent spend
		if err := tx.Nullifiers().MarkSpent(ctx, current.ID, nullifierHex); err != nil {
			return err
		}
		if err := tx.Vault().Debit(ctx, current.ID, req.Inputs.Amount); err != nil {
			return err
		}
		if err := tx.Withdrawals().Create(ctx, &models.WithdrawalRecord{
			ID:            uuid.NewString(),
			PoolID:        current.ID,
			NullifierHash: nullifierHex,
			MerkleRoot:    utils.HashToHex(req.Inputs.MerkleRoot),
			Recipient:     utils.HashToHex(req.Inputs.Recipient),
			Relayer:       utils.HashToHex(req.Inputs.Relayer),
			Amount:        req.Inputs.Amount,
			RelayerFee:    req.Inputs.RelayerFee,
		}); err != nil {
			return err
		}

		current.WithdrawalCount++
		return tx.Pools().Update(ctx, current)
	})
	if err != nil {
		metrics.WithdrawalsTotal.WithLabelValues(pool.ID, "error").Inc()
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"pool":        pool.ID,
		"nullifier":   nullifierHex,
		"recipient":   utils.HashToHex(req.Inputs.Recipient),
		"net_amount":  netAmount,
		"relayer_fee": req.Inputs.RelayerFee,
	}).Info("Withdrawal completed")

	s.publisher.PublishWithdraw(events.WithdrawEvent{
		Pool:          pool.ID,
		NullifierHash: nullifierHex,
		Recipient:     utils.HashToHex(req.Inputs.Recipient),
		Amount:        netAmount,
		Relayer:       utils.HashToHex(req.Inputs.Relayer),
		RelayerFee:    req.Inputs.RelayerFee,
		Timestamp:     time.Now().UTC(),
	})
	metrics.WithdrawalsTotal.WithLabelValues(pool.ID, "ok").Inc()
	metrics.WithdrawalAmount.WithLabelValues(pool.ID).Add(float64(req.Inputs.Amount))
	s.updateVaultGauge(ctx, pool.ID)
	return &WithdrawResult{NetAmount: netAmount, RelayerFee: req.Inputs.RelayerFee}, nil
}

// PrivateTransfer is reserved in the current protocol version. It always
// fails before touching any state.
func (s *PoolService) PrivateTransfer(ctx context.Context, poolID string) error {
	return protocol.ErrNotImplemented
}

// SetVerificationKey validates and stores the pool's Groth16 verification
// key. The key cannot be replaced once it is locked or once the pool has
// processed a deposit.
func (s *PoolService) SetVerificationKey(ctx context.Context, poolID string, keyData []byte) error {
	vk, err := zk.VerificationKeyFromBytes(keyData)
	if err != nil {
		return err
	}
	if err := vk.Validate(zk.PublicInputCount); err != nil {
		return err
	}
	if vk.IsSuspicious() {
		s.logger.WithField("pool", poolID).Warn("Verification key has an identity constant term")
	}

	return s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		pool, err := tx.Pools().GetByIDForUpdate(ctx, poolID)
		if err != nil {
			return err
		}
		if pool.VerificationKeyLocked {
			return protocol.ErrVerificationKeyLocked
		}
		if pool.DepositCount > 0 {
			return fmt.Errorf("%w: pool has processed deposits", protocol.ErrVerificationKeyLocked)
		}

		now := time.Now().UTC()
		if err := tx.VerificationKeys().Set(ctx, &models.VerificationKeyRecord{
			PoolID:  poolID,
			KeyData: keyData,
			ICCount: len(vk.IC),
			SetAt:   now,
		}); err != nil {
			return err
		}

		s.publisher.PublishPoolEvent(events.SubjectVKSet, events.PoolEvent{
			Pool:      poolID,
			Detail:    fmt.Sprintf("ic_count=%d", len(vk.IC)),
			Timestamp: now,
		})
		return nil
	})
}

// LockVerificationKey makes the current key permanent. One-way.
func (s *PoolService) LockVerificationKey(ctx context.Context, poolID string) error {
	return s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		pool, err := tx.Pools().GetByIDForUpdate(ctx, poolID)
		if err != nil {
			return err
		}
		if _, err := tx.VerificationKeys().Get(ctx, poolID); err != nil {
			return err
		}
		if pool.VerificationKeyLocked {
			return nil
		}
		pool.VerificationKeyLocked = true
		if err := tx.Pools().Update(ctx, pool); err != nil {
			return err
		}
		s.publisher.PublishPoolEvent(events.SubjectVKLocked, events.PoolEvent{
			Pool:      poolID,
			Timestamp: time.Now().UTC(),
		})
		return nil
	})
}

// SetPaused pauses or resumes deposits and withdrawals.
func (s *PoolService) SetPaused(ctx context.Context, poolID string, paused bool) error {
	return s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		pool, err := tx.Pools().GetByIDForUpdate(ctx, poolID)
		if err != nil {
			return err
		}
		if pool.Paused == paused {
			return nil
		}
		pool.Paused = paused
		if err := tx.Pools().Update(ctx, pool); err != nil {
			return err
		}

		subject := events.SubjectPoolUnpaused
		if paused {
			subject = events.SubjectPoolPaused
		}
		s.publisher.PublishPoolEvent(subject, events.PoolEvent{
			Pool:      poolID,
			Timestamp: time.Now().UTC(),
		})
		return nil
	})
}

// IsKnownRoot exposes root recency for clients preparing proofs.
func (s *PoolService) IsKnownRoot(ctx context.Context, poolID string, root [32]byte) (bool, error) {
	pool, err := s.store.Pools().GetByID(ctx, poolID)
	if err != nil {
		return false, err
	}
	tree, err := loadTree(ctx, s.store, pool)
	if err != nil {
		return false, err
	}
	return tree.IsKnownRoot(root), nil
}

// ListCommitments returns the paginated deposit journal of a pool.
func (s *PoolService) ListCommitments(ctx context.Context, poolID string, page, pageSize int) ([]*models.CommitmentRecord, int64, error) {
	return s.store.Commitments().List(ctx, poolID, page, pageSize)
}

// ListWithdrawals returns the paginated withdrawal journal of a pool.
func (s *PoolService) ListWithdrawals(ctx context.Context, poolID string, page, pageSize int) ([]*models.WithdrawalRecord, int64, error) {
	return s.store.Withdrawals().List(ctx, poolID, page, pageSize)
}

// VaultBalance returns the pool's custody ledger balance.
func (s *PoolService) VaultBalance(ctx context.Context, poolID string) (uint64, error) {
	return s.store.Vault().Balance(ctx, poolID)
}

func (s *PoolService) updateVaultGauge(ctx context.Context, poolID string) {
	if balance, err := s.store.Vault().Balance(ctx, poolID); err == nil {
		metrics.VaultBalance.WithLabelValues(poolID).Set(float64(balance))
	}
}

func loadTree(ctx context.Context, tx repository.Store, pool *models.Pool) (*merkle.Tree, error) {
	state, err := tx.Trees().Get(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	return restoreTree(state, pool)
}

// loadTreeForUpdate locks the tree row for the rest of the transaction.
func loadTreeForUpdate(ctx context.Context, tx repository.Store, pool *models.Pool) (*merkle.Tree, error) {
	state, err := tx.Trees().GetForUpdate(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	return restoreTree(state, pool)
}

func restoreTree(state *models.TreeState, pool *models.Pool) (*merkle.Tree, error) {
	var snapshot merkle.Snapshot
	if err := json.Unmarshal(state.Snapshot, &snapshot); err != nil {
		return nil, fmt.Errorf("corrupt tree state for pool %s: %w", pool.ID, err)
	}
	hasher, err := zk.NewHasher(pool.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	return merkle.Restore(snapshot, hasher.TwoToOne)
}

func saveTree(ctx context.Context, tx repository.Store, poolID string, tree *merkle.Tree) error {
	snapshot := tree.Snapshot()
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	root := tree.Root()
	return tx.Trees().Save(ctx, &models.TreeState{
		PoolID:        poolID,
		Snapshot:      raw,
		CurrentRoot:   utils.HashToHex(root),
		NextLeafIndex: tree.NextLeafIndex(),
		UpdatedAt:     time.Now().UTC(),
	})
}
