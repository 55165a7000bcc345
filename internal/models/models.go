// Shielded pool database models. All 32-byte protocol values (commitments,
// nullifier hashes, merkle roots) are stored as 0x-prefixed hex strings
// (66 chars); u64 token amounts are stored natively.
package models

import (
	"time"
)

// Pool is the per-pool configuration record. One pool shields one token
// mint; its ID is the PDA-style deterministic key "pool_<token_mint>".
type Pool struct {
	ID        string `json:"id" gorm:"primaryKey;size:80"`
	TokenMint string `json:"token_mint" gorm:"size:66;uniqueIndex;not null"`

	// Authority is the admin identity allowed to manage the pool.
	Authority string `json:"authority" gorm:"size:66;not null"`

	TreeDepth       int    `json:"tree_depth" gorm:"not null"`
	RootHistorySize int    `json:"root_history_size" gorm:"not null"`
	HashAlgorithm   string `json:"hash_algorithm" gorm:"size:20;not null"`

	Paused                bool `json:"paused" gorm:"default:false"`
	VerificationKeyLocked bool `json:"verification_key_locked" gorm:"default:false"`

	DepositCount    uint64 `json:"deposit_count" gorm:"default:0"`
	WithdrawalCount uint64 `json:"withdrawal_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TreeState holds the serialized incremental merkle tree of a pool. The
// snapshot is the merkle.Snapshot JSON; current root and leaf count are
// denormalized for queries.
type TreeState struct {
	PoolID        string `json:"pool_id" gorm:"primaryKey;size:80"`
	Snapshot      []byte `json:"snapshot" gorm:"type:jsonb;not null"`
	CurrentRoot   string `json:"current_root" gorm:"size:66;index;not null"`
	NextLeafIndex uint64 `json:"next_leaf_index" gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at"`
}

// VerificationKeyRecord stores the serialized Groth16 verification key of a
// pool (alpha || beta || gamma || delta || IC points).
type VerificationKeyRecord struct {
	PoolID  string `json:"pool_id" gorm:"primaryKey;size:80"`
	KeyData []byte `json:"key_data" gorm:"not null"`
	ICCount int    `json:"ic_count" gorm:"not null"`

	SetAt     time.Time `json:"set_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SpentNullifier marks a nullifier hash as consumed. The unique index over
// (pool_id, nullifier_hash) makes marking an atomic insert-if-absent; a
// second insert fails with a unique violation.
type SpentNullifier struct {
	ID            string `json:"id" gorm:"primaryKey;size:160"` // "nf_<pool>_<hash>"
	PoolID        string `json:"pool_id" gorm:"size:80;not null;uniqueIndex:idx_pool_nullifier"`
	NullifierHash string `json:"nullifier_hash" gorm:"size:66;not null;uniqueIndex:idx_pool_nullifier"`

	SpentAt time.Time `json:"spent_at"`
}

// CommitmentRecord journals one deposit: the inserted leaf, its position,
// and the root the insertion produced.
type CommitmentRecord struct {
	ID         string `json:"id" gorm:"primaryKey"` // UUID
	PoolID     string `json:"pool_id" gorm:"size:80;not null;index;uniqueIndex:idx_pool_commitment"`
	Commitment string `json:"commitment" gorm:"size:66;not null;uniqueIndex:idx_pool_commitment"`
	LeafIndex  uint64 `json:"leaf_index" gorm:"not null"`
	MerkleRoot string `json:"merkle_root" gorm:"size:66;not null"`
	Amount     uint64 `json:"amount" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

// WithdrawalRecord journals one completed withdrawal.
type WithdrawalRecord struct {
	ID            string `json:"id" gorm:"primaryKey"` // UUID
	PoolID        string `json:"pool_id" gorm:"size:80;not null;index"`
	NullifierHash string `json:"nullifier_hash" gorm:"size:66;not null;index"`
	MerkleRoot    string `json:"merkle_root" gorm:"size:66;not null"`
	Recipient     string `json:"recipient" gorm:"size:66;not null"`
	Relayer       string `json:"relayer" gorm:"size:66"`
	Amount        uint64 `json:"amount" gorm:"not null"`      // gross
	RelayerFee    uint64 `json:"relayer_fee" gorm:"not null"` // paid to relayer

	CreatedAt time.Time `json:"created_at"`
}

// VaultAccount is the token custody ledger of a pool. Deposits credit it,
// withdrawals debit it; a debit may never exceed the balance.
type VaultAccount struct {
	PoolID  string `json:"pool_id" gorm:"primaryKey;size:80"`
	Balance uint64 `json:"balance" gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at"`
}
