// Package dto defines the HTTP request and response shapes. All 32-byte
// protocol values travel as 0x-prefixed hex strings; the proof is the
// 256-byte wire encoding, hex encoded.
package dto

// CreatePoolRequest initializes a shielded pool for a token mint.
type CreatePoolRequest struct {
	TokenMint       string `json:"token_mint" binding:"required"`
	Authority       string `json:"authority" binding:"required"`
	TreeDepth       int    `json:"tree_depth"`
	RootHistorySize int    `json:"root_history_size"`
	HashAlgorithm   string `json:"hash_algorithm"`
}

// DepositRequest shields tokens under a pre-hashed commitment.
type DepositRequest struct {
	Commitment string `json:"commitment" binding:"required"`
	Amount     uint64 `json:"amount" binding:"required"`
}

// DepositResponse reports the leaf position and resulting root.
type DepositResponse struct {
	LeafIndex  uint64 `json:"leaf_index"`
	MerkleRoot string `json:"merkle_root"`
}

// WithdrawRequest unshields tokens against a Groth16 proof.
type WithdrawRequest struct {
	Proof         string `json:"proof" binding:"required"`
	MerkleRoot    string `json:"merkle_root" binding:"required"`
	NullifierHash string `json:"nullifier_hash" binding:"required"`
	Recipient     string `json:"recipient" binding:"required"`
	Amount        uint64 `json:"amount" binding:"required"`
	Relayer       string `json:"relayer"`
	RelayerFee    uint64 `json:"relayer_fee"`
}

// WithdrawResponse reports the amount split after the relayer fee.
type WithdrawResponse struct {
	NetAmount  uint64 `json:"net_amount"`
	RelayerFee uint64 `json:"relayer_fee"`
}

// SetVerificationKeyRequest installs the pool's Groth16 verification key,
// hex encoded in the alpha || beta || gamma || delta || IC wire format.
type SetVerificationKeyRequest struct {
	KeyData string `json:"key_data" binding:"required"`
}

// AdminLoginRequest authenticates the pool authority.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse carries the issued bearer token.
type AdminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
