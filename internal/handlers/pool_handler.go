package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shieldpool/internal/dto"
	"shieldpool/internal/protocol"
	"shieldpool/internal/services"
	"shieldpool/internal/utils"
	"shieldpool/internal/zk"
)

// PoolHandler exposes the shielded pool operations over HTTP.
type PoolHandler struct {
	service *services.PoolService
	logger  *logrus.Logger
}

// NewPoolHandler creates a new PoolHandler instance.
func NewPoolHandler(service *services.PoolService, logger *logrus.Logger) *PoolHandler {
	return &PoolHandler{service: service, logger: logger}
}

// errorResponse maps protocol errors to an HTTP status and stable code.
func errorResponse(c *gin.Context, err error) {
	type mapping struct {
		target error
		status int
		code   string
	}
	mappings := []mapping{
		{protocol.ErrPoolNotFound, http.StatusNotFound, "POOL_NOT_FOUND"},
		{protocol.ErrPoolAlreadyExists, http.StatusConflict, "POOL_ALREADY_EXISTS"},
		{protocol.ErrPoolPaused, http.StatusConflict, "POOL_PAUSED"},
		{protocol.ErrNullifierAlreadySpent, http.StatusConflict, "NULLIFIER_ALREADY_SPENT"},
		{protocol.ErrDuplicateCommitment, http.StatusConflict, "DUPLICATE_COMMITMENT"},
		{protocol.ErrVerificationKeyLocked, http.StatusConflict, "VERIFICATION_KEY_LOCKED"},
		{protocol.ErrVerificationKeyNotSet, http.StatusConflict, "VERIFICATION_KEY_NOT_SET"},
		{protocol.ErrMerkleTreeFull, http.StatusConflict, "MERKLE_TREE_FULL"},
		{protocol.ErrInsufficientBalance, http.StatusConflict, "INSUFFICIENT_BALANCE"},
		{protocol.ErrInvalidProof, http.StatusBadRequest, "INVALID_PROOF"},
		{protocol.ErrInvalidProofFormat, http.StatusBadRequest, "INVALID_PROOF_FORMAT"},
		{protocol.ErrInvalidPublicInputs, http.StatusBadRequest, "INVALID_PUBLIC_INPUTS"},
		{protocol.ErrInvalidMerkleRoot, http.StatusBadRequest, "INVALID_MERKLE_ROOT"},
		{protocol.ErrInvalidNullifier, http.StatusBadRequest, "INVALID_NULLIFIER"},
		{protocol.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{protocol.ErrRelayerFeeExceedsAmount, http.StatusBadRequest, "RELAYER_FEE_EXCEEDS_AMOUNT"},
		{protocol.ErrInvalidCommitment, http.StatusBadRequest, "INVALID_COMMITMENT"},
		{protocol.ErrInvalidTreeDepth, http.StatusBadRequest, "INVALID_TREE_DEPTH"},
		{protocol.ErrInvalidRootHistorySize, http.StatusBadRequest, "INVALID_ROOT_HISTORY_SIZE"},
		{protocol.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
		{protocol.ErrNotImplemented, http.StatusNotImplemented, "NOT_IMPLEMENTED"},
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, gin.H{
				"success": false,
				"error":   err.Error(),
				"code":    m.code,
			})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "Internal server error",
		"code":    "INTERNAL_ERROR",
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
		"code":    "INVALID_REQUEST",
	})
}

// CreatePool initializes a new pool. Admin only.
func (h *PoolHandler) CreatePool(c *gin.Context) {
	var req dto.CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	pool, err := h.service.InitializePool(c.Request.Context(), services.InitializePoolRequest{
		TokenMint:       req.TokenMint,
		Authority:       req.Authority,
		TreeDepth:       req.TreeDepth,
		RootHistorySize: req.RootHistorySize,
		HashAlgorithm:   req.HashAlgorithm,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": pool})
}

// ListPools returns all pools.
func (h *PoolHandler) ListPools(c *gin.Context) {
	pools, err := h.service.ListPools(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": pools})
}

// GetPool returns one pool with its vault balance.
func (h *PoolHandler) GetPool(c *gin.Context) {
	poolID := c.Param("pool_id")
	pool, err := h.service.GetPool(c.Request.Context(), poolID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	balance, err := h.service.VaultBalance(c.Request.Context(), poolID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"pool": pool, "vault_balance": balance},
	})
}

// Deposit shields tokens under a commitment.
func (h *PoolHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	commitment, err := utils.HexToHash(req.Commitment)
	if err != nil {
		badRequest(c, "Invalid commitment encoding")
		return
	}

	result, err := h.service.Deposit(c.Request.Context(), services.DepositRequest{
		PoolID:     c.Param("pool_id"),
		Commitment: commitment,
		Amount:     req.Amount,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": dto.DepositResponse{
			LeafIndex:  result.LeafIndex,
			MerkleRoot: utils.HashToHex(result.MerkleRoot),
		},
	})
}

// Withdraw unshields tokens against a proof.
func (h *PoolHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	proof, err := utils.HexToBytes(req.Proof)
	if err != nil {
		badRequest(c, "Invalid proof encoding")
		return
	}
	inputs, err := parseWithdrawInputs(&req)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.Withdraw(c.Request.Context(), services.WithdrawRequest{
		PoolID: c.Param("pool_id"),
		Proof:  proof,
		Inputs: *inputs,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": dto.WithdrawResponse{
			NetAmount:  result.NetAmount,
			RelayerFee: result.RelayerFee,
		},
	})
}

func parseWithdrawInputs(req *dto.WithdrawRequest) (*zk.WithdrawPublicInputs, error) {
	root, err := utils.HexToHash(req.MerkleRoot)
	if err != nil {
		return nil, errors.New("invalid merkle_root encoding")
	}
	nullifier, err := utils.HexToHash(req.NullifierHash)
	if err != nil {
		return nil, errors.New("invalid nullifier_hash encoding")
	}
	recipient, err := utils.HexToHash(req.Recipient)
	if err != nil {
		return nil, errors.New("invalid recipient encoding")
	}
	var relayer [32]byte
	if req.Relayer != "" {
		relayer, err = utils.HexToHash(req.Relayer)
		if err != nil {
			return nil, errors.New("invalid relayer encoding")
		}
	}
	return &zk.WithdrawPublicInputs{
		MerkleRoot:    root,
		NullifierHash: nullifier,
		Recipient:     recipient,
		Amount:        req.Amount,
		Relayer:       relayer,
		RelayerFee:    req.RelayerFee,
	}, nil
}

// PrivateTransfer is reserved; the endpoint always fails.
func (h *PoolHandler) PrivateTransfer(c *gin.Context) {
	errorResponse(c, h.service.PrivateTransfer(c.Request.Context(), c.Param("pool_id")))
}

// GetRoot reports whether a root is current or within the history window.
func (h *PoolHandler) GetRoot(c *gin.Context) {
	root, err := utils.HexToHash(c.Query("root"))
	if err != nil {
		badRequest(c, "Invalid root encoding")
		return
	}
	known, err := h.service.IsKnownRoot(c.Request.Context(), c.Param("pool_id"), root)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"known": known}})
}

// ListCommitments returns the paginated deposit journal.
func (h *PoolHandler) ListCommitments(c *gin.Context) {
	page, pageSize := pagination(c)
	records, total, err := h.service.ListCommitments(c.Request.Context(), c.Param("pool_id"), page, pageSize)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"commitments": records, "total": total, "page": page, "page_size": pageSize},
	})
}

// ListWithdrawals returns the paginated withdrawal journal.
func (h *PoolHandler) ListWithdrawals(c *gin.Context) {
	page, pageSize := pagination(c)
	records, total, err := h.service.ListWithdrawals(c.Request.Context(), c.Param("pool_id"), page, pageSize)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"withdrawals": records, "total": total, "page": page, "page_size": pageSize},
	})
}

// SetVerificationKey installs the pool's verification key. Admin only.
func (h *PoolHandler) SetVerificationKey(c *gin.Context) {
	var req dto.SetVerificationKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	keyData, err := utils.HexToBytes(req.KeyData)
	if err != nil {
		badRequest(c, "Invalid key_data encoding")
		return
	}
	if err := h.service.SetVerificationKey(c.Request.Context(), c.Param("pool_id"), keyData); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LockVerificationKey makes the current key permanent. Admin only.
func (h *PoolHandler) LockVerificationKey(c *gin.Context) {
	if err := h.service.LockVerificationKey(c.Request.Context(), c.Param("pool_id")); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Pause stops deposits and withdrawals. Admin only.
func (h *PoolHandler) Pause(c *gin.Context) {
	if err := h.service.SetPaused(c.Request.Context(), c.Param("pool_id"), true); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Unpause resumes deposits and withdrawals. Admin only.
func (h *PoolHandler) Unpause(c *gin.Context) {
	if err := h.service.SetPaused(c.Request.Context(), c.Param("pool_id"), false); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page < 1 {
		page = 1
	}
	return page, utils.Clamp(pageSize, 1, 500)
}
