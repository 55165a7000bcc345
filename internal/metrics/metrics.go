package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Deposit / withdraw flow
	// ============================================
	DepositsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shieldpool_deposits_total",
			Help: "Total number of deposits processed",
		},
		[]string{"pool", "result"},
	)

	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shieldpool_withdrawals_total",
			Help: "Total number of withdrawals processed",
		},
		[]string{"pool", "result"},
	)

	DepositAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shieldpool_deposit_amount_total",
			Help: "Cumulative deposited token amount",
		},
		[]string{"pool"},
	)

	WithdrawalAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shieldpool_withdrawal_amount_total",
			Help: "Cumulative withdrawn token amount (gross)",
		},
		[]string{"pool"},
	)

	// ============================================
	// Proof verification
	// ============================================
	ProofVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shieldpool_proof_verifications_total",
			Help: "Total number of proof verification attempts",
		},
		[]string{"pool", "result"},
	)

	ProofVerificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shieldpool_proof_verification_duration_seconds",
			Help:    "Groth16 verification duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ============================================
	// Merkle tree
	// ============================================
	TreeLeafCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shieldpool_tree_leaf_count",
			Help: "Number of leaves inserted into the pool tree",
		},
		[]string{"pool"},
	)

	TreeCapacity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shieldpool_tree_capacity",
			Help: "Maximum number of leaves the pool tree can hold",
		},
		[]string{"pool"},
	)

	// ============================================
	// Vault
	// ============================================
	VaultBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shieldpool_vault_balance",
			Help: "Current vault ledger balance per pool",
		},
		[]string{"pool"},
	)
)
