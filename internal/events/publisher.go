// Package events publishes pool activity to NATS for off-chain indexers
// and wallets. Publishing is best-effort: events go out after the database
// transaction commits, and a publish failure is logged, never propagated
// into the flow that produced it.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// NATS subjects.
const (
	SubjectDeposit        = "shieldpool.deposit"
	SubjectWithdraw       = "shieldpool.withdraw"
	SubjectPoolInitialize = "shieldpool.pool.initialized"
	SubjectPoolPaused     = "shieldpool.pool.paused"
	SubjectPoolUnpaused   = "shieldpool.pool.unpaused"
	SubjectVKSet          = "shieldpool.vk.set"
	SubjectVKLocked       = "shieldpool.vk.locked"
)

// DepositEvent is emitted after a commitment lands in the tree.
type DepositEvent struct {
	Pool       string    `json:"pool"`
	Commitment string    `json:"commitment"`
	LeafIndex  uint64    `json:"leaf_index"`
	MerkleRoot string    `json:"merkle_root"`
	Amount     uint64    `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

// WithdrawEvent is emitted after a nullifier is consumed. Amount is the net
// paid to the recipient.
type WithdrawEvent struct {
	Pool          string    `json:"pool"`
	NullifierHash string    `json:"nullifier_hash"`
	Recipient     string    `json:"recipient"`
	Amount        uint64    `json:"amount"`
	Relayer       string    `json:"relayer,omitempty"`
	RelayerFee    uint64    `json:"relayer_fee"`
	Timestamp     time.Time `json:"timestamp"`
}

// PoolEvent covers lifecycle transitions: initialization, pause/unpause,
// verification key set and lock.
type PoolEvent struct {
	Pool      string    `json:"pool"`
	TokenMint string    `json:"token_mint,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers pool events to interested collaborators.
type Publisher interface {
	PublishDeposit(ev DepositEvent)
	PublishWithdraw(ev WithdrawEvent)
	PublishPoolEvent(subject string, ev PoolEvent)
	Close()
}

// NATSPublisher publishes events over a NATS connection.
type NATSPublisher struct {
	nc     *nats.Conn
	logger *logrus.Logger
}

// NewNATSPublisher connects to the NATS server.
func NewNATSPublisher(url string, logger *logrus.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, logger: logger}, nil
}

func (p *NATSPublisher) publish(subject string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.WithFields(logrus.Fields{"subject": subject, "error": err}).Error("Failed to encode event")
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.WithFields(logrus.Fields{"subject": subject, "error": err}).Error("Failed to publish event")
	}
}

func (p *NATSPublisher) PublishDeposit(ev DepositEvent) {
	p.publish(SubjectDeposit, ev)
}

func (p *NATSPublisher) PublishWithdraw(ev WithdrawEvent) {
	p.publish(SubjectWithdraw, ev)
}

func (p *NATSPublisher) PublishPoolEvent(subject string, ev PoolEvent) {
	p.publish(subject, ev)
}

func (p *NATSPublisher) Close() {
	p.nc.Drain()
}

// NoopPublisher drops all events. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishDeposit(DepositEvent)       {}
func (NoopPublisher) PublishWithdraw(WithdrawEvent)     {}
func (NoopPublisher) PublishPoolEvent(string, PoolEvent) {}
func (NoopPublisher) Close()                             {}
