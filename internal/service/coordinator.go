package service

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-supplychain-ledger/internal/chain"
	"go-supplychain-ledger/internal/model"
)

// Actor is the already-authenticated identity a request acts as. The routing
// layer resolves it; services trust it as given.
type Actor struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  string
}

// Is reports whether the actor holds one of the given roles.
func (a Actor) Is(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Ledger is the write surface the coordinator drives against the contracts.
// *chain.Gateway satisfies it; tests substitute a recording fake.
type Ledger interface {
	CreateProduct(ctx context.Context, name, description string, priceWei *big.Int) (*chain.Receipt, error)
	AddShipmentUpdate(ctx context.Context, productID int64, location, notes string, statusCode uint8) (*chain.Receipt, error)
	AddDocument(ctx context.Context, productID int64, fileHash, documentType string) (*chain.Receipt, error)
	VerifyDocument(ctx context.Context, documentID int64) (*chain.Receipt, error)
	CreatePayment(ctx context.Context, productID int64, payee common.Address, amountWei *big.Int) (*chain.Receipt, error)
	CompletePayment(ctx context.Context, paymentID int64) (*chain.Receipt, error)
	RefundPayment(ctx context.Context, paymentID int64) (*chain.Receipt, error)
	DisputePayment(ctx context.Context, paymentID int64, reason string) (*chain.Receipt, error)
	CreateEscrow(ctx context.Context, productID int64, seller common.Address, releaseTime time.Time, amountWei *big.Int) (*chain.Receipt, error)
	ReleaseEscrow(ctx context.Context, escrowID int64) (*chain.Receipt, error)
	RefundEscrow(ctx context.Context, escrowID int64) (*chain.Receipt, error)
}

// disabledLedger stands in when no RPC endpoint is configured. Every write
// fails with a network-cause remote error, so records accumulate pending
// markers and reconcile once a real gateway comes online.
type disabledLedger struct{}

// DisabledLedger returns a Ledger whose every submission fails as unreachable.
func DisabledLedger() Ledger { return disabledLedger{} }

func (disabledLedger) err(op string) error {
	return &chain.RemoteError{Cause: chain.CauseNetwork, Op: op, Err: errLedgerDisabled}
}

var errLedgerDisabled = errors.New("ledger connection not configured")

func (d disabledLedger) CreateProduct(context.Context, string, string, *big.Int) (*chain.Receipt, error) {
	return nil, d.err("createProduct")
}

func (d disabledLedger) AddShipmentUpdate(context.Context, int64, string, string, uint8) (*chain.Receipt, error) {
	return nil, d.err("addShipmentUpdate")
}

func (d disabledLedger) AddDocument(context.Context, int64, string, string) (*chain.Receipt, error) {
	return nil, d.err("addDocument")
}

func (d disabledLedger) VerifyDocument(context.Context, int64) (*chain.Receipt, error) {
	return nil, d.err("verifyDocument")
}

func (d disabledLedger) CreatePayment(context.Context, int64, common.Address, *big.Int) (*chain.Receipt, error) {
	return nil, d.err("createPayment")
}

func (d disabledLedger) CompletePayment(context.Context, int64) (*chain.Receipt, error) {
	return nil, d.err("completePayment")
}

func (d disabledLedger) RefundPayment(context.Context, int64) (*chain.Receipt, error) {
	return nil, d.err("refundPayment")
}

func (d disabledLedger) DisputePayment(context.Context, int64, string) (*chain.Receipt, error) {
	return nil, d.err("disputePayment")
}

func (d disabledLedger) CreateEscrow(context.Context, int64, common.Address, time.Time, *big.Int) (*chain.Receipt, error) {
	return nil, d.err("createEscrow")
}

func (d disabledLedger) ReleaseEscrow(context.Context, int64) (*chain.Receipt, error) {
	return nil, d.err("releaseEscrow")
}

func (d disabledLedger) RefundEscrow(context.Context, int64) (*chain.Receipt, error) {
	return nil, d.err("refundEscrow")
}

// CauseNotSynced marks records whose remote leg could not even be attempted
// because the correlated parent record has no chain identifier yet. The
// reconciliation sweep treats it like any other pending cause.
const CauseNotSynced = "NotSynced"

// applyRemoteOutcome folds the result of the remote leg into the record's
// chain-correlation fields. A failed remote write only sets the pending
// marker; the already-committed local write stands (the local store is the
// source of truth, the ledger write is recoverable).
func applyRemoteOutcome(cs *model.ChainSync, receipt *chain.Receipt, err error, event, arg string, log *zap.Logger, op string) {
	if err != nil {
		cause := string(chain.CauseNetwork)
		if re, ok := chain.AsRemoteError(err); ok {
			cause = string(re.Cause)
		}
		cs.MarkPending(cause)
		log.Warn("ledger write failed, recorded for reconciliation",
			zap.String("op", op),
			zap.String("cause", cause),
			zap.Error(err))
		return
	}
	var idPtr *int64
	if event != "" {
		if id, ok := receipt.EventInt64(event, arg); ok {
			idPtr = &id
		}
	}
	cs.MarkSynced(idPtr, receipt.TxHash)
}
