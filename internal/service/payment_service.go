package service

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-supplychain-ledger/internal/chain"
	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/repository"
	"go-supplychain-ledger/internal/ws"
	"go-supplychain-ledger/pkg/validator"
)

type PaymentService interface {
	Create(ctx context.Context, actor Actor, req *model.Payment) (*model.Payment, error)
	GetAll() ([]model.Payment, error)
	GetByID(id uuid.UUID) (*model.Payment, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID) (*model.Payment, error)
	Refund(ctx context.Context, actor Actor, id uuid.UUID) (*model.Payment, error)
	Dispute(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*model.Payment, error)
	Release(ctx context.Context, actor Actor, id uuid.UUID) (*model.Payment, error)
	Sync(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListPending() ([]model.Payment, error)
}

type paymentService struct {
	payments repository.PaymentRepository
	products repository.ProductRepository
	users    repository.UserRepository
	ledger   Ledger
	hub      *ws.Hub
	log      *zap.Logger
}

func NewPaymentService(payments repository.PaymentRepository, products repository.ProductRepository, users repository.UserRepository, ledger Ledger, hub *ws.Hub, log *zap.Logger) PaymentService {
	return &paymentService{
		payments: payments,
		products: products,
		users:    users,
		ledger:   ledger,
		hub:      hub,
		log:      log,
	}
}

// onChain reports whether the payment method has a ledger counterpart.
// Bank transfers and card payments are purely off-chain records.
func onChain(method model.PaymentMethod) bool {
	return method == model.MethodCrypto || method == model.MethodEscrow
}

// Create records a payment (or escrow, when the method says so) and funds
// the corresponding contract entry. The escrow variant requires a release
// time; funds stay locked until it elapses.
func (s *paymentService) Create(ctx context.Context, actor Actor, req *model.Payment) (*model.Payment, error) {
	req.PayerID = actor.ID
	if req.Method == "" {
		req.Method = model.MethodCrypto
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if req.Method == model.MethodEscrow && req.ReleaseTime == nil {
		return nil, NewValidationError("escrow payments require a release time")
	}

	product, err := s.products.FindByID(req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: req.ProductID.String()}
		}
		return nil, err
	}
	payee, err := s.users.FindByID(req.PayeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: req.PayeeID.String()}
		}
		return nil, err
	}
	if onChain(req.Method) && payee.WalletAddr == "" {
		return nil, NewValidationError("payee %s has no wallet address", payee.ID)
	}

	req.Status = model.PaymentPending
	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()
	if err := s.payments.Create(req); err != nil {
		return nil, err
	}

	if onChain(req.Method) {
		if product.BlockchainID == nil {
			req.MarkPending(CauseNotSynced)
		} else {
			payeeAddr := common.HexToAddress(payee.WalletAddr)
			amount := chain.ToWei(req.Amount)
			if req.Method == model.MethodEscrow {
				receipt, err := s.ledger.CreateEscrow(ctx, *product.BlockchainID, payeeAddr, *req.ReleaseTime, amount)
				applyRemoteOutcome(&req.ChainSync, receipt, err, "EscrowCreated", "escrowId", s.log, "createEscrow")
			} else {
				receipt, err := s.ledger.CreatePayment(ctx, *product.BlockchainID, payeeAddr, amount)
				applyRemoteOutcome(&req.ChainSync, receipt, err, "PaymentCreated", "paymentId", s.log, "createPayment")
			}
		}
		if err := s.payments.Update(req); err != nil {
			return nil, err
		}
	}

	s.hub.BroadcastEvent("payment_created", map[string]interface{}{
		"id":              req.ID,
		"product_id":      req.ProductID,
		"amount":          req.Amount,
		"method":          req.Method,
		"chain_confirmed": req.Synced(),
		"created_by":      actor.Name,
	})
	return req, nil
}

func (s *paymentService) GetAll() ([]model.Payment, error) {
	return s.payments.FindAll()
}

func (s *paymentService) GetByID(id uuid.UUID) (*model.Payment, error) {
	payment, err := s.payments.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "payment", ID: id.String()}
		}
		return nil, err
	}
	return payment, nil
}

// Complete settles a payment to the payee. For escrows this is the release
// of the time lock, so the release-time guard applies.
func (s *paymentService) Complete(ctx context.Context, actor Actor, id uuid.UUID) (*model.Payment, error) {
	if !actor.Is(model.RoleAdmin) {
		return nil, NewAuthorizationError("user %s is not authorized to complete payments", actor.ID)
	}
	return s.transition(ctx, actor, id, model.PaymentCompleted, "")
}

// Refund returns funds to the payer.
func (s *paymentService) Refund(ctx context.Context, actor Actor, id uuid.UUID) (*model.Payment, error) {
	if !actor.Is(model.RoleAdmin) {
		return nil, NewAuthorizationError("user %s is not authorized to refund payments", actor.ID)
	}
	return s.transition(ctx, actor, id, model.PaymentRefunded, "")
}

// Dispute freezes a pending payment for arbitration.
func (s *paymentService) Dispute(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*model.Payment, error) {
	if reason == "" {
		return nil, NewValidationError("please provide a dispute reason")
	}
	return s.transition(ctx, actor, id, model.PaymentDisputed, reason)
}

// Release settles an escrow after its time lock. Non-admins may release only
// escrows they funded.
func (s *paymentService) Release(ctx context.Context, actor Actor, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !payment.IsEscrow() {
		return nil, NewValidationError("payment %s is not an escrow", id)
	}
	if payment.PayerID != actor.ID && !actor.Is(model.RoleAdmin) {
		return nil, NewAuthorizationError("user %s is not authorized to release this escrow", actor.ID)
	}
	return s.transition(ctx, actor, id, model.PaymentCompleted, "")
}

// transition is the escrow/payment state machine. The legal-move check runs
// against the freshly read status, and the local write is conditional on
// that same status so two concurrent transitions cannot both win from one
// stale Pending read: the loser observes InvalidTransition with the state
// the winner installed. Only the winner's remote leg is ever attempted.
func (s *paymentService) transition(ctx context.Context, actor Actor, id uuid.UUID, to model.PaymentStatus, reason string) (*model.Payment, error) {
	payment, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	from := payment.Status
	if !from.CanTransition(to) {
		return nil, &InvalidTransitionError{From: from, To: to}
	}
	// Fail fast on a locked escrow: the contract would reject the release
	// anyway, so no fee is spent and no local state moves.
	if to == model.PaymentCompleted && payment.IsEscrow() && !payment.Releasable(time.Now()) {
		return nil, &EscrowNotReleasableError{ReleaseTime: *payment.ReleaseTime}
	}

	now := time.Now()
	fields := map[string]interface{}{"updated_by": actor.ID.String()}
	if to == model.PaymentCompleted {
		fields["payment_date"] = now
	}
	if reason != "" {
		fields["notes"] = reason
	}
	ok, err := s.payments.UpdateStatusIf(id, from, to, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race: report the transition against the current state.
		current, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{From: current.Status, To: to}
	}

	payment.Status = to
	payment.UpdatedBy = actor.ID.String()
	if to == model.PaymentCompleted {
		payment.PaymentDate = &now
	}
	if reason != "" {
		payment.Notes = reason
	}

	if onChain(payment.Method) {
		if payment.BlockchainID == nil {
			payment.MarkPending(CauseNotSynced)
		} else {
			receipt, err := s.submitTransition(ctx, payment, to, reason)
			applyRemoteOutcome(&payment.ChainSync, receipt, err, "", "", s.log, "payment transition")
		}
		if err := s.payments.Update(payment); err != nil {
			return nil, err
		}
	}

	s.hub.BroadcastEvent("payment_status_updated", map[string]interface{}{
		"id":              payment.ID,
		"status":          payment.Status,
		"chain_confirmed": payment.Synced(),
		"updated_by":      actor.Name,
	})
	return payment, nil
}

// submitTransition picks the contract method matching the transition and the
// payment's funding style. Failed has no remote counterpart; the contract
// learns about it implicitly when no settlement ever arrives.
func (s *paymentService) submitTransition(ctx context.Context, payment *model.Payment, to model.PaymentStatus, reason string) (*chain.Receipt, error) {
	chainID := *payment.BlockchainID
	switch {
	case to == model.PaymentCompleted && payment.IsEscrow():
		return s.ledger.ReleaseEscrow(ctx, chainID)
	case to == model.PaymentCompleted:
		return s.ledger.CompletePayment(ctx, chainID)
	case to == model.PaymentRefunded && payment.IsEscrow():
		return s.ledger.RefundEscrow(ctx, chainID)
	case to == model.PaymentRefunded:
		return s.ledger.RefundPayment(ctx, chainID)
	case to == model.PaymentDisputed:
		return s.ledger.DisputePayment(ctx, chainID, reason)
	}
	return &chain.Receipt{}, nil
}

// Sync re-drives the outstanding remote leg for a pending payment: the
// funding call when the record never reached the chain, otherwise the last
// settled transition.
func (s *paymentService) Sync(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !payment.ReconcilePending || !onChain(payment.Method) {
		return payment, nil
	}

	if payment.BlockchainID == nil {
		product, err := s.products.FindByID(payment.ProductID)
		if err != nil {
			return nil, err
		}
		payee, err := s.users.FindByID(payment.PayeeID)
		if err != nil {
			return nil, err
		}
		if product.BlockchainID == nil || payee.WalletAddr == "" {
			return payment, nil // upstream record still unreconciled
		}
		payeeAddr := common.HexToAddress(payee.WalletAddr)
		amount := chain.ToWei(payment.Amount)
		if payment.IsEscrow() {
			receipt, err := s.ledger.CreateEscrow(ctx, *product.BlockchainID, payeeAddr, *payment.ReleaseTime, amount)
			applyRemoteOutcome(&payment.ChainSync, receipt, err, "EscrowCreated", "escrowId", s.log, "createEscrow")
		} else {
			receipt, err := s.ledger.CreatePayment(ctx, *product.BlockchainID, payeeAddr, amount)
			applyRemoteOutcome(&payment.ChainSync, receipt, err, "PaymentCreated", "paymentId", s.log, "createPayment")
		}
	} else if payment.Status != model.PaymentPending {
		receipt, err := s.submitTransition(ctx, payment, payment.Status, payment.Notes)
		applyRemoteOutcome(&payment.ChainSync, receipt, err, "", "", s.log, "payment transition")
	}
	if err := s.payments.Update(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) ListPending() ([]model.Payment, error) {
	return s.payments.FindReconcilePending()
}
