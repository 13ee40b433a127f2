package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/repository"
	"go-supplychain-ledger/internal/ws"
	"go-supplychain-ledger/pkg/validator"
)

type DocumentService interface {
	Create(ctx context.Context, actor Actor, req *model.Document) (*model.Document, error)
	GetAll() ([]model.Document, error)
	GetByID(id uuid.UUID) (*model.Document, error)
	GetByParent(kind model.ParentKind, parentID uuid.UUID) ([]model.Document, error)
	Verify(ctx context.Context, actor Actor, id uuid.UUID) (*model.Document, error)
	Sync(ctx context.Context, id uuid.UUID) (*model.Document, error)
	ListPending() ([]model.Document, error)
}

type documentService struct {
	documents repository.DocumentRepository
	products  repository.ProductRepository
	shipments repository.ShipmentRepository
	ledger    Ledger
	hub       *ws.Hub
	log       *zap.Logger
}

func NewDocumentService(documents repository.DocumentRepository, products repository.ProductRepository, shipments repository.ShipmentRepository, ledger Ledger, hub *ws.Hub, log *zap.Logger) DocumentService {
	return &documentService{
		documents: documents,
		products:  products,
		shipments: shipments,
		ledger:    ledger,
		hub:       hub,
		log:       log,
	}
}

// Create validates the exactly-one-parent invariant and the document type
// before any write, then runs the local-then-remote sequence.
func (s *documentService) Create(ctx context.Context, actor Actor, req *model.Document) (*model.Document, error) {
	if err := req.Parent.Validate(); err != nil {
		return nil, NewValidationError("document must be associated with either a product or a shipment")
	}
	if !model.ValidDocumentType(req.DocumentType) {
		return nil, NewValidationError("unknown document type %q", req.DocumentType)
	}
	req.IssuedByID = actor.ID
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	// The parent must exist before the document is written.
	chainProductID, err := s.resolveChainProduct(req.Parent)
	if err != nil {
		return nil, err
	}

	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()
	if err := s.documents.Create(req); err != nil {
		return nil, err
	}

	if chainProductID == nil {
		req.MarkPending(CauseNotSynced)
	} else {
		receipt, err := s.ledger.AddDocument(ctx, *chainProductID, req.FileHash, string(req.DocumentType))
		applyRemoteOutcome(&req.ChainSync, receipt, err, "DocumentAdded", "documentId", s.log, "addDocument")
	}
	if err := s.documents.Update(req); err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("document_created", map[string]interface{}{
		"id":              req.ID,
		"document_type":   req.DocumentType,
		"parent":          req.Parent,
		"chain_confirmed": req.Synced(),
		"issued_by":       actor.Name,
	})
	return req, nil
}

// resolveChainProduct maps the document's parent reference to the chain id
// of the governing product: directly for product parents, through the owning
// product for shipment parents. The error return covers a missing parent.
func (s *documentService) resolveChainProduct(parent model.ParentRef) (*int64, error) {
	switch parent.Kind {
	case model.ParentProduct:
		product, err := s.products.FindByID(parent.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Resource: "product", ID: parent.ID.String()}
			}
			return nil, err
		}
		return product.BlockchainID, nil
	case model.ParentShipment:
		shipment, err := s.shipments.FindByID(parent.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Resource: "shipment", ID: parent.ID.String()}
			}
			return nil, err
		}
		product, err := s.products.FindByID(shipment.ProductID)
		if err != nil {
			return nil, err
		}
		return product.BlockchainID, nil
	}
	return nil, model.ErrDocumentParent
}

func (s *documentService) GetAll() ([]model.Document, error) {
	return s.documents.FindAll()
}

func (s *documentService) GetByID(id uuid.UUID) (*model.Document, error) {
	document, err := s.documents.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "document", ID: id.String()}
		}
		return nil, err
	}
	return document, nil
}

func (s *documentService) GetByParent(kind model.ParentKind, parentID uuid.UUID) ([]model.Document, error) {
	return s.documents.FindByParent(kind, parentID)
}

// Verify marks a document verified locally and mirrors the verification to
// the document-verification contract.
func (s *documentService) Verify(ctx context.Context, actor Actor, id uuid.UUID) (*model.Document, error) {
	if !actor.Is(model.RoleAdmin, model.RoleInspector) {
		return nil, NewAuthorizationError("user %s is not authorized to verify documents", actor.ID)
	}
	document, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if document.IsVerified {
		return nil, NewValidationError("document %s is already verified", id)
	}

	now := time.Now()
	document.IsVerified = true
	document.VerifiedByID = &actor.ID
	document.VerificationDate = &now
	document.UpdatedBy = actor.ID.String()
	if err := s.documents.Update(document); err != nil {
		return nil, err
	}

	if document.BlockchainID == nil {
		document.MarkPending(CauseNotSynced)
	} else {
		receipt, err := s.ledger.VerifyDocument(ctx, *document.BlockchainID)
		applyRemoteOutcome(&document.ChainSync, receipt, err, "", "", s.log, "verifyDocument")
	}
	if err := s.documents.Update(document); err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("document_verified", map[string]interface{}{
		"id":              document.ID,
		"chain_confirmed": document.Synced(),
		"verified_by":     actor.Name,
	})
	return document, nil
}

// Sync re-drives the remote leg for a pending document: the add itself if it
// never reached the chain, otherwise the outstanding verification.
func (s *documentService) Sync(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	document, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !document.ReconcilePending {
		return document, nil
	}
	if document.BlockchainID == nil {
		chainProductID, err := s.resolveChainProduct(document.Parent)
		if err != nil {
			return nil, err
		}
		if chainProductID == nil {
			return document, nil // parent itself still unreconciled
		}
		receipt, err := s.ledger.AddDocument(ctx, *chainProductID, document.FileHash, string(document.DocumentType))
		applyRemoteOutcome(&document.ChainSync, receipt, err, "DocumentAdded", "documentId", s.log, "addDocument")
	} else if document.IsVerified {
		receipt, err := s.ledger.VerifyDocument(ctx, *document.BlockchainID)
		applyRemoteOutcome(&document.ChainSync, receipt, err, "", "", s.log, "verifyDocument")
	}
	if err := s.documents.Update(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (s *documentService) ListPending() ([]model.Document, error) {
	return s.documents.FindReconcilePending()
}
