package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-supplychain-ledger/internal/chain"
	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/repository"
	"go-supplychain-ledger/internal/ws"
	"go-supplychain-ledger/pkg/validator"
)

type ProductService interface {
	Create(ctx context.Context, actor Actor, req *model.Product) (*model.Product, error)
	GetAll() ([]model.Product, error)
	GetByID(id uuid.UUID) (*model.Product, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *model.Product) (*model.Product, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.ProductStatus, location, notes string) (*model.Product, error)
	Sync(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListPending() ([]model.Product, error)
}

type productService struct {
	products repository.ProductRepository
	ledger   Ledger
	hub      *ws.Hub
	log      *zap.Logger
}

func NewProductService(products repository.ProductRepository, ledger Ledger, hub *ws.Hub, log *zap.Logger) ProductService {
	return &productService{products: products, ledger: ledger, hub: hub, log: log}
}

// Create performs the local-then-remote sequence: the product is durable in
// the record store before the ledger is attempted, and a ledger failure only
// leaves a reconciliation marker behind.
func (s *productService) Create(ctx context.Context, actor Actor, req *model.Product) (*model.Product, error) {
	if !actor.Is(model.RoleManufacturer, model.RoleAdmin) {
		return nil, NewAuthorizationError("user %s is not authorized to create a product", actor.ID)
	}
	req.ManufacturerID = actor.ID
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if req.SKU != "" {
		existing, err := s.products.FindBySKU(req.SKU)
		if err == nil && existing.ID != uuid.Nil {
			return nil, NewValidationError("SKU %s already exists", req.SKU)
		}
	}
	req.Status = model.ProductCreated
	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()

	if err := s.products.Create(req); err != nil {
		return nil, err
	}

	// Remote leg: exactly one attempt.
	receipt, err := s.submitCreate(ctx, req)
	applyRemoteOutcome(&req.ChainSync, receipt, err, "ProductCreated", "productId", s.log, "createProduct")
	if err := s.products.Update(req); err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("product_created", map[string]interface{}{
		"id":              req.ID,
		"sku":             req.SKU,
		"name":            req.Name,
		"status":          req.Status,
		"chain_confirmed": req.Synced(),
		"created_by":      actor.Name,
	})
	return req, nil
}

func (s *productService) submitCreate(ctx context.Context, p *model.Product) (*chain.Receipt, error) {
	return s.ledger.CreateProduct(ctx, p.Name, p.Description, chain.ToWei(p.Price))
}

func (s *productService) GetAll() ([]model.Product, error) {
	return s.products.FindAll()
}

func (s *productService) GetByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: id.String()}
		}
		return nil, err
	}
	return product, nil
}

// Update mutates the descriptive fields only; status moves through
// UpdateStatus so the correlated shipment update reaches the ledger.
func (s *productService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *model.Product) (*model.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.ManufacturerID != actor.ID && !actor.Is(model.RoleAdmin) {
		return nil, NewAuthorizationError("user %s is not authorized to update this product", actor.ID)
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Category = req.Category
	product.Price = req.Price
	product.Quantity = req.Quantity
	product.Unit = req.Unit
	product.BatchNumber = req.BatchNumber
	product.ExpiryDate = req.ExpiryDate
	product.UpdatedBy = actor.ID.String()

	if errs := validator.ValidateStruct(product); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if err := s.products.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete tombstones the product. Records correlated to an on-chain entry are
// never physically removed; the soft delete keeps the chain id resolvable.
func (s *productService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	product, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if product.ManufacturerID != actor.ID && !actor.Is(model.RoleAdmin) {
		return NewAuthorizationError("user %s is not authorized to delete this product", actor.ID)
	}
	return s.products.Delete(id, actor.ID.String())
}

// UpdateStatus advances the product status locally and mirrors the move to
// the ledger as a shipment update on the product's chain record.
func (s *productService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.ProductStatus, location, notes string) (*model.Product, error) {
	if location == "" {
		return nil, NewValidationError("please provide status and location")
	}
	switch status {
	case model.ProductCreated, model.ProductInTransit, model.ProductDelivered, model.ProductRejected:
	default:
		return nil, NewValidationError("unknown product status %q", status)
	}
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.ManufacturerID != actor.ID && !actor.Is(model.RoleAdmin, model.RoleDistributor) {
		return nil, NewAuthorizationError("user %s is not authorized to update this product", actor.ID)
	}

	product.Status = status
	product.UpdatedBy = actor.ID.String()
	if err := s.products.Update(product); err != nil {
		return nil, err
	}

	if notes == "" {
		notes = "Status update"
	}
	if product.BlockchainID == nil {
		// Cannot correlate the move until the create itself reconciles.
		product.MarkPending(CauseNotSynced)
	} else {
		receipt, err := s.ledger.AddShipmentUpdate(ctx, *product.BlockchainID, location, notes,
			chain.ProductStatusCode(status))
		applyRemoteOutcome(&product.ChainSync, receipt, err, "", "", s.log, "addShipmentUpdate")
	}
	if err := s.products.Update(product); err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("product_status_updated", map[string]interface{}{
		"id":              product.ID,
		"status":          product.Status,
		"location":        location,
		"chain_confirmed": product.Synced(),
		"updated_by":      actor.Name,
	})
	return product, nil
}

// Sync re-drives the remote leg for a product still carrying a
// reconciliation marker. It is the unit of work an external retry sweep
// schedules; the service itself never retries on its own.
func (s *productService) Sync(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !product.ReconcilePending {
		return product, nil
	}
	if product.BlockchainID == nil {
		receipt, err := s.submitCreate(ctx, product)
		applyRemoteOutcome(&product.ChainSync, receipt, err, "ProductCreated", "productId", s.log, "createProduct")
	} else {
		receipt, err := s.ledger.AddShipmentUpdate(ctx, *product.BlockchainID, "sync", "Reconciliation replay",
			chain.ProductStatusCode(product.Status))
		applyRemoteOutcome(&product.ChainSync, receipt, err, "", "", s.log, "addShipmentUpdate")
	}
	if err := s.products.Update(product); err != nil {
		return nil, err
	}
	if product.Synced() {
		s.hub.BroadcastEvent("product_chain_synced", map[string]interface{}{
			"id":            product.ID,
			"blockchain_id": product.BlockchainID,
			"tx_hash":       product.TxHash,
		})
	}
	return product, nil
}

func (s *productService) ListPending() ([]model.Product, error) {
	return s.products.FindReconcilePending()
}
