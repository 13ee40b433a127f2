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

type ShipmentService interface {
	Create(ctx context.Context, actor Actor, req *model.Shipment) (*model.Shipment, error)
	GetAll() ([]model.Shipment, error)
	GetByID(id uuid.UUID) (*model.Shipment, error)
	AddLocationUpdate(ctx context.Context, actor Actor, id uuid.UUID, location, notes string) (*model.Shipment, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.ShipmentStatus, location, notes string) (*model.Shipment, error)
	Sync(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	ListPending() ([]model.Shipment, error)
}

type shipmentService struct {
	shipments repository.ShipmentRepository
	products  repository.ProductRepository
	ledger    Ledger
	hub       *ws.Hub
	log       *zap.Logger
}

func NewShipmentService(shipments repository.ShipmentRepository, products repository.ProductRepository, ledger Ledger, hub *ws.Hub, log *zap.Logger) ShipmentService {
	return &shipmentService{shipments: shipments, products: products, ledger: ledger, hub: hub, log: log}
}

// Create records a new shipment. Creation itself has no ledger counterpart;
// the chain record fills in as location updates are mirrored.
func (s *shipmentService) Create(ctx context.Context, actor Actor, req *model.Shipment) (*model.Shipment, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if _, err := s.products.FindByID(req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: req.ProductID.String()}
		}
		return nil, err
	}
	req.Status = model.ShipmentPending
	req.CurrentLocation = req.Origin
	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()
	if err := s.shipments.Create(req); err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("shipment_created", map[string]interface{}{
		"id":              req.ID,
		"tracking_number": req.TrackingNumber,
		"product_id":      req.ProductID,
		"created_by":      actor.Name,
	})
	return req, nil
}

func (s *shipmentService) GetAll() ([]model.Shipment, error) {
	return s.shipments.FindAll()
}

func (s *shipmentService) GetByID(id uuid.UUID) (*model.Shipment, error) {
	shipment, err := s.shipments.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "shipment", ID: id.String()}
		}
		return nil, err
	}
	return shipment, nil
}

// AddLocationUpdate appends to the shipment's location log (never mutating
// previous entries) and mirrors the update onto the product's chain record.
func (s *shipmentService) AddLocationUpdate(ctx context.Context, actor Actor, id uuid.UUID, location, notes string) (*model.Shipment, error) {
	if location == "" {
		return nil, NewValidationError("please provide a location")
	}
	shipment, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	update := &model.ShipmentUpdate{
		ShipmentID:  shipment.ID,
		Location:    location,
		Notes:       notes,
		UpdatedByID: actor.ID,
	}
	if err := s.shipments.AppendLocationUpdate(update); err != nil {
		return nil, err
	}
	shipment.CurrentLocation = location
	shipment.UpdatedBy = actor.ID.String()
	if err := s.shipments.Update(shipment); err != nil {
		return nil, err
	}

	s.mirrorUpdate(ctx, shipment, location, notes)
	if err := s.shipments.Update(shipment); err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("shipment_location_updated", map[string]interface{}{
		"id":              shipment.ID,
		"location":        location,
		"chain_confirmed": shipment.Synced(),
		"updated_by":      actor.Name,
	})
	return shipment, nil
}

// UpdateStatus advances the shipment status and mirrors it with the current
// location onto the product's chain record.
func (s *shipmentService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.ShipmentStatus, location, notes string) (*model.Shipment, error) {
	switch status {
	case model.ShipmentPending, model.ShipmentInTransit, model.ShipmentDelivered,
		model.ShipmentDelayed, model.ShipmentCancelled:
	default:
		return nil, NewValidationError("unknown shipment status %q", status)
	}
	shipment, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	shipment.Status = status
	if location != "" {
		shipment.CurrentLocation = location
	}
	shipment.UpdatedBy = actor.ID.String()
	if err := s.shipments.Update(shipment); err != nil {
		return nil, err
	}
	if location != "" {
		update := &model.ShipmentUpdate{
			ShipmentID:  shipment.ID,
			Location:    location,
			Notes:       notes,
			UpdatedByID: actor.ID,
		}
		if err := s.shipments.AppendLocationUpdate(update); err != nil {
			return nil, err
		}
	}

	s.mirrorUpdate(ctx, shipment, shipment.CurrentLocation, notes)
	if err := s.shipments.Update(shipment); err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("shipment_status_updated", map[string]interface{}{
		"id":              shipment.ID,
		"status":          shipment.Status,
		"chain_confirmed": shipment.Synced(),
		"updated_by":      actor.Name,
	})
	return shipment, nil
}

// mirrorUpdate attempts the single remote leg for a shipment mutation. The
// chain keys shipment history by the product's chain id.
func (s *shipmentService) mirrorUpdate(ctx context.Context, shipment *model.Shipment, location, notes string) {
	product, err := s.products.FindByID(shipment.ProductID)
	if err != nil || product.BlockchainID == nil {
		shipment.MarkPending(CauseNotSynced)
		return
	}
	if notes == "" {
		notes = "Shipment update"
	}
	receipt, err := s.ledger.AddShipmentUpdate(ctx, *product.BlockchainID, location, notes,
		chain.ShipmentStatusCode(shipment.Status))
	applyRemoteOutcome(&shipment.ChainSync, receipt, err, "", "", s.log, "addShipmentUpdate")
}

// Sync replays the latest shipment state onto the ledger for a record still
// marked pending.
func (s *shipmentService) Sync(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	shipment, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !shipment.ReconcilePending {
		return shipment, nil
	}
	s.mirrorUpdate(ctx, shipment, shipment.CurrentLocation, "Reconciliation replay")
	if err := s.shipments.Update(shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *shipmentService) ListPending() ([]model.Shipment, error) {
	return s.shipments.FindReconcilePending()
}
