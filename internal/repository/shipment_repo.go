package repository

import (
	"go-supplychain-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShipmentRepository interface {
	Create(shipment *model.Shipment) error
	FindAll() ([]model.Shipment, error)
	FindByID(id uuid.UUID) (*model.Shipment, error)
	FindByTrackingNumber(trackingNumber string) (*model.Shipment, error)
	FindByProduct(productID uuid.UUID) ([]model.Shipment, error)
	Update(shipment *model.Shipment) error
	AppendLocationUpdate(update *model.ShipmentUpdate) error
	FindReconcilePending() ([]model.Shipment, error)
}

type shipmentRepo struct {
	db *gorm.DB
}

func NewShipmentRepo(db *gorm.DB) ShipmentRepository {
	return &shipmentRepo{db}
}

func (r *shipmentRepo) Create(shipment *model.Shipment) error {
	return r.db.Create(shipment).Error
}

func (r *shipmentRepo) FindAll() ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := r.db.Preload("Product").Order("created_at DESC").Find(&shipments).Error
	return shipments, err
}

func (r *shipmentRepo) FindByID(id uuid.UUID) (*model.Shipment, error) {
	var shipment model.Shipment
	err := r.db.Preload("Product").
		Preload("LocationUpdates", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		First(&shipment, "id = ?", id).Error
	return &shipment, err
}

func (r *shipmentRepo) FindByTrackingNumber(trackingNumber string) (*model.Shipment, error) {
	var shipment model.Shipment
	err := r.db.First(&shipment, "tracking_number = ?", trackingNumber).Error
	return &shipment, err
}

func (r *shipmentRepo) FindByProduct(productID uuid.UUID) ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := r.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&shipments).Error
	return shipments, err
}

func (r *shipmentRepo) Update(shipment *model.Shipment) error {
	return r.db.Save(shipment).Error
}

// AppendLocationUpdate inserts one row into the append-only location log.
// Existing rows are never touched.
func (r *shipmentRepo) AppendLocationUpdate(update *model.ShipmentUpdate) error {
	return r.db.Create(update).Error
}

func (r *shipmentRepo) FindReconcilePending() ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := r.db.Where("reconcile_pending = ?", true).Find(&shipments).Error
	return shipments, err
}
