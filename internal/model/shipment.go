package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "Pending"
	ShipmentInTransit ShipmentStatus = "InTransit"
	ShipmentDelivered ShipmentStatus = "Delivered"
	ShipmentDelayed   ShipmentStatus = "Delayed"
	ShipmentCancelled ShipmentStatus = "Cancelled"
)

type Shipment struct {
	BaseModel
	ChainSync
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product  `json:"product,omitempty" validate:"-"`

	Origin         string         `gorm:"type:varchar(255);not null" json:"origin" validate:"required"`
	Destination    string         `gorm:"type:varchar(255);not null" json:"destination" validate:"required"`
	Carrier        string         `gorm:"type:varchar(255);not null" json:"carrier" validate:"required"`
	TrackingNumber string         `gorm:"type:varchar(50);uniqueIndex" json:"tracking_number"`
	Status         ShipmentStatus `gorm:"type:varchar(20);default:'Pending'" json:"status"`

	EstimatedDepartureDate time.Time  `json:"estimated_departure_date" validate:"required"`
	ActualDepartureDate    *time.Time `json:"actual_departure_date,omitempty"`
	EstimatedArrivalDate   time.Time  `json:"estimated_arrival_date" validate:"required"`
	ActualArrivalDate      *time.Time `json:"actual_arrival_date,omitempty"`
	CurrentLocation        string     `gorm:"type:varchar(255)" json:"current_location"`

	// Append-only audit trail; rows are only ever inserted, never updated.
	LocationUpdates []ShipmentUpdate `json:"location_updates,omitempty" validate:"-"`
	Documents       []Document       `gorm:"-" json:"documents,omitempty" validate:"-"`
}

// ShipmentUpdate is a single entry in a shipment's location log. It is the
// off-chain analog of the contract's shipment event log.
type ShipmentUpdate struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ShipmentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"shipment_id"`
	Location    string    `gorm:"type:varchar(255);not null" json:"location" validate:"required"`
	Notes       string    `gorm:"type:varchar(500)" json:"notes"`
	Timestamp   time.Time `json:"timestamp"`
	UpdatedByID uuid.UUID `gorm:"type:uuid" json:"updated_by_id"`
}

func (u *ShipmentUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now()
	}
	return nil
}

// Generate tracking number before save if not provided
func (s *Shipment) BeforeSave(tx *gorm.DB) error {
	if s.TrackingNumber == "" {
		s.TrackingNumber = fmt.Sprintf("SHP%d%06d", time.Now().Unix()%1_000_000, rand.Intn(1_000_000))
	}
	return nil
}
