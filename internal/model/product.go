package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductCreated   ProductStatus = "Created"
	ProductInTransit ProductStatus = "InTransit"
	ProductDelivered ProductStatus = "Delivered"
	ProductRejected  ProductStatus = "Rejected"
)

type Product struct {
	BaseModel
	ChainSync
	Name        string        `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Description string        `gorm:"type:varchar(500);not null" json:"description" validate:"required,max=500"`
	SKU         string        `gorm:"type:varchar(50);uniqueIndex" json:"sku"`
	BatchNumber string        `gorm:"type:varchar(50)" json:"batch_number"`
	Category    string        `gorm:"type:varchar(100);not null" json:"category" validate:"required"`
	Price       float64       `gorm:"not null" json:"price" validate:"required,gt=0"`
	Quantity    int           `gorm:"default:1" json:"quantity" validate:"gte=1"`
	Unit        string        `gorm:"type:varchar(20);default:'piece'" json:"unit"`
	Status      ProductStatus `gorm:"type:varchar(20);default:'Created'" json:"status"`

	ManufactureDate time.Time  `json:"manufacture_date"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`

	// Owning actor
	ManufacturerID uuid.UUID `gorm:"type:uuid;not null" json:"manufacturer_id" validate:"uuid_required"`
	Manufacturer   *User     `gorm:"foreignKey:ManufacturerID" json:"manufacturer,omitempty" validate:"-"`

	// Relations
	Shipments []Shipment `json:"shipments,omitempty" validate:"-"`
	Documents []Document `gorm:"-" json:"documents,omitempty" validate:"-"`
	Payments  []Payment  `json:"payments,omitempty" validate:"-"`
}

// Generate SKU before save if not provided, mirroring the batch labelling
// convention used on the shop floor (prefix from name + timestamp suffix).
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.SKU == "" && p.Name != "" {
		prefix := strings.ToUpper(p.Name)
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		p.SKU = fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()%1_000_000_000)
	}
	if p.ManufactureDate.IsZero() {
		p.ManufactureDate = time.Now()
	}
	return nil
}
