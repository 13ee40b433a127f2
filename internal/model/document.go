package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentType string

const (
	DocCertificateOfOrigin      DocumentType = "Certificate of Origin"
	DocQualityInspection        DocumentType = "Quality Inspection"
	DocCustomsDeclaration       DocumentType = "Customs Declaration"
	DocBillOfLading             DocumentType = "Bill of Lading"
	DocInvoice                  DocumentType = "Invoice"
	DocPackingList              DocumentType = "Packing List"
	DocInsuranceCertificate     DocumentType = "Insurance Certificate"
	DocPhytosanitaryCertificate DocumentType = "Phytosanitary Certificate"
	DocOther                    DocumentType = "Other"
)

// ParentKind tags which entity a document belongs to. A document belongs to
// exactly one of {product, shipment}; the tagged pair replaces the two
// nullable references the legacy schema used, so "exactly one" holds by
// construction as long as the pair is validated together.
type ParentKind string

const (
	ParentProduct  ParentKind = "product"
	ParentShipment ParentKind = "shipment"
)

// ErrDocumentParent is returned when a document references neither or an
// unknown parent kind.
var ErrDocumentParent = errors.New("document must reference exactly one product or shipment")

// ParentRef is the tagged reference to a document's owning entity.
type ParentRef struct {
	Kind ParentKind `gorm:"type:varchar(10);not null;index:idx_doc_parent" json:"kind" validate:"required,oneof=product shipment"`
	ID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_doc_parent" json:"id" validate:"uuid_required"`
}

// Validate checks the exactly-one-parent invariant.
func (r ParentRef) Validate() error {
	if r.ID == uuid.Nil {
		return ErrDocumentParent
	}
	switch r.Kind {
	case ParentProduct, ParentShipment:
		return nil
	default:
		return ErrDocumentParent
	}
}

type Document struct {
	BaseModel
	ChainSync
	Name         string       `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	DocumentType DocumentType `gorm:"type:varchar(50);not null" json:"document_type" validate:"required"`

	Parent ParentRef `gorm:"embedded;embeddedPrefix:parent_" json:"parent"`

	FileURL  string `gorm:"type:varchar(500)" json:"file_url"`
	FileHash string `gorm:"type:varchar(128);not null" json:"file_hash" validate:"required"`

	IsVerified       bool       `gorm:"default:false" json:"is_verified"`
	VerifiedByID     *uuid.UUID `gorm:"type:uuid" json:"verified_by_id,omitempty"`
	VerificationDate *time.Time `json:"verification_date,omitempty"`

	IssueDate  time.Time  `json:"issue_date"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	IssuedByID uuid.UUID  `gorm:"type:uuid;not null" json:"issued_by_id" validate:"uuid_required"`
	IssuedBy   *User      `gorm:"foreignKey:IssuedByID" json:"issued_by,omitempty" validate:"-"`

	Notes string `gorm:"type:varchar(500)" json:"notes" validate:"max=500"`
}

// The parent invariant is enforced again at the persistence boundary so a
// document can never be written without a well-formed owner, regardless of
// which code path performs the write.
func (d *Document) BeforeSave(tx *gorm.DB) error {
	if err := d.Parent.Validate(); err != nil {
		return err
	}
	if d.IssueDate.IsZero() {
		d.IssueDate = time.Now()
	}
	return nil
}

// ValidDocumentType reports whether t is one of the closed enumeration.
func ValidDocumentType(t DocumentType) bool {
	switch t {
	case DocCertificateOfOrigin, DocQualityInspection, DocCustomsDeclaration,
		DocBillOfLading, DocInvoice, DocPackingList, DocInsuranceCertificate,
		DocPhytosanitaryCertificate, DocOther:
		return true
	}
	return false
}
