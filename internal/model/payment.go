package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentRefunded  PaymentStatus = "Refunded"
	PaymentDisputed  PaymentStatus = "Disputed"
	PaymentFailed    PaymentStatus = "Failed"
)

type PaymentMethod string

const (
	MethodCrypto       PaymentMethod = "Crypto"
	MethodEscrow       PaymentMethod = "Escrow"
	MethodBankTransfer PaymentMethod = "Bank Transfer"
	MethodCreditCard   PaymentMethod = "Credit Card"
	MethodOther        PaymentMethod = "Other"
)

// paymentTransitions is the legal transition table for the payment/escrow
// lifecycle. Completed and Refunded are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentCompleted, PaymentRefunded, PaymentDisputed, PaymentFailed},
	PaymentDisputed: {PaymentCompleted, PaymentRefunded},
}

// CanTransition reports whether moving from s to next is legal.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is accepted from s.
func (s PaymentStatus) Terminal() bool {
	return len(paymentTransitions[s]) == 0
}

type Payment struct {
	BaseModel
	ChainSync
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product  `json:"product,omitempty" validate:"-"`

	PayerID uuid.UUID `gorm:"type:uuid;not null" json:"payer_id" validate:"uuid_required"`
	Payer   *User     `gorm:"foreignKey:PayerID" json:"payer,omitempty" validate:"-"`
	PayeeID uuid.UUID `gorm:"type:uuid;not null" json:"payee_id" validate:"uuid_required"`
	Payee   *User     `gorm:"foreignKey:PayeeID" json:"payee,omitempty" validate:"-"`

	Amount   float64       `gorm:"not null" json:"amount" validate:"required,gt=0"`
	Currency string        `gorm:"type:varchar(10);default:'ETH'" json:"currency"`
	Status   PaymentStatus `gorm:"type:varchar(20);default:'Pending';index" json:"status"`
	Method   PaymentMethod `gorm:"type:varchar(20);default:'Crypto'" json:"payment_method"`

	// Escrow only: funds may not be released before this instant.
	ReleaseTime *time.Time `json:"release_time,omitempty"`

	PaymentDate *time.Time `json:"payment_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Notes       string     `gorm:"type:varchar(500)" json:"notes" validate:"max=500"`

	Documents []Document `gorm:"-" json:"documents,omitempty" validate:"-"`
}

// IsEscrow reports whether the payment is held under an escrow time lock.
func (p *Payment) IsEscrow() bool {
	return p.Method == MethodEscrow
}

// Releasable reports whether the escrow time lock has elapsed at ts.
func (p *Payment) Releasable(ts time.Time) bool {
	return p.ReleaseTime == nil || !ts.Before(*p.ReleaseTime)
}
