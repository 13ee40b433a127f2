package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Supply chain actor roles
const (
	RoleAdmin        = "admin"
	RoleManufacturer = "manufacturer"
	RoleSupplier     = "supplier"
	RoleDistributor  = "distributor"
	RoleRetailer     = "retailer"
	RoleInspector    = "inspector"
)

// User represents an authenticated supply chain actor
type User struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName    string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	Company     string     `gorm:"type:varchar(255)" json:"company"`
	PhoneNumber string     `gorm:"type:varchar(20)" json:"phone_number"`
	Role        string     `gorm:"type:varchar(20);not null;default:'retailer'" json:"role" validate:"required,oneof=admin manufacturer supplier distributor retailer inspector"`
	WalletAddr  string     `gorm:"type:varchar(42)" json:"wallet_address"` // Ledger account of the actor, used as payee/seller address
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasRole checks whether the user holds one of the given roles
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Company     string     `json:"company"`
	PhoneNumber string     `json:"phone_number"`
	Role        string     `json:"role"`
	WalletAddr  string     `json:"wallet_address"`
	IsActive    bool       `json:"is_active"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Company:     u.Company,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		WalletAddr:  u.WalletAddr,
		IsActive:    u.IsActive,
		LastSeenAt:  u.LastSeenAt,
	}
}
