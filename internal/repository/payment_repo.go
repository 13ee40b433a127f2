package repository

import (
	"go-supplychain-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(payment *model.Payment) error
	FindAll() ([]model.Payment, error)
	FindByID(id uuid.UUID) (*model.Payment, error)
	FindByProduct(productID uuid.UUID) ([]model.Payment, error)
	Update(payment *model.Payment) error
	// UpdateStatusIf performs a conditional check-current-status-then-set
	// write. It reports false when the row was not in the expected `from`
	// status, which is how concurrent transitions on the same payment are
	// serialized: of two racing requests only one matches the condition.
	UpdateStatusIf(id uuid.UUID, from, to model.PaymentStatus, fields map[string]interface{}) (bool, error)
	FindReconcilePending() ([]model.Payment, error)
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepo) FindAll() ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Preload("Product").Preload("Payer").Preload("Payee").
		Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) FindByID(id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Preload("Product").Preload("Payer").Preload("Payee").
		First(&payment, "id = ?", id).Error
	return &payment, err
}

func (r *paymentRepo) FindByProduct(productID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) Update(payment *model.Payment) error {
	return r.db.Save(payment).Error
}

func (r *paymentRepo) UpdateStatusIf(id uuid.UUID, from, to model.PaymentStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *paymentRepo) FindReconcilePending() ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where("reconcile_pending = ?", true).Find(&payments).Error
	return payments, err
}
