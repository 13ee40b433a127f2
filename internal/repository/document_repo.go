package repository

import (
	"go-supplychain-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(document *model.Document) error
	FindAll() ([]model.Document, error)
	FindByID(id uuid.UUID) (*model.Document, error)
	FindByParent(kind model.ParentKind, parentID uuid.UUID) ([]model.Document, error)
	Update(document *model.Document) error
	FindReconcilePending() ([]model.Document, error)
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db}
}

func (r *documentRepo) Create(document *model.Document) error {
	return r.db.Create(document).Error
}

func (r *documentRepo) FindAll() ([]model.Document, error) {
	var documents []model.Document
	err := r.db.Preload("IssuedBy").Order("created_at DESC").Find(&documents).Error
	return documents, err
}

func (r *documentRepo) FindByID(id uuid.UUID) (*model.Document, error) {
	var document model.Document
	err := r.db.Preload("IssuedBy").First(&document, "id = ?", id).Error
	return &document, err
}

func (r *documentRepo) FindByParent(kind model.ParentKind, parentID uuid.UUID) ([]model.Document, error) {
	var documents []model.Document
	err := r.db.Where("parent_kind = ? AND parent_id = ?", kind, parentID).
		Order("created_at DESC").Find(&documents).Error
	return documents, err
}

func (r *documentRepo) Update(document *model.Document) error {
	return r.db.Save(document).Error
}

func (r *documentRepo) FindReconcilePending() ([]model.Document, error) {
	var documents []model.Document
	err := r.db.Where("reconcile_pending = ?", true).Find(&documents).Error
	return documents, err
}
