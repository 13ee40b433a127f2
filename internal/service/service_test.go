package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-supplychain-ledger/internal/chain"
	"go-supplychain-ledger/internal/model"
)

// fakeLedger is a recording Ledger double. Setting err scripts every
// submission to fail with it; otherwise submissions succeed and creation
// calls return a receipt carrying a fresh chain-assigned id.
type fakeLedger struct {
	mu     sync.Mutex
	err    error
	nextID int64
	calls  []string
}

func (f *fakeLedger) submit(name, event, arg string) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	r := &chain.Receipt{TxHash: fmt.Sprintf("0x%064x", len(f.calls))}
	if event != "" {
		f.nextID++
		r.Events = []chain.Event{{Name: event, Args: map[string]interface{}{arg: big.NewInt(f.nextID)}}}
	}
	return r, nil
}

func (f *fakeLedger) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeLedger) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeLedger) CreateProduct(_ context.Context, name, description string, priceWei *big.Int) (*chain.Receipt, error) {
	return f.submit("createProduct", "ProductCreated", "productId")
}

func (f *fakeLedger) AddShipmentUpdate(_ context.Context, productID int64, location, notes string, statusCode uint8) (*chain.Receipt, error) {
	return f.submit("addShipmentUpdate", "", "")
}

func (f *fakeLedger) AddDocument(_ context.Context, productID int64, fileHash, documentType string) (*chain.Receipt, error) {
	return f.submit("addDocument", "DocumentAdded", "documentId")
}

func (f *fakeLedger) VerifyDocument(_ context.Context, documentID int64) (*chain.Receipt, error) {
	return f.submit("verifyDocument", "", "")
}

func (f *fakeLedger) CreatePayment(_ context.Context, productID int64, payee common.Address, amountWei *big.Int) (*chain.Receipt, error) {
	return f.submit("createPayment", "PaymentCreated", "paymentId")
}

func (f *fakeLedger) CompletePayment(_ context.Context, paymentID int64) (*chain.Receipt, error) {
	return f.submit("completePayment", "", "")
}

func (f *fakeLedger) RefundPayment(_ context.Context, paymentID int64) (*chain.Receipt, error) {
	return f.submit("refundPayment", "", "")
}

func (f *fakeLedger) DisputePayment(_ context.Context, paymentID int64, reason string) (*chain.Receipt, error) {
	return f.submit("disputePayment", "", "")
}

func (f *fakeLedger) CreateEscrow(_ context.Context, productID int64, seller common.Address, releaseTime time.Time, amountWei *big.Int) (*chain.Receipt, error) {
	return f.submit("createEscrow", "EscrowCreated", "escrowId")
}

func (f *fakeLedger) ReleaseEscrow(_ context.Context, escrowID int64) (*chain.Receipt, error) {
	return f.submit("releaseEscrow", "", "")
}

func (f *fakeLedger) RefundEscrow(_ context.Context, escrowID int64) (*chain.Receipt, error) {
	return f.submit("refundEscrow", "", "")
}

// In-memory repository doubles. Records are stored by value so reads never
// alias the caller's struct, mirroring how gorm materializes rows.

type memProducts struct {
	mu sync.Mutex
	m  map[uuid.UUID]model.Product
}

func newMemProducts() *memProducts {
	return &memProducts{m: map[uuid.UUID]model.Product{}}
}

func (r *memProducts) Create(p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.m[p.ID] = *p
	return nil
}

func (r *memProducts) FindAll() ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Product, 0, len(r.m))
	for _, p := range r.m {
		out = append(out, p)
	}
	return out, nil
}

func (r *memProducts) FindByID(id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memProducts) FindBySKU(sku string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.m {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProducts) Update(p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[p.ID] = *p
	return nil
}

func (r *memProducts) UpdateStatus(id uuid.UUID, status model.ProductStatus, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	p.UpdatedBy = updatedBy
	r.m[id] = p
	return nil
}

func (r *memProducts) Delete(id uuid.UUID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

func (r *memProducts) FindReconcilePending() ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.m {
		if p.ReconcilePending {
			out = append(out, p)
		}
	}
	return out, nil
}

type memShipments struct {
	mu      sync.Mutex
	m       map[uuid.UUID]model.Shipment
	updates []model.ShipmentUpdate
}

func newMemShipments() *memShipments {
	return &memShipments{m: map[uuid.UUID]model.Shipment{}}
}

func (r *memShipments) Create(s *model.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.m[s.ID] = *s
	return nil
}

func (r *memShipments) FindAll() ([]model.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Shipment, 0, len(r.m))
	for _, s := range r.m {
		out = append(out, s)
	}
	return out, nil
}

func (r *memShipments) FindByID(id uuid.UUID) (*model.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *memShipments) FindByTrackingNumber(trackingNumber string) (*model.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.TrackingNumber == trackingNumber {
			cp := s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memShipments) FindByProduct(productID uuid.UUID) ([]model.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Shipment
	for _, s := range r.m {
		if s.ProductID == productID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memShipments) Update(s *model.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[s.ID] = *s
	return nil
}

func (r *memShipments) AppendLocationUpdate(u *model.ShipmentUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.updates = append(r.updates, *u)
	return nil
}

func (r *memShipments) FindReconcilePending() ([]model.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Shipment
	for _, s := range r.m {
		if s.ReconcilePending {
			out = append(out, s)
		}
	}
	return out, nil
}

type memDocuments struct {
	mu sync.Mutex
	m  map[uuid.UUID]model.Document
}

func newMemDocuments() *memDocuments {
	return &memDocuments{m: map[uuid.UUID]model.Document{}}
}

func (r *memDocuments) Create(d *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.m[d.ID] = *d
	return nil
}

func (r *memDocuments) FindAll() ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Document, 0, len(r.m))
	for _, d := range r.m {
		out = append(out, d)
	}
	return out, nil
}

func (r *memDocuments) FindByID(id uuid.UUID) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *memDocuments) FindByParent(kind model.ParentKind, parentID uuid.UUID) ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Document
	for _, d := range r.m {
		if d.Parent.Kind == kind && d.Parent.ID == parentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDocuments) Update(d *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[d.ID] = *d
	return nil
}

func (r *memDocuments) FindReconcilePending() ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Document
	for _, d := range r.m {
		if d.ReconcilePending {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDocuments) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}

type memPayments struct {
	mu sync.Mutex
	m  map[uuid.UUID]model.Payment
}

func newMemPayments() *memPayments {
	return &memPayments{m: map[uuid.UUID]model.Payment{}}
}

func (r *memPayments) Create(p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.m[p.ID] = *p
	return nil
}

func (r *memPayments) FindAll() ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Payment, 0, len(r.m))
	for _, p := range r.m {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPayments) FindByID(id uuid.UUID) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memPayments) FindByProduct(productID uuid.UUID) ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Payment
	for _, p := range r.m {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPayments) Update(p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[p.ID] = *p
	return nil
}

// UpdateStatusIf mirrors the conditional UPDATE the SQL implementation runs:
// the write only lands when the row still holds the expected `from` status.
func (r *memPayments) UpdateStatusIf(id uuid.UUID, from, to model.PaymentStatus, fields map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	if v, ok := fields["updated_by"].(string); ok {
		p.UpdatedBy = v
	}
	if v, ok := fields["notes"].(string); ok {
		p.Notes = v
	}
	if v, ok := fields["payment_date"].(time.Time); ok {
		p.PaymentDate = &v
	}
	r.m[id] = p
	return true, nil
}

func (r *memPayments) FindReconcilePending() ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Payment
	for _, p := range r.m {
		if p.ReconcilePending {
			out = append(out, p)
		}
	}
	return out, nil
}

type memUsers struct {
	mu sync.Mutex
	m  map[uuid.UUID]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{m: map[uuid.UUID]model.User{}}
}

func (r *memUsers) Create(u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.m[u.ID] = *u
	return nil
}

func (r *memUsers) FindAll() ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.m))
	for _, u := range r.m {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUsers) FindByID(id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUsers) FindByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.m {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUsers) Update(u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[u.ID] = *u
	return nil
}
