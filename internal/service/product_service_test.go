package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-supplychain-ledger/internal/chain"
	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/ws"
)

func newProductFixture() (*memProducts, *fakeLedger, ProductService) {
	products := newMemProducts()
	ledger := &fakeLedger{}
	svc := NewProductService(products, ledger, ws.NewHub(), zap.NewNop())
	return products, ledger, svc
}

func manufacturerActor() Actor {
	return Actor{ID: uuid.New(), Email: "maker@example.com", Name: "Maker", Role: model.RoleManufacturer}
}

func validProduct() *model.Product {
	return &model.Product{
		Name:        "Arabica Beans",
		Description: "Single-origin arabica, lot 12",
		Category:    "Coffee",
		Price:       42.5,
		Quantity:    100,
		Unit:        "kg",
	}
}

func TestProductCreateConfirmsOnChain(t *testing.T) {
	products, ledger, svc := newProductFixture()
	actor := manufacturerActor()

	created, err := svc.Create(context.Background(), actor, validProduct())
	require.NoError(t, err)

	assert.Equal(t, model.ProductCreated, created.Status)
	assert.Equal(t, actor.ID, created.ManufacturerID)
	require.NotNil(t, created.BlockchainID)
	assert.True(t, created.Synced())
	assert.NotEmpty(t, created.TxHash)
	assert.Equal(t, 1, ledger.callCount("createProduct"))

	stored, err := products.FindByID(created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Synced())
}

// A ledger outage must not abort the create: the product lands locally with
// a queryable pending marker and no chain correlation.
func TestProductCreateSurvivesLedgerOutage(t *testing.T) {
	products, ledger, svc := newProductFixture()
	ledger.err = &chain.RemoteError{Cause: chain.CauseNetwork, Op: "createProduct", Err: errors.New("connection refused")}

	created, err := svc.Create(context.Background(), manufacturerActor(), validProduct())
	require.NoError(t, err)

	assert.Nil(t, created.BlockchainID)
	assert.True(t, created.ReconcilePending)
	assert.Equal(t, string(chain.CauseNetwork), created.ReconcileCause)
	assert.False(t, created.Synced())
	// Exactly one remote attempt, no retry loop inside the service.
	assert.Equal(t, 1, ledger.totalCalls())

	stored, err := products.FindByID(created.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReconcilePending)

	pending, err := svc.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestProductCreateRequiresManufacturer(t *testing.T) {
	products, ledger, svc := newProductFixture()
	retailer := Actor{ID: uuid.New(), Role: model.RoleRetailer}

	_, err := svc.Create(context.Background(), retailer, validProduct())
	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
	assert.Zero(t, ledger.totalCalls())

	all, _ := products.FindAll()
	assert.Empty(t, all)
}

func TestProductCreateRejectsDuplicateSKU(t *testing.T) {
	products, _, svc := newProductFixture()
	seed := validProduct()
	seed.SKU = "ARA-001"
	seed.ManufacturerID = uuid.New()
	require.NoError(t, products.Create(seed))

	dup := validProduct()
	dup.SKU = "ARA-001"
	_, err := svc.Create(context.Background(), manufacturerActor(), dup)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestProductGetByIDNotFound(t *testing.T) {
	_, _, svc := newProductFixture()
	_, err := svc.GetByID(uuid.New())
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Resource)
}

func TestProductUpdateStatusMirrorsToLedger(t *testing.T) {
	products, ledger, svc := newProductFixture()
	actor := manufacturerActor()

	created, err := svc.Create(context.Background(), actor, validProduct())
	require.NoError(t, err)
	require.True(t, created.Synced())

	updated, err := svc.UpdateStatus(context.Background(), actor, created.ID, model.ProductInTransit, "Rotterdam", "loaded")
	require.NoError(t, err)
	assert.Equal(t, model.ProductInTransit, updated.Status)
	assert.True(t, updated.Synced())
	assert.Equal(t, 1, ledger.callCount("addShipmentUpdate"))

	stored, _ := products.FindByID(created.ID)
	assert.Equal(t, model.ProductInTransit, stored.Status)
}

func TestProductUpdateStatusRequiresLocation(t *testing.T) {
	_, ledger, svc := newProductFixture()
	_, err := svc.UpdateStatus(context.Background(), manufacturerActor(), uuid.New(), model.ProductInTransit, "", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, ledger.totalCalls())
}

// A status move on a product whose create never reconciled cannot reach the
// chain; it marks NotSynced without attempting a remote call.
func TestProductUpdateStatusOnUnsyncedProduct(t *testing.T) {
	products, ledger, svc := newProductFixture()
	actor := manufacturerActor()

	ledger.err = &chain.RemoteError{Cause: chain.CauseTimeout, Op: "createProduct", Err: errors.New("not mined")}
	created, err := svc.Create(context.Background(), actor, validProduct())
	require.NoError(t, err)
	require.Nil(t, created.BlockchainID)
	ledger.err = nil

	before := ledger.totalCalls()
	updated, err := svc.UpdateStatus(context.Background(), actor, created.ID, model.ProductDelivered, "Oslo", "")
	require.NoError(t, err)
	assert.Equal(t, model.ProductDelivered, updated.Status)
	assert.True(t, updated.ReconcilePending)
	assert.Equal(t, CauseNotSynced, updated.ReconcileCause)
	assert.Equal(t, before, ledger.totalCalls())

	stored, _ := products.FindByID(created.ID)
	assert.Equal(t, CauseNotSynced, stored.ReconcileCause)
}

func TestProductSyncClearsPendingMarker(t *testing.T) {
	_, ledger, svc := newProductFixture()
	actor := manufacturerActor()

	ledger.err = &chain.RemoteError{Cause: chain.CauseNetwork, Op: "createProduct", Err: errors.New("connection refused")}
	created, err := svc.Create(context.Background(), actor, validProduct())
	require.NoError(t, err)
	require.True(t, created.ReconcilePending)

	// Ledger back online; the sweep re-drives the create.
	ledger.err = nil
	synced, err := svc.Sync(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, synced.Synced())
	require.NotNil(t, synced.BlockchainID)
	assert.False(t, synced.ReconcilePending)
	assert.Empty(t, synced.ReconcileCause)

	pending, err := svc.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProductSyncIsNoopWhenClean(t *testing.T) {
	_, ledger, svc := newProductFixture()
	created, err := svc.Create(context.Background(), manufacturerActor(), validProduct())
	require.NoError(t, err)

	before := ledger.totalCalls()
	_, err = svc.Sync(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, before, ledger.totalCalls())
}

func TestProductUpdateOwnership(t *testing.T) {
	_, _, svc := newProductFixture()
	owner := manufacturerActor()
	created, err := svc.Create(context.Background(), owner, validProduct())
	require.NoError(t, err)

	other := Actor{ID: uuid.New(), Role: model.RoleManufacturer}
	patch := validProduct()
	patch.Name = "Robusta Beans"
	_, err = svc.Update(context.Background(), other, created.ID, patch)
	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)

	updated, err := svc.Update(context.Background(), owner, created.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Robusta Beans", updated.Name)
}
