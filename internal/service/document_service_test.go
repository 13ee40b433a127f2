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

type documentFixture struct {
	documents *memDocuments
	products  *memProducts
	shipments *memShipments
	ledger    *fakeLedger
	svc       DocumentService

	issuer    Actor
	inspector Actor
	product   *model.Product
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	f := &documentFixture{
		documents: newMemDocuments(),
		products:  newMemProducts(),
		shipments: newMemShipments(),
		ledger:    &fakeLedger{},
	}
	f.svc = NewDocumentService(f.documents, f.products, f.shipments, f.ledger, ws.NewHub(), zap.NewNop())

	f.issuer = Actor{ID: uuid.New(), Name: "Issuer", Role: model.RoleSupplier}
	f.inspector = Actor{ID: uuid.New(), Name: "Inspector", Role: model.RoleInspector}

	chainID := int64(21)
	f.product = &model.Product{
		Name:           "Arabica Beans",
		Description:    "Single-origin arabica",
		Category:       "Coffee",
		Price:          42.5,
		Quantity:       100,
		ManufacturerID: uuid.New(),
	}
	f.product.BlockchainID = &chainID
	require.NoError(t, f.products.Create(f.product))
	return f
}

func (f *documentFixture) documentReq(parent model.ParentRef) *model.Document {
	return &model.Document{
		Name:         "Origin certificate",
		DocumentType: model.DocCertificateOfOrigin,
		Parent:       parent,
		FileHash:     "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
	}
}

func TestDocumentCreateForProduct(t *testing.T) {
	f := newDocumentFixture(t)
	doc, err := f.svc.Create(context.Background(), f.issuer,
		f.documentReq(model.ParentRef{Kind: model.ParentProduct, ID: f.product.ID}))
	require.NoError(t, err)

	assert.Equal(t, f.issuer.ID, doc.IssuedByID)
	require.NotNil(t, doc.BlockchainID)
	assert.True(t, doc.Synced())
	assert.Equal(t, 1, f.ledger.callCount("addDocument"))
}

// The exactly-one-parent invariant rejects the request before anything is
// written, locally or remotely.
func TestDocumentCreateRejectsMissingParent(t *testing.T) {
	f := newDocumentFixture(t)
	_, err := f.svc.Create(context.Background(), f.issuer, f.documentReq(model.ParentRef{}))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, f.documents.count())
	assert.Zero(t, f.ledger.totalCalls())

	_, err = f.svc.Create(context.Background(), f.issuer,
		f.documentReq(model.ParentRef{Kind: model.ParentKind("warehouse"), ID: uuid.New()}))
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, f.documents.count())
}

func TestDocumentCreateRejectsUnknownType(t *testing.T) {
	f := newDocumentFixture(t)
	req := f.documentReq(model.ParentRef{Kind: model.ParentProduct, ID: f.product.ID})
	req.DocumentType = model.DocumentType("Diploma")
	_, err := f.svc.Create(context.Background(), f.issuer, req)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, f.documents.count())
}

func TestDocumentCreateRejectsAbsentParent(t *testing.T) {
	f := newDocumentFixture(t)
	_, err := f.svc.Create(context.Background(), f.issuer,
		f.documentReq(model.ParentRef{Kind: model.ParentProduct, ID: uuid.New()}))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Resource)
	assert.Zero(t, f.documents.count())
}

// A shipment-parented document resolves its chain correlation through the
// shipment's owning product.
func TestDocumentCreateForShipment(t *testing.T) {
	f := newDocumentFixture(t)
	shipment := &model.Shipment{
		ProductID:   f.product.ID,
		Origin:      "Santos",
		Destination: "Rotterdam",
		Carrier:     "Maersk",
	}
	require.NoError(t, f.shipments.Create(shipment))

	doc, err := f.svc.Create(context.Background(), f.issuer,
		f.documentReq(model.ParentRef{Kind: model.ParentShipment, ID: shipment.ID}))
	require.NoError(t, err)
	assert.True(t, doc.Synced())
	assert.Equal(t, 1, f.ledger.callCount("addDocument"))
}

func TestDocumentWaitsForUnsyncedProduct(t *testing.T) {
	f := newDocumentFixture(t)
	unsynced := &model.Product{
		Name:           "Robusta Beans",
		Description:    "Lot 9",
		Category:       "Coffee",
		Price:          20,
		Quantity:       50,
		ManufacturerID: uuid.New(),
	}
	require.NoError(t, f.products.Create(unsynced))

	doc, err := f.svc.Create(context.Background(), f.issuer,
		f.documentReq(model.ParentRef{Kind: model.ParentProduct, ID: unsynced.ID}))
	require.NoError(t, err)
	assert.True(t, doc.ReconcilePending)
	assert.Equal(t, CauseNotSynced, doc.ReconcileCause)
	assert.Zero(t, f.ledger.totalCalls())

	// Sweep before the product reconciles: the document stays pending.
	waiting, err := f.svc.Sync(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.True(t, waiting.ReconcilePending)
	assert.Zero(t, f.ledger.totalCalls())
}

func TestDocumentVerify(t *testing.T) {
	f := newDocumentFixture(t)
	doc, err := f.svc.Create(context.Background(), f.issuer,
		f.documentReq(model.ParentRef{Kind: model.ParentProduct, ID: f.product.ID}))
	require.NoError(t, err)

	verified, err := f.svc.Verify(context.Background(), f.inspector, doc.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	require.NotNil(t, verified.VerifiedByID)
	assert.Equal(t, f.inspector.ID, *verified.VerifiedByID)
	assert.NotNil(t, verified.VerificationDate)
	assert.Equal(t, 1, f.ledger.callCount("verifyDocument"))

	// Verification is idempotent at the API boundary: a second attempt is
	// rejected instead of re-submitting.
	_, err = f.svc.Verify(context.Background(), f.inspector, doc.ID)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, f.ledger.callCount("verifyDocument"))
}

func TestDocumentVerifyRequiresInspector(t *testing.T) {
	f := newDocumentFixture(t)
	doc, err := f.svc.Create(context.Background(), f.issuer,
		f.documentReq(model.ParentRef{Kind: model.ParentProduct, ID: f.product.ID}))
	require.NoError(t, err)

	_, err = f.svc.Verify(context.Background(), f.issuer, doc.ID)
	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
}

func TestDocumentVerifyOutageThenSync(t *testing.T) {
	f := newDocumentFixture(t)
	doc, err := f.svc.Create(context.Background(), f.issuer,
		f.documentReq(model.ParentRef{Kind: model.ParentProduct, ID: f.product.ID}))
	require.NoError(t, err)

	f.ledger.err = &chain.RemoteError{Cause: chain.CauseNetwork, Op: "verifyDocument", Err: errors.New("connection refused")}
	verified, err := f.svc.Verify(context.Background(), f.inspector, doc.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.True(t, verified.ReconcilePending)

	f.ledger.err = nil
	synced, err := f.svc.Sync(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.True(t, synced.Synced())
	assert.Equal(t, 2, f.ledger.callCount("verifyDocument"))
}
