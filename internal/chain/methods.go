package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Typed wrappers over Submit/Call for the full contract method surface.
// Services depend on the narrow interfaces they need, not on *Gateway.

func (g *Gateway) CreateProduct(ctx context.Context, name, description string, priceWei *big.Int) (*Receipt, error) {
	return g.Submit(ctx, ContractSupplyChain, "createProduct", SubmitOpts{}, name, description, priceWei)
}

func (g *Gateway) AddShipmentUpdate(ctx context.Context, productID int64, location, notes string, statusCode uint8) (*Receipt, error) {
	return g.Submit(ctx, ContractSupplyChain, "addShipmentUpdate", SubmitOpts{},
		big.NewInt(productID), location, notes, statusCode)
}

func (g *Gateway) AddDocument(ctx context.Context, productID int64, fileHash, documentType string) (*Receipt, error) {
	return g.Submit(ctx, ContractDocuments, "addDocument", SubmitOpts{},
		big.NewInt(productID), fileHash, documentType)
}

func (g *Gateway) VerifyDocument(ctx context.Context, documentID int64) (*Receipt, error) {
	return g.Submit(ctx, ContractDocuments, "verifyDocument", SubmitOpts{}, big.NewInt(documentID))
}

func (g *Gateway) CreatePayment(ctx context.Context, productID int64, payee common.Address, amountWei *big.Int) (*Receipt, error) {
	return g.Submit(ctx, ContractPayments, "createPayment", SubmitOpts{Value: amountWei},
		big.NewInt(productID), payee)
}

func (g *Gateway) CompletePayment(ctx context.Context, paymentID int64) (*Receipt, error) {
	return g.Submit(ctx, ContractPayments, "completePayment", SubmitOpts{}, big.NewInt(paymentID))
}

func (g *Gateway) RefundPayment(ctx context.Context, paymentID int64) (*Receipt, error) {
	return g.Submit(ctx, ContractPayments, "refundPayment", SubmitOpts{}, big.NewInt(paymentID))
}

func (g *Gateway) DisputePayment(ctx context.Context, paymentID int64, reason string) (*Receipt, error) {
	return g.Submit(ctx, ContractPayments, "disputePayment", SubmitOpts{}, big.NewInt(paymentID), reason)
}

func (g *Gateway) CreateEscrow(ctx context.Context, productID int64, seller common.Address, releaseTime time.Time, amountWei *big.Int) (*Receipt, error) {
	return g.Submit(ctx, ContractPayments, "createEscrow", SubmitOpts{Value: amountWei},
		big.NewInt(productID), seller, big.NewInt(releaseTime.Unix()))
}

func (g *Gateway) ReleaseEscrow(ctx context.Context, escrowID int64) (*Receipt, error) {
	return g.Submit(ctx, ContractPayments, "releaseEscrow", SubmitOpts{}, big.NewInt(escrowID))
}

func (g *Gateway) RefundEscrow(ctx context.Context, escrowID int64) (*Receipt, error) {
	return g.Submit(ctx, ContractPayments, "refundEscrow", SubmitOpts{}, big.NewInt(escrowID))
}

// Read-only counterparts.

type ProductDetails struct {
	Name        string
	Description string
	Price       *big.Int
	Owner       common.Address
	Status      uint8
}

func (g *Gateway) GetProductDetails(ctx context.Context, productID int64) (*ProductDetails, error) {
	var out ProductDetails
	if err := g.Call(ctx, ContractSupplyChain, "getProductDetails", &out, big.NewInt(productID)); err != nil {
		return nil, err
	}
	return &out, nil
}

type DocumentDetails struct {
	ProductId    *big.Int
	DocumentHash string
	DocumentType string
	Verified     bool
	Verifier     common.Address
}

func (g *Gateway) GetDocumentDetails(ctx context.Context, documentID int64) (*DocumentDetails, error) {
	var out DocumentDetails
	if err := g.Call(ctx, ContractDocuments, "getDocumentDetails", &out, big.NewInt(documentID)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) GetProductDocuments(ctx context.Context, productID int64) ([]int64, error) {
	var out []*big.Int
	if err := g.Call(ctx, ContractDocuments, "getProductDocuments", &out, big.NewInt(productID)); err != nil {
		return nil, err
	}
	ids := make([]int64, len(out))
	for i, id := range out {
		ids[i] = id.Int64()
	}
	return ids, nil
}

type PaymentDetails struct {
	ProductId *big.Int
	Payer     common.Address
	Payee     common.Address
	Amount    *big.Int
	Status    uint8
}

func (g *Gateway) GetPaymentDetails(ctx context.Context, paymentID int64) (*PaymentDetails, error) {
	var out PaymentDetails
	if err := g.Call(ctx, ContractPayments, "getPaymentDetails", &out, big.NewInt(paymentID)); err != nil {
		return nil, err
	}
	return &out, nil
}

type EscrowDetails struct {
	ProductId   *big.Int
	Buyer       common.Address
	Seller      common.Address
	Amount      *big.Int
	ReleaseTime *big.Int
	Status      uint8
}

func (g *Gateway) GetEscrowDetails(ctx context.Context, escrowID int64) (*EscrowDetails, error) {
	var out EscrowDetails
	if err := g.Call(ctx, ContractPayments, "getEscrowDetails", &out, big.NewInt(escrowID)); err != nil {
		return nil, err
	}
	return &out, nil
}
