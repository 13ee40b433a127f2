package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-supplychain-ledger/internal/model"
)

func TestProductStatusRoundTrip(t *testing.T) {
	for _, s := range []model.ProductStatus{
		model.ProductCreated, model.ProductInTransit, model.ProductDelivered, model.ProductRejected,
	} {
		assert.Equal(t, s, ProductStatusFromCode(ProductStatusCode(s)), "status %s", s)
	}
}

func TestShipmentStatusRoundTrip(t *testing.T) {
	for _, s := range []model.ShipmentStatus{
		model.ShipmentPending, model.ShipmentInTransit, model.ShipmentDelivered,
		model.ShipmentDelayed, model.ShipmentCancelled,
	} {
		assert.Equal(t, s, ShipmentStatusFromCode(ShipmentStatusCode(s)), "status %s", s)
	}
}

func TestPaymentStatusRoundTrip(t *testing.T) {
	for _, s := range []model.PaymentStatus{
		model.PaymentPending, model.PaymentCompleted, model.PaymentRefunded,
		model.PaymentDisputed, model.PaymentFailed,
	} {
		assert.Equal(t, s, PaymentStatusFromCode(PaymentStatusCode(s)), "status %s", s)
	}
}

func TestUnknownStatusEncodesToZero(t *testing.T) {
	assert.Equal(t, uint8(0), ProductStatusCode(model.ProductStatus("Quarantined")))
	assert.Equal(t, uint8(0), ShipmentStatusCode(model.ShipmentStatus("Lost")))
	assert.Equal(t, uint8(0), PaymentStatusCode(model.PaymentStatus("Chargeback")))
}

func TestUnknownCodeDecodesToZeroStatus(t *testing.T) {
	assert.Equal(t, model.ProductCreated, ProductStatusFromCode(200))
	assert.Equal(t, model.ShipmentPending, ShipmentStatusFromCode(200))
	assert.Equal(t, model.PaymentPending, PaymentStatusFromCode(200))
}

func TestGenericCodeMapping(t *testing.T) {
	assert.Equal(t, uint8(2), ToChainCode(KindProduct, string(model.ProductDelivered)))
	assert.Equal(t, uint8(3), ToChainCode(KindShipment, string(model.ShipmentDelayed)))
	assert.Equal(t, uint8(1), ToChainCode(KindPayment, string(model.PaymentCompleted)))

	assert.Equal(t, string(model.ProductDelivered), FromChainCode(KindProduct, 2))
	assert.Equal(t, string(model.ShipmentDelayed), FromChainCode(KindShipment, 3))
	assert.Equal(t, string(model.PaymentCompleted), FromChainCode(KindPayment, 1))
}
