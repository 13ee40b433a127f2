package chain

import "go-supplychain-ledger/internal/model"

// EntityKind selects which status vocabulary a code belongs to.
type EntityKind int

const (
	KindProduct EntityKind = iota
	KindShipment
	KindPayment
)

// The contracts store status as a compact uint8 enum; the off-chain records
// use named statuses. The mapping is total in both directions: any unknown
// status encodes to 0 and any unknown code decodes to the kind's zero status.
// The leniency is deliberate, a record carrying a status this build does not
// know about should still round-trip through the ledger instead of failing.

var productCodes = map[model.ProductStatus]uint8{
	model.ProductCreated:   0,
	model.ProductInTransit: 1,
	model.ProductDelivered: 2,
	model.ProductRejected:  3,
}

var shipmentCodes = map[model.ShipmentStatus]uint8{
	model.ShipmentPending:   0,
	model.ShipmentInTransit: 1,
	model.ShipmentDelivered: 2,
	model.ShipmentDelayed:   3,
	model.ShipmentCancelled: 4,
}

var paymentCodes = map[model.PaymentStatus]uint8{
	model.PaymentPending:   0,
	model.PaymentCompleted: 1,
	model.PaymentRefunded:  2,
	model.PaymentDisputed:  3,
	model.PaymentFailed:    4,
}

// ProductStatusCode maps an off-chain product status to its contract code.
func ProductStatusCode(s model.ProductStatus) uint8 {
	return productCodes[s]
}

// ShipmentStatusCode maps an off-chain shipment status to its contract code.
func ShipmentStatusCode(s model.ShipmentStatus) uint8 {
	return shipmentCodes[s]
}

// PaymentStatusCode maps an off-chain payment status to its contract code.
func PaymentStatusCode(s model.PaymentStatus) uint8 {
	return paymentCodes[s]
}

// ProductStatusFromCode decodes a contract code; unknown codes decode to
// Created.
func ProductStatusFromCode(code uint8) model.ProductStatus {
	for s, c := range productCodes {
		if c == code {
			return s
		}
	}
	return model.ProductCreated
}

// ShipmentStatusFromCode decodes a contract code; unknown codes decode to
// Pending.
func ShipmentStatusFromCode(code uint8) model.ShipmentStatus {
	for s, c := range shipmentCodes {
		if c == code {
			return s
		}
	}
	return model.ShipmentPending
}

// PaymentStatusFromCode decodes a contract code; unknown codes decode to
// Pending.
func PaymentStatusFromCode(code uint8) model.PaymentStatus {
	for s, c := range paymentCodes {
		if c == code {
			return s
		}
	}
	return model.PaymentPending
}

// ToChainCode maps any off-chain status for the given kind to its contract
// code. The status is passed as its string form so callers holding either
// enum type can use the generic entry point.
func ToChainCode(kind EntityKind, status string) uint8 {
	switch kind {
	case KindProduct:
		return ProductStatusCode(model.ProductStatus(status))
	case KindShipment:
		return ShipmentStatusCode(model.ShipmentStatus(status))
	case KindPayment:
		return PaymentStatusCode(model.PaymentStatus(status))
	}
	return 0
}

// FromChainCode decodes a contract code for the given kind into the named
// off-chain status.
func FromChainCode(kind EntityKind, code uint8) string {
	switch kind {
	case KindProduct:
		return string(ProductStatusFromCode(code))
	case KindShipment:
		return string(ShipmentStatusFromCode(code))
	case KindPayment:
		return string(PaymentStatusFromCode(code))
	}
	return ""
}
