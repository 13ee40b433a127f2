package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-supplychain-ledger/internal/chain"
	"go-supplychain-ledger/internal/service"
)

// ChainHandler exposes ledger diagnostics, the reconciliation-pending query
// and the per-record sync endpoints an external retry sweep drives.
type ChainHandler struct {
	gateway   *chain.Gateway
	products  service.ProductService
	shipments service.ShipmentService
	documents service.DocumentService
	payments  service.PaymentService
}

func NewChainHandler(gateway *chain.Gateway, products service.ProductService, shipments service.ShipmentService, documents service.DocumentService, payments service.PaymentService) *ChainHandler {
	return &ChainHandler{
		gateway:   gateway,
		products:  products,
		shipments: shipments,
		documents: documents,
		payments:  payments,
	}
}

func (h *ChainHandler) GetInfo(c *fiber.Ctx) error {
	if h.gateway == nil {
		return c.Status(503).JSON(fiber.Map{"success": false, "error": "Ledger connection not configured"})
	}
	info, err := h.gateway.Info(c.Context())
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": info})
}

// GetPending lists every record still carrying a reconciliation marker,
// grouped by entity. This is the queryable state a retry sweep runs on.
func (h *ChainHandler) GetPending(c *fiber.Ctx) error {
	products, err := h.products.ListPending()
	if err != nil {
		return respondErr(c, err)
	}
	shipments, err := h.shipments.ListPending()
	if err != nil {
		return respondErr(c, err)
	}
	documents, err := h.documents.ListPending()
	if err != nil {
		return respondErr(c, err)
	}
	payments, err := h.payments.ListPending()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(products) + len(shipments) + len(documents) + len(payments),
		"data": fiber.Map{
			"products":  products,
			"shipments": shipments,
			"documents": documents,
			"payments":  payments,
		},
	})
}

func (h *ChainHandler) SyncProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid product ID"})
	}
	product, err := h.products.Sync(c.Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": product, "chain": chainMeta(product.ChainSync)})
}

func (h *ChainHandler) SyncShipment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid shipment ID"})
	}
	shipment, err := h.shipments.Sync(c.Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shipment, "chain": chainMeta(shipment.ChainSync)})
}

func (h *ChainHandler) SyncDocument(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid document ID"})
	}
	document, err := h.documents.Sync(c.Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": document, "chain": chainMeta(document.ChainSync)})
}

func (h *ChainHandler) SyncPayment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid payment ID"})
	}
	payment, err := h.payments.Sync(c.Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": payment, "chain": chainMeta(payment.ChainSync)})
}
