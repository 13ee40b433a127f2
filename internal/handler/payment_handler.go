package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/service"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var payment model.Payment
	if err := c.BodyParser(&payment); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	created, err := h.service.Create(c.Context(), actorFromCtx(c), &payment)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": created, "chain": chainMeta(created.ChainSync)})
}

// CreateEscrow is CreatePayment with the method pinned to escrow; the
// release-time parameter becomes mandatory.
func (h *PaymentHandler) CreateEscrow(c *fiber.Ctx) error {
	var payment model.Payment
	if err := c.BodyParser(&payment); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	payment.Method = model.MethodEscrow
	created, err := h.service.Create(c.Context(), actorFromCtx(c), &payment)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": created, "chain": chainMeta(created.ChainSync)})
}

func (h *PaymentHandler) GetPayments(c *fiber.Ctx) error {
	payments, err := h.service.GetAll()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(payments), "data": payments})
}

func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid payment ID"})
	}
	payment, err := h.service.GetByID(id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": payment, "chain": chainMeta(payment.ChainSync)})
}

func (h *PaymentHandler) CompletePayment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid payment ID"})
	}
	payment, err := h.service.Complete(c.Context(), actorFromCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": payment, "chain": chainMeta(payment.ChainSync)})
}

func (h *PaymentHandler) RefundPayment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid payment ID"})
	}
	payment, err := h.service.Refund(c.Context(), actorFromCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": payment, "chain": chainMeta(payment.ChainSync)})
}

type disputeRequest struct {
	Reason string `json:"reason"`
}

func (h *PaymentHandler) DisputePayment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid payment ID"})
	}
	var req disputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	payment, err := h.service.Dispute(c.Context(), actorFromCtx(c), id, req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": payment, "chain": chainMeta(payment.ChainSync)})
}

func (h *PaymentHandler) ReleaseEscrow(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid escrow ID"})
	}
	payment, err := h.service.Release(c.Context(), actorFromCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": payment, "chain": chainMeta(payment.ChainSync)})
}
