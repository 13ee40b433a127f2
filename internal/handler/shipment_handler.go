package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/service"
)

type ShipmentHandler struct {
	service service.ShipmentService
}

func NewShipmentHandler(s service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: s}
}

func (h *ShipmentHandler) CreateShipment(c *fiber.Ctx) error {
	var shipment model.Shipment
	if err := c.BodyParser(&shipment); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	created, err := h.service.Create(c.Context(), actorFromCtx(c), &shipment)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": created})
}

func (h *ShipmentHandler) GetShipments(c *fiber.Ctx) error {
	shipments, err := h.service.GetAll()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(shipments), "data": shipments})
}

func (h *ShipmentHandler) GetShipment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid shipment ID"})
	}
	shipment, err := h.service.GetByID(id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shipment, "chain": chainMeta(shipment.ChainSync)})
}

type locationUpdateRequest struct {
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

func (h *ShipmentHandler) AddLocationUpdate(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid shipment ID"})
	}
	var req locationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	shipment, err := h.service.AddLocationUpdate(c.Context(), actorFromCtx(c), id, req.Location, req.Notes)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shipment, "chain": chainMeta(shipment.ChainSync)})
}

func (h *ShipmentHandler) UpdateShipmentStatus(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid shipment ID"})
	}
	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	shipment, err := h.service.UpdateStatus(c.Context(), actorFromCtx(c), id,
		model.ShipmentStatus(req.Status), req.Location, req.Notes)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shipment, "chain": chainMeta(shipment.ChainSync)})
}
