package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/service"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// chainMeta reports the reconciliation state of a record alongside its data.
// The local write is the operation's outcome; chain confirmation is
// best-effort metadata.
func chainMeta(cs model.ChainSync) fiber.Map {
	meta := fiber.Map{
		"chain_confirmed":   cs.Synced(),
		"reconcile_pending": cs.ReconcilePending,
	}
	if cs.ReconcileCause != "" {
		meta["reconcile_cause"] = cs.ReconcileCause
	}
	return meta
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	created, err := h.service.Create(c.Context(), actorFromCtx(c), &product)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": created, "chain": chainMeta(created.ChainSync)})
}

func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAll()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(products), "data": products})
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid product ID"})
	}
	product, err := h.service.GetByID(id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": product, "chain": chainMeta(product.ChainSync)})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid product ID"})
	}
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	updated, err := h.service.Update(c.Context(), actorFromCtx(c), id, &product)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": updated})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid product ID"})
	}
	if err := h.service.Delete(c.Context(), actorFromCtx(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}

type statusUpdateRequest struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

func (h *ProductHandler) UpdateProductStatus(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid product ID"})
	}
	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	product, err := h.service.UpdateStatus(c.Context(), actorFromCtx(c), id,
		model.ProductStatus(req.Status), req.Location, req.Notes)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": product, "chain": chainMeta(product.ChainSync)})
}
