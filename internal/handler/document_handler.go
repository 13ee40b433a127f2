package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/service"
)

type DocumentHandler struct {
	service service.DocumentService
}

func NewDocumentHandler(s service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: s}
}

// createDocumentRequest accepts the wire shape with separate product/shipment
// ids; the handler folds them into the tagged parent reference. Supplying
// both or neither is rejected by the service.
type createDocumentRequest struct {
	Name         string     `json:"name"`
	DocumentType string     `json:"document_type"`
	ProductID    *uuid.UUID `json:"product_id"`
	ShipmentID   *uuid.UUID `json:"shipment_id"`
	FileURL      string     `json:"file_url"`
	FileHash     string     `json:"file_hash"`
	Notes        string     `json:"notes"`
}

func (r *createDocumentRequest) parent() (model.ParentRef, error) {
	switch {
	case r.ProductID != nil && r.ShipmentID != nil:
		return model.ParentRef{}, model.ErrDocumentParent
	case r.ProductID != nil:
		return model.ParentRef{Kind: model.ParentProduct, ID: *r.ProductID}, nil
	case r.ShipmentID != nil:
		return model.ParentRef{Kind: model.ParentShipment, ID: *r.ShipmentID}, nil
	default:
		return model.ParentRef{}, model.ErrDocumentParent
	}
}

func (h *DocumentHandler) CreateDocument(c *fiber.Ctx) error {
	var req createDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	parent, err := req.parent()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	document := &model.Document{
		Name:         req.Name,
		DocumentType: model.DocumentType(req.DocumentType),
		Parent:       parent,
		FileURL:      req.FileURL,
		FileHash:     req.FileHash,
		Notes:        req.Notes,
	}
	created, err := h.service.Create(c.Context(), actorFromCtx(c), document)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": created, "chain": chainMeta(created.ChainSync)})
}

func (h *DocumentHandler) GetDocuments(c *fiber.Ctx) error {
	if raw := c.Query("product_id"); raw != "" {
		return h.listByParent(c, model.ParentProduct, raw)
	}
	if raw := c.Query("shipment_id"); raw != "" {
		return h.listByParent(c, model.ParentShipment, raw)
	}
	documents, err := h.service.GetAll()
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(documents), "data": documents})
}

func (h *DocumentHandler) listByParent(c *fiber.Ctx, kind model.ParentKind, raw string) error {
	parentID, err := uuid.Parse(raw)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid parent ID"})
	}
	documents, err := h.service.GetByParent(kind, parentID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(documents), "data": documents})
}

func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid document ID"})
	}
	document, err := h.service.GetByID(id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": document, "chain": chainMeta(document.ChainSync)})
}

func (h *DocumentHandler) VerifyDocument(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid document ID"})
	}
	document, err := h.service.Verify(c.Context(), actorFromCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": document, "chain": chainMeta(document.ChainSync)})
}
