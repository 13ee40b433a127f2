package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/service"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	token, user, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "token": token, "data": user.ToResponse()})
}

type registerRequest struct {
	model.User
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid JSON"})
	}
	var actor *service.Actor
	if raw, ok := c.Locals("user_id").(string); ok && raw != "" {
		a := actorFromCtx(c)
		actor = &a
	}
	user, err := h.service.Register(actor, &req.User, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": user.ToResponse()})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	user, err := h.service.GetUser(actor.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": user.ToResponse()})
}

func (h *AuthHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers()
	if err != nil {
		return respondErr(c, err)
	}
	responses := make([]model.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return c.JSON(fiber.Map{"success": true, "count": len(responses), "data": responses})
}
