package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-supplychain-ledger/internal/service"
)

// actorFromCtx rebuilds the acting identity from the values the auth
// middleware stored on the request context.
func actorFromCtx(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if raw, ok := c.Locals("user_id").(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			actor.ID = id
		}
	}
	if v, ok := c.Locals("user_email").(string); ok {
		actor.Email = v
	}
	if v, ok := c.Locals("user_name").(string); ok {
		actor.Name = v
	}
	if v, ok := c.Locals("user_role").(string); ok {
		actor.Role = v
	}
	return actor
}

// respondErr maps the service error taxonomy onto HTTP statuses. Remote
// ledger failures never reach here: they are recovered inside the services.
func respondErr(c *fiber.Ctx, err error) error {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
		ae *service.AuthorizationError
		it *service.InvalidTransitionError
		er *service.EscrowNotReleasableError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": ve.Error()})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": nf.Error()})
	case errors.As(err, &ae):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": ae.Error()})
	case errors.As(err, &it):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": it.Error()})
	case errors.As(err, &er):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"success": false, "error": er.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Internal Server Error"})
	}
}

func parseUUID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(param))
}
