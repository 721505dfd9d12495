package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"chidi/internal/ledger"
	applog "chidi/internal/log"
	"chidi/internal/services"
)

const genericError = "Something went wrong. Please try again."

// statusFor maps domain errors to HTTP status codes; 0 means internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, ledger.ErrCustomerNotFound),
		errors.Is(err, ledger.ErrOrderNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidTransition),
		errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrBadCreds),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrBadSignature):
		return fiber.StatusUnauthorized
	}
	return 0
}

// fail writes err as a JSON error. Internal errors are logged under action
// and answered with a generic message.
func fail(c *fiber.Ctx, action string, err error) error {
	status := statusFor(err)
	switch status {
	case 0:
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericError})
	case fiber.StatusBadRequest:
		applog.Security(c, "validation.fail", map[string]any{"action": action, "reason": err.Error()})
	case fiber.StatusUnauthorized:
		applog.Security(c, action+".denied", nil)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler logs unhandled errors and answers without internals: JSON
// under /api, the notfound page elsewhere.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := genericError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code, msg = fe.Code, fe.Message
	} else {
		applog.Error(c, "server.error", err, nil)
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
