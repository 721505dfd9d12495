package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if uid := userID(c); uid != "" {
		data["UserID"] = uid
	}
	return c.Render(tmpl, data)
}
