package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chidi/internal/services"
)

const dashboardNotes = 8

type DashboardHandler struct {
	Shop *services.ShopService
}

func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	notes := h.Shop.Notifications()
	if len(notes) > dashboardNotes {
		notes = notes[:dashboardNotes]
	}
	return render(c, "dashboard", fiber.Map{
		"Summary":       h.Shop.Summary(),
		"Notifications": notes,
	})
}
