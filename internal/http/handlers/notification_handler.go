package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "chidi/internal/log"
	"chidi/internal/services"
)

type NotificationHandler struct {
	Shop *services.ShopService
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"notifications": h.Shop.Notifications(),
		"unread":        h.Shop.UnreadCount(),
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Shop.MarkNotificationRead(c.UserContext(), id); err != nil {
		return fail(c, "notification.read", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.Shop.MarkAllRead(c.UserContext()); err != nil {
		return fail(c, "notification.read_all", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) Dismiss(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Shop.DismissNotification(c.UserContext(), id); err != nil {
		return fail(c, "notification.dismiss", err)
	}
	applog.Audit(c, "notification.dismiss", map[string]any{"notification_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	if err := h.Shop.ClearNotifications(c.UserContext()); err != nil {
		return fail(c, "notification.clear", err)
	}
	applog.Audit(c, "notification.clear", nil)
	return c.SendStatus(fiber.StatusNoContent)
}
