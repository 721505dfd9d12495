package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chidi/internal/domain"
	applog "chidi/internal/log"
	"chidi/internal/services"
	"chidi/internal/validate"
)

type OrderHandler struct {
	Shop *services.ShopService
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.Shop.Orders())
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid order id")
	}
	o, err := h.Shop.Order(id)
	if err != nil {
		return fail(c, "order.get", err)
	}
	return c.JSON(o)
}

// Place creates an order. Item names and prices come from the catalogue;
// any client-sent prices or totals are ignored.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req services.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid order payload")
	}
	o, err := h.Shop.PlaceOrder(c.UserContext(), req)
	if err != nil {
		return fail(c, "order.place", err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"customer_id":  o.CustomerID,
		"total":        o.Total.String(),
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid order id")
	}
	var req statusReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "status", "status is required")
	}
	o, err := h.Shop.UpdateOrderStatus(c.UserContext(), id, domain.OrderStatus(req.Status))
	if err != nil {
		return fail(c, "order.status", err)
	}
	applog.Audit(c, "order.status", map[string]any{"order_id": id, "status": o.Status})
	return c.JSON(o)
}

type paymentReq struct {
	PaymentStatus string `json:"paymentStatus"`
}

func (h *OrderHandler) UpdatePayment(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid order id")
	}
	var req paymentReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "paymentStatus", "paymentStatus is required")
	}
	o, err := h.Shop.UpdatePaymentStatus(c.UserContext(), id, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return fail(c, "order.payment", err)
	}
	applog.Audit(c, "order.payment", map[string]any{"order_id": id, "payment_status": o.PaymentStatus})
	return c.JSON(o)
}
