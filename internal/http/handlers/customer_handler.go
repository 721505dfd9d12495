package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chidi/internal/domain"
	applog "chidi/internal/log"
	"chidi/internal/services"
	"chidi/internal/validate"
)

type CustomerHandler struct {
	Shop *services.ShopService
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.Shop.Customers())
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var d domain.CustomerDraft
	if err := c.BodyParser(&d); err != nil {
		return badRequest(c, "body", "invalid customer payload")
	}
	cust, err := h.Shop.AddCustomer(c.UserContext(), d)
	if err != nil {
		return fail(c, "customer.add", err)
	}
	applog.Audit(c, "customer.add", map[string]any{"customer_id": cust.ID})
	return c.Status(fiber.StatusCreated).JSON(cust)
}

func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid customer id")
	}
	var cust domain.Customer
	if err := c.BodyParser(&cust); err != nil {
		return badRequest(c, "body", "invalid customer payload")
	}
	cust.ID = id
	cust, err := h.Shop.UpdateCustomer(c.UserContext(), cust)
	if err != nil {
		return fail(c, "customer.update", err)
	}
	applog.Audit(c, "customer.update", map[string]any{"customer_id": id})
	return c.JSON(cust)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *CustomerHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid customer id")
	}
	var req statusReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "status", "status is required")
	}
	cust, err := h.Shop.UpdateCustomerStatus(c.UserContext(), id, domain.CustomerStatus(req.Status))
	if err != nil {
		return fail(c, "customer.status", err)
	}
	applog.Audit(c, "customer.status", map[string]any{"customer_id": id, "status": cust.Status})
	return c.JSON(cust)
}
