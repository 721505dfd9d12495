package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chidi/internal/domain"
	applog "chidi/internal/log"
	"chidi/internal/services"
	"chidi/internal/validate"
)

type ProductHandler struct {
	Shop *services.ShopService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.Shop.Products())
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var d domain.ProductDraft
	if err := c.BodyParser(&d); err != nil {
		return badRequest(c, "body", "invalid product payload")
	}
	p, err := h.Shop.AddProduct(c.UserContext(), d)
	if err != nil {
		return fail(c, "product.add", err)
	}
	applog.Audit(c, "product.add", map[string]any{"product_id": p.ID, "stock": p.Stock})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "body", "invalid product payload")
	}
	p.ID = id
	p, err := h.Shop.UpdateProduct(c.UserContext(), p)
	if err != nil {
		return fail(c, "product.update", err)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": p.ID, "stock": p.Stock, "status": p.Status})
	return c.JSON(p)
}

type deleteProductsReq struct {
	IDs []int `json:"ids"`
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	var req deleteProductsReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "ids", "ids must be a list of product ids")
	}
	if err := h.Shop.DeleteProducts(c.UserContext(), req.IDs); err != nil {
		return fail(c, "product.delete", err)
	}
	applog.Audit(c, "product.delete", map[string]any{"ids": req.IDs})
	return c.JSON(fiber.Map{"deleted": len(req.IDs)})
}
