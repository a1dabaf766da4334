package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-inventory-tims/internal/middleware"
	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/repository"
	"go-inventory-tims/internal/service"
	"go-inventory-tims/internal/ws"
)

type ProductHandler struct {
	service   service.InventoryService
	suppliers service.SupplierService
	feed      Publisher
}

func NewProductHandler(s service.InventoryService, suppliers service.SupplierService, feed Publisher) *ProductHandler {
	return &ProductHandler{service: s, suppliers: suppliers, feed: feed}
}

// ListProducts GET /products?q=&status=
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Query:  strings.TrimSpace(c.Query("q")),
		Status: model.StockStatus(c.Query("status")),
	}
	products, err := h.service.SearchProducts(c.UserContext(), filter)
	if err != nil {
		return fail(c, err, nil)
	}
	return page(c, fiber.Map{"products": products, "q": filter.Query, "filter_status": filter.Status})
}

// NewProductForm GET /product/new
func (h *ProductHandler) NewProductForm(c *fiber.Ctx) error {
	suppliers, err := h.suppliers.List(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return page(c, fiber.Map{"action": "New", "suppliers": suppliers})
}

// CreateProduct POST /product/new
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var in service.ProductInput
	if err := parseBody(c, &in); err != nil {
		return fail(c, err, nil)
	}

	p, err := h.service.CreateProduct(c.UserContext(), in, actorID(c))
	if err != nil {
		return fail(c, err, in)
	}

	h.feed.Publish(ws.Event{
		Type:    ws.EventProductCreated,
		Message: fmt.Sprintf("%s created product '%s'", actorName(c), p.Name),
		User:    actorName(c),
		Data:    p,
	})
	return middleware.RedirectWithNotice(c, "/products", "Product added")
}

// EditProductForm GET /product/:id/edit
func (h *ProductHandler) EditProductForm(c *fiber.Ctx) error {
	id, err := paramID(c, "product")
	if err != nil {
		return fail(c, err, nil)
	}
	p, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err, nil)
	}
	suppliers, err := h.suppliers.List(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return page(c, fiber.Map{"action": "Edit", "product": p, "suppliers": suppliers})
}

// UpdateProduct POST /product/:id/edit
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "product")
	if err != nil {
		return fail(c, err, nil)
	}
	var in service.ProductInput
	if err := parseBody(c, &in); err != nil {
		return fail(c, err, nil)
	}

	p, err := h.service.UpdateProduct(c.UserContext(), id, in, actorID(c))
	if err != nil {
		return fail(c, err, in)
	}

	h.feed.Publish(ws.Event{
		Type:    ws.EventProductUpdated,
		Message: fmt.Sprintf("%s updated product '%s'", actorName(c), p.Name),
		User:    actorName(c),
		Data:    p,
	})
	return middleware.RedirectWithNotice(c, "/products", "Product updated")
}

// DeleteProduct POST /product/:id/delete
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "product")
	if err != nil {
		return fail(c, err, nil)
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return fail(c, err, nil)
	}

	h.feed.Publish(ws.Event{
		Type:    ws.EventProductDeleted,
		Message: fmt.Sprintf("%s deleted product %d", actorName(c), id),
		User:    actorName(c),
		Data:    fiber.Map{"id": id},
	})
	return middleware.RedirectWithNotice(c, "/products", "Product deleted")
}

// ProductLedger GET /product/:id/ledger
func (h *ProductHandler) ProductLedger(c *fiber.Ctx) error {
	id, err := paramID(c, "product")
	if err != nil {
		return fail(c, err, nil)
	}
	ctx := c.UserContext()

	p, err := h.service.GetProduct(ctx, id)
	if err != nil {
		return fail(c, err, nil)
	}
	rec, err := h.service.Reconcile(ctx, id)
	if err != nil {
		return fail(c, err, nil)
	}
	entries, err := h.service.ProductLedger(ctx, id)
	if err != nil {
		return fail(c, err, nil)
	}
	return page(c, fiber.Map{"product": p, "reconciliation": rec, "transactions": entries})
}
