package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-inventory-tims/internal/middleware"
	"go-inventory-tims/internal/service"
)

type SupplierHandler struct {
	service service.SupplierService
}

func NewSupplierHandler(s service.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: s}
}

// ListSuppliers GET /suppliers
func (h *SupplierHandler) ListSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.List(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return page(c, fiber.Map{"suppliers": suppliers})
}

// NewSupplierForm GET /supplier/new
func (h *SupplierHandler) NewSupplierForm(c *fiber.Ctx) error {
	return page(c, fiber.Map{"action": "New"})
}

// CreateSupplier POST /supplier/new
func (h *SupplierHandler) CreateSupplier(c *fiber.Ctx) error {
	var in service.SupplierInput
	if err := parseBody(c, &in); err != nil {
		return fail(c, err, nil)
	}
	if _, err := h.service.Create(c.UserContext(), in); err != nil {
		return fail(c, err, in)
	}
	return middleware.RedirectWithNotice(c, "/suppliers", "Supplier added")
}

// EditSupplierForm GET /supplier/:id/edit
func (h *SupplierHandler) EditSupplierForm(c *fiber.Ctx) error {
	id, err := paramID(c, "supplier")
	if err != nil {
		return fail(c, err, nil)
	}
	s, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err, nil)
	}
	return page(c, fiber.Map{"action": "Edit", "supplier": s})
}

// UpdateSupplier POST /supplier/:id/edit
func (h *SupplierHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "supplier")
	if err != nil {
		return fail(c, err, nil)
	}
	var in service.SupplierInput
	if err := parseBody(c, &in); err != nil {
		return fail(c, err, nil)
	}
	if _, err := h.service.Update(c.UserContext(), id, in); err != nil {
		return fail(c, err, in)
	}
	return middleware.RedirectWithNotice(c, "/suppliers", "Supplier updated")
}

// DeleteSupplier POST /supplier/:id/delete
func (h *SupplierHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "supplier")
	if err != nil {
		return fail(c, err, nil)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return fail(c, err, nil)
	}
	return middleware.RedirectWithNotice(c, "/suppliers", "Supplier deleted")
}
