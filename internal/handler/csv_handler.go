package handler

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/middleware"
	"go-inventory-tims/internal/service"
	"go-inventory-tims/internal/ws"
)

type CSVHandler struct {
	service service.CSVService
	feed    Publisher
}

func NewCSVHandler(s service.CSVService, feed Publisher) *CSVHandler {
	return &CSVHandler{service: s, feed: feed}
}

// ExportProducts GET /export/products
func (h *CSVHandler) ExportProducts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportProducts(c.UserContext(), &buf); err != nil {
		return fail(c, err, nil)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment("products.csv")
	return c.Send(buf.Bytes())
}

// ImportPage GET /import/products
func (h *CSVHandler) ImportPage(c *fiber.Ctx) error {
	return page(c, fiber.Map{"columns": service.ExportColumns})
}

// ImportProducts POST /import/products (multipart field "file")
func (h *CSVHandler) ImportProducts(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return middleware.RedirectWithNotice(c, "/import/products", "No file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, apperr.Invalid("could not open upload: %v", err), nil)
	}
	defer f.Close()

	res, err := h.service.ImportProducts(c.UserContext(), f, actorID(c))
	if err != nil {
		return fail(c, err, fiber.Map{"file": fh.Filename})
	}

	h.feed.Publish(ws.Event{
		Type:    ws.EventProductsImported,
		Message: fmt.Sprintf("%s imported %d products", actorName(c), res.Total()),
		User:    actorName(c),
		Data:    res,
	})
	return middleware.RedirectWithNotice(c, "/products", fmt.Sprintf("Imported %d rows", res.Total()))
}
