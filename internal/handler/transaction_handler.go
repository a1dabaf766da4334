package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"go-inventory-tims/internal/middleware"
	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/repository"
	"go-inventory-tims/internal/service"
	"go-inventory-tims/internal/ws"
)

const transactionPageSize = 50

type TransactionHandler struct {
	service   service.InventoryService
	suppliers service.SupplierService
	feed      Publisher
}

func NewTransactionHandler(s service.InventoryService, suppliers service.SupplierService, feed Publisher) *TransactionHandler {
	return &TransactionHandler{service: s, suppliers: suppliers, feed: feed}
}

// ListTransactions GET /transactions
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	ctx := c.UserContext()
	products, err := h.service.SearchProducts(ctx, repository.ProductFilter{})
	if err != nil {
		return fail(c, err, nil)
	}
	txs, err := h.service.ListTransactions(ctx, transactionPageSize)
	if err != nil {
		return fail(c, err, nil)
	}
	suppliers, err := h.suppliers.List(ctx)
	if err != nil {
		return fail(c, err, nil)
	}
	return page(c, fiber.Map{"products": products, "transactions": txs, "suppliers": suppliers})
}

// GetTransaction GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "transaction")
	if err != nil {
		return fail(c, err, nil)
	}
	tx, err := h.service.GetTransaction(c.UserContext(), id)
	if err != nil {
		return fail(c, err, nil)
	}
	return page(c, fiber.Map{"transaction": tx})
}

// CreateTransaction POST /transactions
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var in service.MovementInput
	if err := parseBody(c, &in); err != nil {
		return fail(c, err, nil)
	}
	in.UserID = actorID(c)

	res, err := h.service.RecordMovement(c.UserContext(), in)
	if err != nil {
		return fail(c, err, in)
	}

	verb := "added"
	if in.Type == model.TxOut {
		verb = "removed"
	}
	h.feed.Publish(ws.Event{
		Type:    ws.EventStockMovement,
		Message: fmt.Sprintf("%s %s %d units of product %d", actorName(c), verb, in.Qty, in.ProductID),
		User:    actorName(c),
		Data:    res,
	})
	return middleware.RedirectWithNotice(c, "/transactions", "Transaction recorded")
}
