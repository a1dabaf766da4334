package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"go-inventory-tims/internal/service"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDashboard GET /dashboard
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	d, err := h.service.GetDashboard(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return page(c, fiber.Map{
		"total_products":      d.Stats.TotalProducts,
		"low_stock_count":     d.Stats.LowStockCount,
		"out_of_stock":        d.Stats.OutOfStock,
		"recent_transactions": d.Recent,
		"low_stock_products":  d.LowStock,
	})
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 || days > 366 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return fail(c, err, nil)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}
