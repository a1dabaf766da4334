// Package server assembles the Fiber application: middleware, routes and gates.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"go-inventory-tims/internal/access"
	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/handler"
	mw "go-inventory-tims/internal/middleware"
	"go-inventory-tims/internal/service"
	"go-inventory-tims/internal/ws"
)

// FeedHub is the live feed as the router sees it.
type FeedHub interface {
	handler.Publisher
	Handler() fiber.Handler
}

type Deps struct {
	Auth         service.AuthService
	Inventory    service.InventoryService
	Suppliers    service.SupplierService
	Dashboard    service.DashboardService
	CSV          service.CSVService
	Feed         FeedHub
	Log          zerolog.Logger
	CookieSecure bool
	// AccessLog enables the Fiber request log line.
	AccessLog bool
	// Health reports readiness for /healthz; nil means always healthy.
	Health func() error
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "go-inventory-tims",
		ErrorHandler: errorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(mw.ContextLogger(d.Log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if d.Health != nil {
			if err := d.Health(); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(mw.LoadSession(d.Auth))
	can := mw.RequirePermission

	auth := handler.NewAuthHandler(d.Auth, d.CookieSecure)
	app.Get("/", auth.Index)
	app.Get("/login", auth.LoginPage)
	app.Post("/login", auth.Login)
	app.Get("/logout", auth.Logout)
	app.Get("/register", auth.RegisterPage)
	app.Post("/register", auth.Register)

	dash := handler.NewDashboardHandler(d.Dashboard)
	app.Get("/dashboard", can(access.DashboardView), dash.GetDashboard)
	app.Get("/dashboard/stock-movement", can(access.DashboardView), dash.GetStockMovement)

	products := handler.NewProductHandler(d.Inventory, d.Suppliers, d.Feed)
	app.Get("/products", can(access.ProductView), products.ListProducts)
	app.Get("/product/new", can(access.ProductCreate), products.NewProductForm)
	app.Post("/product/new", can(access.ProductCreate), products.CreateProduct)
	app.Get("/product/:id/edit", can(access.ProductUpdate), products.EditProductForm)
	app.Post("/product/:id/edit", can(access.ProductUpdate), products.UpdateProduct)
	app.Post("/product/:id/delete", can(access.ProductDelete), products.DeleteProduct)
	app.Get("/product/:id/ledger", can(access.ProductView), products.ProductLedger)

	suppliers := handler.NewSupplierHandler(d.Suppliers)
	app.Get("/suppliers", can(access.SupplierView), suppliers.ListSuppliers)
	app.Get("/supplier/new", can(access.SupplierCreate), suppliers.NewSupplierForm)
	app.Post("/supplier/new", can(access.SupplierCreate), suppliers.CreateSupplier)
	app.Get("/supplier/:id/edit", can(access.SupplierUpdate), suppliers.EditSupplierForm)
	app.Post("/supplier/:id/edit", can(access.SupplierUpdate), suppliers.UpdateSupplier)
	app.Post("/supplier/:id/delete", can(access.SupplierDelete), suppliers.DeleteSupplier)

	txs := handler.NewTransactionHandler(d.Inventory, d.Suppliers, d.Feed)
	app.Get("/transactions", can(access.TransactionView), txs.ListTransactions)
	app.Post("/transactions", can(access.MovementRecord), txs.CreateTransaction)
	app.Get("/transactions/:id", can(access.TransactionView), txs.GetTransaction)

	csv := handler.NewCSVHandler(d.CSV, d.Feed)
	app.Get("/export/products", can(access.ProductExport), csv.ExportProducts)
	app.Get("/import/products", can(access.ProductImport), csv.ImportPage)
	app.Post("/import/products", can(access.ProductImport), csv.ImportProducts)

	app.Get("/ws", can(access.LiveFeed), ws.Upgrade, d.Feed.Handler())

	return app
}

// errorHandler renders errors that escape handlers, such as unknown routes.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message, "code": "HTTP_ERROR"})
		}
		he := apperr.MapError(err)
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(he.StatusCode).JSON(fiber.Map{"error": he.Message, "code": he.Code})
	}
}
