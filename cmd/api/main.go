package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"go-inventory-tims/internal/cache"
	"go-inventory-tims/internal/config"
	"go-inventory-tims/internal/repository"
	"go-inventory-tims/internal/server"
	"go-inventory-tims/internal/service"
	"go-inventory-tims/internal/ws"
	"go-inventory-tims/pkg/database"
	"go-inventory-tims/pkg/jwt"
	"go-inventory-tims/pkg/logger"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction()})
	if envErr != nil {
		log.Debug().Msg(".env file not found, using process environment")
	}
	if cfg.SecretKey == "dev-secret-key" && cfg.IsProduction() {
		log.Warn().Msg("SECRET_KEY is the development default")
	}

	// 2. Setup Database
	db, err := database.Connect(database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN(),
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Debug:        log.GetLevel() <= zerolog.DebugLevel,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	// 3. Optional Redis for session revocation
	redisClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, logout revocation disabled until it recovers")
	}

	// 4. Setup WebSocket Hub
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	store := repository.NewStore(db)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	userRepo := repository.NewUserRepo(db)

	tokens := jwt.NewManager(cfg.SecretKey, cfg.SessionTTL)
	authService := service.NewAuthService(userRepo, tokens, cache.NewSessionStore(redisClient), cfg.RegisterAllowedRoles, log)
	invService := service.NewInventoryService(store, productRepo, txRepo, supplierRepo, log)
	supplierService := service.NewSupplierService(supplierRepo, log)
	dashService := service.NewDashboardService(productRepo, txRepo)
	csvService := service.NewCSVService(store, productRepo, log)

	// 6. Seed admin user
	if _, err := authService.SeedAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("seed admin user")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle")
	}

	// 7. Routes
	app := server.New(server.Deps{
		Auth:         authService,
		Inventory:    invService,
		Suppliers:    supplierService,
		Dashboard:    dashService,
		CSV:          csvService,
		Feed:         hub,
		Log:          log,
		CookieSecure: cfg.CookieSecure,
		AccessLog:    !cfg.IsProduction(),
		Health: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(pingCtx)
		},
	})

	// 8. Graceful Shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("listen")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("close database")
	}
	log.Info().Msg("server exited")
}
