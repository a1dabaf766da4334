package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"

	"go-inventory-tims/internal/cache"
	"go-inventory-tims/internal/config"
	"go-inventory-tims/internal/repository"
	"go-inventory-tims/internal/service"
	"go-inventory-tims/pkg/database"
	"go-inventory-tims/pkg/jwt"
	"go-inventory-tims/pkg/logger"
)

// reset-password sets a user's password, by default the configured admin's
// password back to ADMIN_PASSWORD.
func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Pretty: true})
		l := logger.Get()
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	username := flag.String("user", cfg.Admin.Username, "username to reset")
	password := flag.String("password", cfg.Admin.Password, "new password")
	flag.Parse()

	db, err := database.Connect(database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN(),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	auth := service.NewAuthService(
		repository.NewUserRepo(db),
		jwt.NewManager(cfg.SecretKey, cfg.SessionTTL),
		cache.NewSessionStore(nil),
		nil,
		log,
	)
	if err := auth.ResetPassword(ctx, *username, *password); err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("reset password")
	}
	log.Info().Str("username", *username).Msg("password has been reset")
}
