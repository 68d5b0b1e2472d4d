package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/jwt"
	"go-pos-ws/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// reset-password sets a new password for an account and signs it out of
// every device.
func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Env)

	if *email == "" || *password == "" {
		log.Fatal().Msg("usage: reset-password -email <email> -password <new password>")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DSN(), false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// 3. Reset
	auth := service.NewAuthService(repository.NewUserRepo(db), jwt.NewManager(cfg.JWTSecret, cfg.JWTExpiration()))
	if err := auth.ResetPassword(context.Background(), *email, *password); err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("reset failed")
	}

	log.Info().Str("email", *email).Msg("password reset, existing sessions revoked")
}
