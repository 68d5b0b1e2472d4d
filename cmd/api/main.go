package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-ws/internal/barcode"
	"go-pos-ws/internal/config"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/router"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/jwt"
	"go-pos-ws/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const demoEmail = "demo@example.com"

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Env)

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DSN(), cfg.Env != "production")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	// Auto Migrate (a separate migration tool is preferable in production)
	if err := db.AutoMigrate(model.Tables()...); err != nil {
		log.Fatal().Err(err).Msg("auto migrate failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	// 4. Barcode lookup, cached in Redis when configured
	barcodeOpts := barcode.Options{
		OpenFoodFactsURL: cfg.OpenFoodFactsURL,
		UPCItemDBURL:     cfg.UPCItemDBURL,
		Timeout:          cfg.BarcodeTimeout(),
	}
	if cfg.RedisURL != "" {
		rdb, err := barcode.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, barcode cache disabled")
		} else {
			defer rdb.Close()
			barcodeOpts.Cache = barcode.NewRedisCache(rdb, cfg.BarcodeCacheTTL())
		}
	}
	lookup := barcode.NewClient(barcodeOpts)

	// 5. Dependency Injection (Wiring Layers)
	cal := service.NewCalendar(cfg.Location())
	userRepo := repository.NewUserRepo(db)
	memberRepo := repository.NewMemberRepo(db)
	workspaceRepo := repository.NewWorkspaceRepo(db)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	cashRepo := repository.NewCashRepo(db)

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTExpiration())
	membershipService := service.NewMembershipService(memberRepo, workspaceRepo, cfg.DefaultWorkspaceName)

	svc := router.Services{
		Auth:       service.NewAuthService(userRepo, tokens),
		Membership: membershipService,
		Inventory:  service.NewInventoryService(productRepo, cashRepo, lookup, wsHub, cal),
		Sales:      service.NewSalesService(saleRepo, productRepo, cashRepo, wsHub, cal),
		Cash:       service.NewCashService(cashRepo, cal),
		Reports:    service.NewReportService(saleRepo, cal),
		Dashboard:  service.NewDashboardService(productRepo, saleRepo, cashRepo, cal),
		Users:      service.NewUserService(userRepo, memberRepo, wsHub),
		Barcode:    lookup,
	}

	if cfg.SeedDemo {
		seeder := service.NewSeeder(userRepo, membershipService, productRepo, saleRepo, cashRepo, cal)
		if _, err := seeder.Seed(ctx, demoEmail, "demo123"); err != nil {
			log.Warn().Err(err).Msg("demo seed failed")
		}
	}

	// 6. Setup Fiber
	app := router.New(svc, wsHub, db, router.Options{
		AppName:       "POS Tracker v1.0",
		AuthRateLimit: cfg.AuthRateLimit,
	})

	// 7. Graceful Shutdown
	go func() {
		log.Info().Int("port", cfg.Port).Msg("listening")
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Panic().Err(err).Msg("listen failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	cancel()

	log.Info().Msg("server exited")
}
