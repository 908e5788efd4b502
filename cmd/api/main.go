package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/adapter/handler"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/adapter/middleware"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/adapter/storage"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/config"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/transfer"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/worker"
)

func main() {
	// 1. Load config
	cfg := config.LoadConfig()

	// 2. Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	// 3. Connect to database
	dbPool, err := storage.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}

	if err := storage.Migrate(context.Background(), dbPool); err != nil {
		slog.Error("Schema migration failed", "error", err)
		os.Exit(1)
	}

	// 4. Setup repos, engine and handlers
	userRepo := storage.NewUserRepository(dbPool)
	accountRepo := storage.NewAccountRepository(dbPool)
	transferRepo := storage.NewTransferRepository(dbPool)
	engine := transfer.NewEngine(storage.NewStore(dbPool))

	userHandler := &handler.UserHandler{Repo: userRepo}
	accountHandler := &handler.AccountHandler{Repo: accountRepo}
	transferHandler := &handler.TransferHandler{Engine: engine, Repo: transferRepo}
	authHandler := &handler.AuthHandler{Repo: userRepo, JWTSecret: cfg.JWTSecret}

	// 5. Setup fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Use(middleware.RequestID())

	// 6. Routes
	api := app.Group("/api/v1")

	api.Post("/users", userHandler.CreateUser)
	api.Get("/users", userHandler.ListUsers)
	api.Get("/users/:id", userHandler.GetUser)

	api.Post("/accounts", accountHandler.CreateAccount)
	api.Get("/accounts", accountHandler.ListAccounts)
	api.Get("/accounts/:accountId", accountHandler.GetAccount)

	api.Post("/transfers", middleware.Idempotency(dbPool), transferHandler.CreateTransfer)
	api.Get("/transactions", transferHandler.ListTransactions)
	api.Get("/transactions/:transactionId", transferHandler.GetTransaction)

	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/authenticate", middleware.Protected(cfg.JWTSecret), authHandler.Authenticate)

	// 7. Start background worker
	worker.StartIdempotencyReaper(dbPool, cfg.IdempotencyTTL)

	// Graceful shutdown: finish in-flight requests, then close the pool.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutting down server")

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	dbPool.Close()
	slog.Info("Server exited")
}
