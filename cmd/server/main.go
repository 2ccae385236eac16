package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/splitpot/backend/internal/config"
	"github.com/splitpot/backend/internal/database"
	"github.com/splitpot/backend/internal/handlers"
	"github.com/splitpot/backend/internal/middleware"
	"github.com/splitpot/backend/internal/services"
	"github.com/splitpot/backend/internal/storage"
	"github.com/splitpot/backend/pkg/logger"
	"github.com/splitpot/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	var storageClient *storage.MinIOClient
	if cfg.MinIO.Enabled() {
		storageClient, err = storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("minio initialization failed: %v", err)
		}
		if err := storageClient.EnsureBucket(context.Background()); err != nil {
			log.Fatalf("failed ensuring minio bucket: %v", err)
		}
	}

	auditService := services.NewAuditService(db, storageClient)
	auditService.StartExporter(cfg.Audit.ExportInterval)
	ledgerService := services.NewLedgerService(db)

	go func() {
		ticker := time.NewTicker(cfg.Verification.SweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			handlers.CleanupExpiredVerifications(db)
		}
	}()

	authHandler := handlers.NewAuthHandler(db, auditService, cfg.Verification)
	verificationHandler := handlers.NewVerificationHandler(db, auditService)
	expenseHandler := handlers.NewExpenseHandler(db, auditService)
	groupHandler := handlers.NewGroupHandler(db, auditService, ledgerService)
	balanceHandler := handlers.NewBalanceHandler(db, ledgerService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/groups", authHandler.CreateGroup)
	authRoutes.Post("/join", authHandler.JoinGroup)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	verificationRoutes := api.Group("/verifications")
	verificationRoutes.Get("/poll", verificationHandler.Poll)
	verificationRoutes.Post("/approve", authMiddleware.RequireAuth, verificationHandler.Approve)
	verificationRoutes.Get("/pending", authMiddleware.RequireAuth, verificationHandler.Pending)
	verificationRoutes.Delete("/", authMiddleware.RequireAuth, middleware.AdminOnly, verificationHandler.Clear)

	expenseRoutes := api.Group("/expenses", authMiddleware.RequireAuth)
	expenseRoutes.Get("/", expenseHandler.List)
	expenseRoutes.Post("/", expenseHandler.Create)
	expenseRoutes.Delete("/:id", middleware.AdminOnly, expenseHandler.Delete)
	expenseRoutes.Delete("/", middleware.AdminOnly, expenseHandler.Reset)

	groupRoutes := api.Group("/group", authMiddleware.RequireAuth)
	groupRoutes.Get("/", groupHandler.Get)
	groupRoutes.Patch("/", middleware.AdminOnly, groupHandler.Update)
	groupRoutes.Get("/members", groupHandler.ListMembers)
	groupRoutes.Delete("/members/:id", middleware.AdminOnly, groupHandler.RemoveMember)

	api.Get("/balances", authMiddleware.RequireAuth, balanceHandler.List)
	api.Get("/settlements", authMiddleware.RequireAuth, balanceHandler.Settlements)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
