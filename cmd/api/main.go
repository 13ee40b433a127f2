package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-supplychain-ledger/internal/chain"
	"go-supplychain-ledger/internal/config"
	"go-supplychain-ledger/internal/handler"
	"go-supplychain-ledger/internal/middleware"
	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/repository"
	"go-supplychain-ledger/internal/service"
	"go-supplychain-ledger/internal/ws"
	"go-supplychain-ledger/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.User{}, &model.Product{}, &model.Shipment{}, &model.ShipmentUpdate{}, &model.Document{}, &model.Payment{})

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Ledger Gateway
	ledger, gateway := buildLedger(cfg, zlog)

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 6. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	shipmentRepo := repository.NewShipmentRepo(db)
	documentRepo := repository.NewDocumentRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	authService := service.NewAuthService(userRepo)
	productService := service.NewProductService(productRepo, ledger, wsHub, zlog)
	shipmentService := service.NewShipmentService(shipmentRepo, productRepo, ledger, wsHub, zlog)
	documentService := service.NewDocumentService(documentRepo, productRepo, shipmentRepo, ledger, wsHub, zlog)
	paymentService := service.NewPaymentService(paymentRepo, productRepo, userRepo, ledger, wsHub, zlog)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	shipmentHandler := handler.NewShipmentHandler(shipmentService)
	documentHandler := handler.NewDocumentHandler(documentService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	chainHandler := handler.NewChainHandler(gateway, productService, shipmentService, documentService, paymentService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Supply Chain Ledger API v1.0",
	})

	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth())

	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/users", middleware.RequireRole(model.RoleAdmin), authHandler.GetUsers)

	// Product Routes
	protected.Get("/products", productHandler.GetProducts)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Post("/products", middleware.RequireRole(model.RoleAdmin, model.RoleManufacturer), productHandler.CreateProduct)
	protected.Put("/products/:id", productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequireRole(model.RoleAdmin), productHandler.DeleteProduct)
	protected.Put("/products/:id/status", productHandler.UpdateProductStatus)

	// Shipment Routes
	protected.Get("/shipments", shipmentHandler.GetShipments)
	protected.Get("/shipments/:id", shipmentHandler.GetShipment)
	protected.Post("/shipments", middleware.RequireRole(model.RoleAdmin, model.RoleManufacturer, model.RoleSupplier, model.RoleDistributor), shipmentHandler.CreateShipment)
	protected.Post("/shipments/:id/updates", shipmentHandler.AddLocationUpdate)
	protected.Put("/shipments/:id/status", shipmentHandler.UpdateShipmentStatus)

	// Document Routes
	protected.Get("/documents", documentHandler.GetDocuments)
	protected.Get("/documents/:id", documentHandler.GetDocument)
	protected.Post("/documents", documentHandler.CreateDocument)
	protected.Put("/documents/:id/verify", middleware.RequireRole(model.RoleAdmin, model.RoleInspector), documentHandler.VerifyDocument)

	// Payment Routes
	protected.Get("/payments", paymentHandler.GetPayments)
	protected.Get("/payments/:id", paymentHandler.GetPayment)
	protected.Post("/payments", paymentHandler.CreatePayment)
	protected.Post("/payments/escrow", paymentHandler.CreateEscrow)
	protected.Put("/payments/:id/complete", middleware.RequireRole(model.RoleAdmin), paymentHandler.CompletePayment)
	protected.Put("/payments/:id/refund", middleware.RequireRole(model.RoleAdmin), paymentHandler.RefundPayment)
	protected.Put("/payments/:id/dispute", paymentHandler.DisputePayment)
	protected.Put("/payments/:id/release", paymentHandler.ReleaseEscrow)

	// Blockchain Routes
	protected.Get("/blockchain/info", chainHandler.GetInfo)
	protected.Get("/blockchain/pending", chainHandler.GetPending)
	protected.Post("/blockchain/sync/products/:id", chainHandler.SyncProduct)
	protected.Post("/blockchain/sync/shipments/:id", chainHandler.SyncShipment)
	protected.Post("/blockchain/sync/documents/:id", chainHandler.SyncDocument)
	protected.Post("/blockchain/sync/payments/:id", chainHandler.SyncPayment)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// buildLedger connects the contract gateway, or falls back to the disabled
// ledger when no sender key is configured. With the disabled ledger every
// write lands locally and queues for reconciliation.
func buildLedger(cfg *config.Config, zlog *zap.Logger) (service.Ledger, *chain.Gateway) {
	if cfg.LedgerDisabled {
		zlog.Warn("LEDGER_SENDER_KEY not set, running without ledger connection")
		return service.DisabledLedger(), nil
	}

	client, err := chain.Dial(cfg.LedgerRPCURL)
	if err != nil {
		zlog.Warn("ledger RPC unreachable, running without ledger connection",
			zap.String("url", cfg.LedgerRPCURL),
			zap.Error(err))
		return service.DisabledLedger(), nil
	}

	gateway, err := chain.NewGateway(client, cfg.ChainConfig(), zlog)
	if err != nil {
		log.Fatalf("Failed to init ledger gateway: %v", err)
	}
	return gateway, gateway
}

// seedAdmin creates the default admin user if it doesn't exist
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	_, err := userRepo.FindByEmail("admin@example.com")
	if err == nil {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "Administrator",
		Company:  "Supply Chain Ledger",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("✅ Admin user created: admin@example.com / admin123")
	}
}
