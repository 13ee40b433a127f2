package main

import (
	"context"
	"log"

	"go-supplychain-ledger/internal/chain"
	"go-supplychain-ledger/internal/config"
	"go-supplychain-ledger/internal/repository"
	"go-supplychain-ledger/internal/service"
	"go-supplychain-ledger/internal/ws"
	"go-supplychain-ledger/pkg/database"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// One-shot reconciliation sweep: re-drives the ledger write for every record
// still carrying a pending marker. Run it from cron or after the RPC endpoint
// comes back. Records whose retry fails again simply keep their marker.
func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.LedgerDisabled {
		log.Fatal("❌ LEDGER_SENDER_KEY not set, nothing to reconcile against")
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Setup Database + Gateway
	db := database.ConnectDB()

	client, err := chain.Dial(cfg.LedgerRPCURL)
	if err != nil {
		log.Fatalf("❌ Ledger RPC unreachable: %v", err)
	}
	gateway, err := chain.NewGateway(client, cfg.ChainConfig(), zlog)
	if err != nil {
		log.Fatalf("❌ Failed to init ledger gateway: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	shipmentRepo := repository.NewShipmentRepo(db)
	documentRepo := repository.NewDocumentRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	products := service.NewProductService(productRepo, gateway, hub, zlog)
	shipments := service.NewShipmentService(shipmentRepo, productRepo, gateway, hub, zlog)
	documents := service.NewDocumentService(documentRepo, productRepo, shipmentRepo, gateway, hub, zlog)
	payments := service.NewPaymentService(paymentRepo, productRepo, userRepo, gateway, hub, zlog)

	ctx := context.Background()
	synced, remaining := 0, 0

	// 3. Sweep products first so dependent records can resolve a chain ID
	pendingProducts, err := products.ListPending()
	if err != nil {
		log.Fatalf("❌ Failed to list pending products: %v", err)
	}
	for i := range pendingProducts {
		p, err := products.Sync(ctx, pendingProducts[i].ID)
		tally(&synced, &remaining, err == nil && p.Synced())
	}

	pendingShipments, err := shipments.ListPending()
	if err != nil {
		log.Fatalf("❌ Failed to list pending shipments: %v", err)
	}
	for i := range pendingShipments {
		s, err := shipments.Sync(ctx, pendingShipments[i].ID)
		tally(&synced, &remaining, err == nil && s.Synced())
	}

	pendingDocuments, err := documents.ListPending()
	if err != nil {
		log.Fatalf("❌ Failed to list pending documents: %v", err)
	}
	for i := range pendingDocuments {
		d, err := documents.Sync(ctx, pendingDocuments[i].ID)
		tally(&synced, &remaining, err == nil && d.Synced())
	}

	pendingPayments, err := payments.ListPending()
	if err != nil {
		log.Fatalf("❌ Failed to list pending payments: %v", err)
	}
	for i := range pendingPayments {
		p, err := payments.Sync(ctx, pendingPayments[i].ID)
		tally(&synced, &remaining, err == nil && p.Synced())
	}

	log.Printf("✅ Reconciliation sweep done: %d synced, %d still pending", synced, remaining)
}

func tally(synced, remaining *int, ok bool) {
	if ok {
		*synced++
	} else {
		*remaining++
	}
}
