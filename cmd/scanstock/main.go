package main

import (
	"log"

	"scanstock/internal/config"
	"scanstock/internal/db"
	"scanstock/internal/decode"
	"scanstock/internal/inventory"
	"scanstock/internal/logging"
	"scanstock/internal/scan"
	"scanstock/internal/store"
	"scanstock/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	productStore := store.NewProductStore(database)
	inventoryStore := store.NewInventoryStore(database)
	transactionStore := store.NewTransactionStore(database)

	resolver := inventory.NewResolver(productStore, inventoryStore)
	engine := inventory.NewEngine(inventoryStore, transactionStore, cfg.ActorID, logger)
	dashboard := inventory.NewDashboard(productStore, inventoryStore, transactionStore, cfg.LowStockThreshold)

	debouncer := scan.NewDebouncer(cfg.ScanCooldown)
	controller := scan.NewController(debouncer, resolver, engine, logger)

	server := web.NewServer(controller, decode.NewImageDecoder(), dashboard, productStore, transactionStore, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
