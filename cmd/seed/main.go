package main

import (
	"context"
	"flag"
	"log"

	"scanstock/internal/db"
	"scanstock/internal/domain"
	"scanstock/internal/store"
)

// seed loads a handful of real EAN-13 products into the catalog so a fresh
// install has something to scan. Upserts, so it is safe to run repeatedly.
func main() {
	dbPath := flag.String("db", "/data/scanstock.db", "path to the sqlite database")
	flag.Parse()

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	products := []domain.Product{
		{Code: "5000112576009", Name: "Coca Cola", Brand: "Coca-Cola", Category: "Beverages"},
		{Code: "4006809087906", Name: "Nivea Cream", Brand: "Nivea", Category: "Personal Care"},
		{Code: "8076809514118", Name: "Nutella", Brand: "Ferrero", Category: "Food"},
	}

	ctx := context.Background()
	productStore := store.NewProductStore(database)
	for i := range products {
		if err := productStore.Put(ctx, &products[i]); err != nil {
			log.Fatalf("failed to seed %s: %v", products[i].Code, err)
		}
		log.Printf("seeded %s (%s)", products[i].Name, products[i].Code)
	}
}
