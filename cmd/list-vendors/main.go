package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ryangomba/abunco/internal/auth"
	"github.com/ryangomba/abunco/internal/config"
	"github.com/ryangomba/abunco/internal/service"
)

// Enumerates the vendors on one tenant's shop. Debugging tool.
func main() {
	storeSlug := flag.String("store", "", "tenant store slug")
	flag.Parse()

	if *storeSlug == "" {
		log.Fatal("usage: list-vendors -store <slug>")
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	tenants := auth.NewTenants(cfg.Users)
	rc, err := auth.NewContextForRequest(tenants, *storeSlug, logger)
	if err != nil {
		log.Fatalf("Failed to resolve tenant: %v", err)
	}

	catalog := service.NewCatalog(logger)
	vendors, err := catalog.VendorsForStore(context.Background(), rc, *storeSlug)
	if err != nil {
		log.Fatalf("Failed to list vendors: %v", err)
	}

	for _, v := range vendors {
		fmt.Println(v.Name)
	}
	fmt.Printf("%d vendors\n", len(vendors))
}
