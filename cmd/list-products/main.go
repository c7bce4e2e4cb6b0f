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
	"github.com/ryangomba/abunco/internal/domain"
	"github.com/ryangomba/abunco/internal/service"
)

// Lists a vendor's products for one tenant. Debugging tool; reads the
// same USER_CONFIGS the server does.
func main() {
	storeSlug := flag.String("store", "", "tenant store slug")
	vendorID := flag.String("vendor", "", "vendor name to filter by")
	flag.Parse()

	if *storeSlug == "" {
		log.Fatal("usage: list-products -store <slug> [-vendor <name>]")
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
	ctx := context.Background()
	products, err := catalog.ProductsForVendor(ctx, rc, *vendorID)
	if err != nil {
		log.Fatalf("Failed to list products: %v", err)
	}

	for _, p := range products {
		fmt.Printf("%s  %-8s  %s (vendor: %s)\n", p.ID, p.Status, p.Name, p.VendorID)

		bundle := domain.ProductBundle{Product: p}
		for _, variantID := range p.VariantIDs {
			variant, err := catalog.ProductVariantWithID(ctx, rc, variantID)
			if err != nil {
				log.Fatalf("Failed to fetch variant %s: %v", variantID, err)
			}
			item, err := catalog.InventoryItemWithID(ctx, rc, variant.InventoryItemID)
			if err != nil {
				log.Fatalf("Failed to fetch inventory item %s: %v", variant.InventoryItemID, err)
			}
			bundle.Variants = append(bundle.Variants, variant)
			bundle.InventoryItems = append(bundle.InventoryItems, item)
		}
		for _, vb := range bundle.VariantBundles() {
			fmt.Printf("    %s  %-30s  price %s  cost %s  qty %d\n",
				vb.Variant.ID, domain.DisplayName(vb.Product, vb.Variant),
				vb.Variant.Price, vb.InventoryItem.Cost, vb.Variant.Quantity)
		}
	}
	fmt.Printf("%d products\n", len(products))
}
