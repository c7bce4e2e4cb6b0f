package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ryangomba/abunco/internal/auth"
	"github.com/ryangomba/abunco/internal/domain"
	"github.com/ryangomba/abunco/internal/shopify"
	apperrors "github.com/ryangomba/abunco/pkg/errors"
)

// Catalog holds the record fetchers and mutation orchestrators. All
// per-request state (Shopify client, record cache) lives on the request
// context; Catalog itself is shared and stateless.
type Catalog struct {
	logger *zap.Logger
}

func NewCatalog(logger *zap.Logger) *Catalog {
	return &Catalog{logger: logger}
}

// ProductWithID returns the product from the request cache, or fetches it
// from Shopify. A fetch also warms the cache with the product's variants,
// unit metafields and inventory items so that resolving each variant's
// fields needs no further round trips.
func (s *Catalog) ProductWithID(ctx context.Context, rc *auth.Context, productID string) (*domain.Product, error) {
	rec, err := rc.Records.FetchOnce(productID, func() (domain.Record, error) {
		shopifyProduct, err := rc.Shopify.GetProductWithID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := s.cacheProductBundles(ctx, rc, []shopify.Product{*shopifyProduct}); err != nil {
			return nil, err
		}
		product := ProductFromShopifyProduct(rc.StoreSlug, shopifyProduct)
		rc.Records.Set(product)
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return recordAs[*domain.Product](rec, "product")
}

// ProductsForVendor lists a vendor's products and warms the cache with
// everything fetched along the way.
func (s *Catalog) ProductsForVendor(ctx context.Context, rc *auth.Context, vendorID string) ([]*domain.Product, error) {
	shopifyProducts, err := rc.Shopify.GetProducts(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if err := s.cacheProductBundles(ctx, rc, shopifyProducts); err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(shopifyProducts))
	records := make([]domain.Record, 0, len(shopifyProducts))
	for i := range shopifyProducts {
		product := ProductFromShopifyProduct(rc.StoreSlug, &shopifyProducts[i])
		products = append(products, product)
		records = append(records, product)
	}
	rc.Records.SetMany(records)
	return products, nil
}

// ProductVariantWithID returns the variant from the request cache, or
// fetches it from Shopify. The owning product is fetched and cached first
// so product-level fields resolve without another round trip later.
func (s *Catalog) ProductVariantWithID(ctx context.Context, rc *auth.Context, variantID string) (*domain.ProductVariant, error) {
	rec, err := rc.Records.FetchOnce(variantID, func() (domain.Record, error) {
		shopifyVariant, err := rc.Shopify.GetProductVariantWithID(ctx, variantID)
		if err != nil {
			return nil, err
		}
		variant := ProductVariantFromShopifyVariant(shopifyVariant)
		if _, err := s.ProductWithID(ctx, rc, variant.ProductID); err != nil {
			return nil, err
		}
		rc.Records.Set(variant)
		return variant, nil
	})
	if err != nil {
		return nil, err
	}
	return recordAs[*domain.ProductVariant](rec, "product variant")
}

// InventoryItemWithID returns the inventory item from the request cache,
// or fetches it from Shopify.
func (s *Catalog) InventoryItemWithID(ctx context.Context, rc *auth.Context, inventoryItemID string) (*domain.InventoryItem, error) {
	rec, err := rc.Records.FetchOnce(inventoryItemID, func() (domain.Record, error) {
		shopifyItem, err := rc.Shopify.GetInventoryItemWithID(ctx, inventoryItemID)
		if err != nil {
			return nil, err
		}
		item := InventoryItemFromShopifyInventoryItem(shopifyItem)
		rc.Records.Set(item)
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	return recordAs[*domain.InventoryItem](rec, "inventory item")
}

// ProductVariantUnit returns the unit record for a variant. When the
// variant has no unit metafield the record carries a nil value; that is
// not an error.
func (s *Catalog) ProductVariantUnit(ctx context.Context, rc *auth.Context, variantID string) (*domain.ProductVariantUnit, error) {
	unitID := domain.UnitRecordID(variantID)
	rec, err := rc.Records.FetchOnce(unitID, func() (domain.Record, error) {
		metafields, err := rc.Shopify.GetMetafieldsForProductVariants(ctx, []string{variantID})
		if err != nil {
			return nil, err
		}
		unit := ProductVariantUnitFromMetafields(variantID, metafields)
		rc.Records.Set(unit)
		return unit, nil
	})
	if err != nil {
		return nil, err
	}
	return recordAs[*domain.ProductVariantUnit](rec, "product variant unit")
}

// VendorWithID resolves a vendor by enumerating the shop's vendor names.
// Shopify has no get-vendor-by-id capability.
func (s *Catalog) VendorWithID(ctx context.Context, rc *auth.Context, vendorID string) (*domain.Vendor, error) {
	names, err := rc.Shopify.GetProductVendors(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if name == vendorID {
			return VendorFromShopifyVendor(rc.StoreSlug, name), nil
		}
	}
	return nil, &apperrors.ErrNotFound{Resource: "vendor", ID: vendorID}
}

// VendorsForStore lists all vendors on the shop.
func (s *Catalog) VendorsForStore(ctx context.Context, rc *auth.Context, storeID string) ([]*domain.Vendor, error) {
	names, err := rc.Shopify.GetProductVendors(ctx)
	if err != nil {
		return nil, err
	}
	vendors := make([]*domain.Vendor, 0, len(names))
	for _, name := range names {
		vendors = append(vendors, VendorFromShopifyVendor(rc.StoreSlug, name))
	}
	return vendors, nil
}

// StoreWithID resolves a store from the static tenant table; stores do
// not exist upstream.
func (s *Catalog) StoreWithID(ctx context.Context, rc *auth.Context, storeID string) (*domain.Store, error) {
	userConfig, err := rc.Tenants.UserConfigForStore(storeID)
	if err != nil {
		return nil, err
	}
	return &domain.Store{ID: storeID, Name: userConfig.CompanyName}, nil
}

// cacheProductBundles warms the request cache with the variants, unit
// metafields and inventory items of the given Shopify products. The two
// bulk upstream calls are independent and run concurrently.
func (s *Catalog) cacheProductBundles(ctx context.Context, rc *auth.Context, shopifyProducts []shopify.Product) error {
	var variantIDs []string
	var inventoryItemIDs []string
	var variantRecords []domain.Record
	for i := range shopifyProducts {
		for j := range shopifyProducts[i].Variants {
			v := &shopifyProducts[i].Variants[j]
			variantIDs = append(variantIDs, strconv.FormatInt(v.ID, 10))
			inventoryItemIDs = append(inventoryItemIDs, strconv.FormatInt(v.InventoryItemID, 10))
			variantRecords = append(variantRecords, ProductVariantFromShopifyVariant(v))
		}
	}
	rc.Records.SetMany(variantRecords)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metafields, err := rc.Shopify.GetMetafieldsForProductVariants(gctx, variantIDs)
		if err != nil {
			return err
		}
		units := make([]domain.Record, 0, len(variantIDs))
		for _, variantID := range variantIDs {
			units = append(units, ProductVariantUnitFromMetafields(variantID, metafields))
		}
		rc.Records.SetMany(units)
		return nil
	})
	g.Go(func() error {
		shopifyItems, err := rc.Shopify.GetInventoryItemsWithIDs(gctx, inventoryItemIDs)
		if err != nil {
			return err
		}
		items := make([]domain.Record, 0, len(shopifyItems))
		for i := range shopifyItems {
			items = append(items, InventoryItemFromShopifyInventoryItem(&shopifyItems[i]))
		}
		rc.Records.SetMany(items)
		return nil
	})
	return g.Wait()
}

func recordAs[T domain.Record](rec domain.Record, kind string) (T, error) {
	typed, ok := rec.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cached record %s is not a %s", rec.RecordID(), kind)
	}
	return typed, nil
}
