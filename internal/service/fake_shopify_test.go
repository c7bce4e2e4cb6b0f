package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/ryangomba/abunco/internal/auth"
	"github.com/ryangomba/abunco/internal/cache"
	"github.com/ryangomba/abunco/internal/config"
	"github.com/ryangomba/abunco/internal/shopify"
	apperrors "github.com/ryangomba/abunco/pkg/errors"
)

// fakeShopify is an in-memory stand-in for the Shopify API. Every call
// that would hit the network is recorded so tests can assert on exactly
// which upstream traffic an operation produced.
type fakeShopify struct {
	mu            sync.Mutex
	products      map[string]*shopify.Product
	items         map[string]*shopify.InventoryItem
	units         map[string]string
	vendors       []string
	writesEnabled bool
	calls         []string
	nextID        int64
}

var _ shopify.API = (*fakeShopify)(nil)

var mutatingCallNames = map[string]bool{
	"CreateProduct":                  true,
	"UpdateProduct":                  true,
	"UpdateProductVariant":           true,
	"UpdateInventory":                true,
	"SetProductVariantUnitMetafield": true,
	"DeleteProduct":                  true,
	"DeleteProductVariant":           true,
}

func newFakeShopify() *fakeShopify {
	f := &fakeShopify{
		products:      make(map[string]*shopify.Product),
		items:         make(map[string]*shopify.InventoryItem),
		units:         make(map[string]string),
		vendors:       []string{"Acme Farms", "Bee Happy"},
		writesEnabled: true,
		nextID:        9000,
	}
	f.addProduct(&shopify.Product{
		ID: 1001, Title: "Honey", BodyHTML: "<p>Raw honey</p>", Vendor: "Acme Farms",
		Status: "active", CreatedAt: "2021-09-28T12:54:22-07:00",
		Variants: []shopify.Variant{
			{ID: 2001, ProductID: 1001, Title: "500g", Price: "10.00", CreatedAt: "2021-09-28T12:54:22-07:00", InventoryItemID: 3001, InventoryQuantity: 5},
			{ID: 2002, ProductID: 1001, Title: "1kg", Price: "18.00", CreatedAt: "2021-09-28T12:54:22-07:00", InventoryItemID: 3002, InventoryQuantity: 3},
		},
	})
	f.addProduct(&shopify.Product{
		ID: 1002, Title: "Jam", BodyHTML: "<p>Berry jam</p>", Vendor: "Acme Farms",
		Status: "active", CreatedAt: "2021-10-01T08:00:00-07:00",
		Variants: []shopify.Variant{
			{ID: 2003, ProductID: 1002, Title: "Default Title", Price: "6.50", CreatedAt: "2021-10-01T08:00:00-07:00", InventoryItemID: 3003, InventoryQuantity: 7},
		},
	})
	f.items["3001"] = &shopify.InventoryItem{ID: 3001, Cost: "4.00"}
	f.items["3002"] = &shopify.InventoryItem{ID: 3002, Cost: "7.00"}
	f.items["3003"] = &shopify.InventoryItem{ID: 3003, Cost: "2.50"}
	f.units["2001"] = "g"
	f.units["2002"] = "kg"
	return f
}

func (f *fakeShopify) addProduct(p *shopify.Product) {
	f.products[strconv.FormatInt(p.ID, 10)] = p
}

func (f *fakeShopify) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeShopify) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeShopify) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeShopify) mutatingCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if mutatingCallNames[c] {
			n++
		}
	}
	return n
}

func (f *fakeShopify) checkWrites() error {
	if !f.writesEnabled {
		return &apperrors.ErrWritesDisabled{StoreSlug: "acme"}
	}
	return nil
}

func copyProduct(p *shopify.Product) *shopify.Product {
	out := *p
	out.Variants = append([]shopify.Variant(nil), p.Variants...)
	out.Images = append([]shopify.Image(nil), p.Images...)
	return &out
}

func (f *fakeShopify) GetProductWithID(ctx context.Context, id string) (*shopify.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetProductWithID")
	p, ok := f.products[id]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "product", ID: id}
	}
	return copyProduct(p), nil
}

func (f *fakeShopify) GetProducts(ctx context.Context, vendorName string) ([]shopify.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetProducts")
	var out []shopify.Product
	for _, p := range f.products {
		if vendorName == "" || p.Vendor == vendorName {
			out = append(out, *copyProduct(p))
		}
	}
	return out, nil
}

func (f *fakeShopify) GetProductVariantWithID(ctx context.Context, id string) (*shopify.Variant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetProductVariantWithID")
	v, ok := f.findVariant(id)
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "variant", ID: id}
	}
	out := *v
	return &out, nil
}

func (f *fakeShopify) findVariant(id string) (*shopify.Variant, bool) {
	for _, p := range f.products {
		for i := range p.Variants {
			if strconv.FormatInt(p.Variants[i].ID, 10) == id {
				return &p.Variants[i], true
			}
		}
	}
	return nil, false
}

func (f *fakeShopify) GetInventoryItemWithID(ctx context.Context, id string) (*shopify.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetInventoryItemWithID")
	item, ok := f.items[id]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "inventory item", ID: id}
	}
	out := *item
	return &out, nil
}

func (f *fakeShopify) GetInventoryItemsWithIDs(ctx context.Context, ids []string) ([]shopify.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetInventoryItemsWithIDs")
	var out []shopify.InventoryItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeShopify) GetMetafieldsForProductVariants(ctx context.Context, ids []string) ([]shopify.Metafield, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetMetafieldsForProductVariants")
	var out []shopify.Metafield
	for _, id := range ids {
		value, ok := f.units[id]
		if !ok {
			continue
		}
		ownerID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad variant id %q", id)
		}
		out = append(out, shopify.Metafield{
			Namespace: shopify.MetafieldNamespace,
			Key:       shopify.UnitMetafieldKey,
			Value:     value,
			OwnerID:   ownerID,
		})
	}
	return out, nil
}

func (f *fakeShopify) GetProductVendors(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetProductVendors")
	return append([]string(nil), f.vendors...), nil
}

func (f *fakeShopify) CreateProduct(ctx context.Context, info shopify.ProductCreateInfo) (*shopify.Product, error) {
	if err := f.checkWrites(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateProduct")

	productID := f.nextID
	variantID := f.nextID + 1
	itemID := f.nextID + 2
	f.nextID += 3

	price := ""
	if len(info.Variants) > 0 {
		price = info.Variants[0].Price
	}
	product := &shopify.Product{
		ID: productID, Title: info.Title, BodyHTML: info.BodyHTML, Vendor: info.Vendor,
		Status: "active", CreatedAt: "2021-11-01T00:00:00-07:00",
		Variants: []shopify.Variant{
			{ID: variantID, ProductID: productID, Title: "Default Title", Price: price, CreatedAt: "2021-11-01T00:00:00-07:00", InventoryItemID: itemID},
		},
	}
	f.addProduct(product)
	f.items[strconv.FormatInt(itemID, 10)] = &shopify.InventoryItem{ID: itemID, Cost: "0.00"}
	for _, v := range info.Variants {
		for _, m := range v.Metafields {
			if m.Key == shopify.UnitMetafieldKey {
				f.units[strconv.FormatInt(variantID, 10)] = m.Value
			}
		}
	}
	return copyProduct(product), nil
}

func (f *fakeShopify) UpdateProduct(ctx context.Context, id string, updates shopify.ProductUpdates) (*shopify.Product, error) {
	if err := f.checkWrites(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateProduct")
	p, ok := f.products[id]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "product", ID: id}
	}
	if updates.Status != nil {
		p.Status = *updates.Status
	}
	if updates.Title != nil {
		p.Title = *updates.Title
	}
	if updates.BodyHTML != nil {
		p.BodyHTML = *updates.BodyHTML
	}
	return copyProduct(p), nil
}

func (f *fakeShopify) UpdateProductVariant(ctx context.Context, id string, updates shopify.VariantUpdates) (*shopify.Variant, error) {
	if err := f.checkWrites(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateProductVariant")
	v, ok := f.findVariant(id)
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "variant", ID: id}
	}
	if updates.Price != nil {
		v.Price = *updates.Price
	}
	out := *v
	return &out, nil
}

func (f *fakeShopify) UpdateInventory(ctx context.Context, inventoryItemID string, updates shopify.InventoryUpdates) (*shopify.InventoryItem, error) {
	if err := f.checkWrites(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateInventory")
	item, ok := f.items[inventoryItemID]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "inventory item", ID: inventoryItemID}
	}
	if updates.Cost != nil {
		item.Cost = *updates.Cost
	}
	if updates.Quantity != nil {
		for _, p := range f.products {
			for i := range p.Variants {
				if strconv.FormatInt(p.Variants[i].InventoryItemID, 10) == inventoryItemID {
					p.Variants[i].InventoryQuantity = *updates.Quantity
				}
			}
		}
	}
	out := *item
	return &out, nil
}

func (f *fakeShopify) SetProductVariantUnitMetafield(ctx context.Context, id string, value string) (*shopify.Metafield, error) {
	if err := f.checkWrites(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetProductVariantUnitMetafield")
	f.units[id] = value
	ownerID, _ := strconv.ParseInt(id, 10, 64)
	return &shopify.Metafield{
		Namespace: shopify.MetafieldNamespace,
		Key:       shopify.UnitMetafieldKey,
		Value:     value,
		OwnerID:   ownerID,
	}, nil
}

func (f *fakeShopify) DeleteProduct(ctx context.Context, productID string) error {
	if err := f.checkWrites(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteProduct")
	delete(f.products, productID)
	return nil
}

func (f *fakeShopify) DeleteProductVariant(ctx context.Context, productID, id string) error {
	if err := f.checkWrites(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteProductVariant")
	p, ok := f.products[productID]
	if !ok {
		return &apperrors.ErrNotFound{Resource: "product", ID: productID}
	}
	kept := p.Variants[:0]
	for _, v := range p.Variants {
		if strconv.FormatInt(v.ID, 10) != id {
			kept = append(kept, v)
		}
	}
	p.Variants = kept
	return nil
}

func newTestContext(fake *fakeShopify) *auth.Context {
	tenants := auth.NewTenants([]config.UserConfig{
		{
			Slug:             "acme",
			CompanyName:      "Acme Co",
			ShopifyStoreSlug: "acme-test",
			ShopifyAPISecret: "secret",
		},
	})
	return &auth.Context{
		RequestID:   "test-request",
		StoreSlug:   "acme",
		CompanyName: "Acme Co",
		Tenants:     tenants,
		Shopify:     fake,
		Records:     cache.New(),
	}
}

func newTestCatalog() *Catalog {
	return NewCatalog(zap.NewNop())
}
