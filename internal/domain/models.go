package domain

import (
	"fmt"
	"time"
)

// Record is any cacheable domain entity. IDs are globally unique across
// entity kinds, which is what lets the request cache stay a single flat
// mapping from id to record.
type Record interface {
	RecordID() string
}

// Store is resolved from static per-tenant configuration, not Shopify.
type Store struct {
	ID   string
	Name string
}

func (s *Store) RecordID() string { return s.ID }

// Vendor is derived from the distinct set of product vendor names; Shopify
// has no first-class vendor entity. Its id is the vendor name itself.
type Vendor struct {
	ID        string
	Name      string
	StoreID   string
	CreatedAt time.Time
}

func (v *Vendor) RecordID() string { return v.ID }

// Product is an immutable snapshot of a Shopify product. Description is
// plain text with HTML stripped. VariantIDs is ordered and never empty.
type Product struct {
	ID          string
	Status      ProductStatus
	StoreID     string
	VendorID    string
	Name        string
	Description string
	ImageURI    *string
	VariantIDs  []string
	CreatedAt   time.Time
}

func (p *Product) RecordID() string { return p.ID }

// ProductVariant carries price as a decimal string, never a float.
type ProductVariant struct {
	ID              string
	ProductID       string
	Name            string
	Price           string
	Quantity        int
	InventoryItemID string
	CreatedAt       time.Time
}

func (v *ProductVariant) RecordID() string { return v.ID }

// InventoryItem carries cost as a decimal string.
type InventoryItem struct {
	ID   string
	Cost string
}

func (i *InventoryItem) RecordID() string { return i.ID }

// ProductVariantUnit is the custom "unit/size" tag stored as a Shopify
// metafield. Value is nil when the metafield is unset.
type ProductVariantUnit struct {
	ID    string // "<variantID>.unit"
	Value *string
}

func (u *ProductVariantUnit) RecordID() string { return u.ID }

// UnitRecordID derives the cache id for a variant's unit metafield.
func UnitRecordID(variantID string) string {
	return fmt.Sprintf("%s.unit", variantID)
}

// IsDefault reports whether the variant is the sole variant of its product.
func IsDefault(p *Product) bool {
	return len(p.VariantIDs) == 1
}

// DisplayName is the product name, with the variant name appended in
// parentheses only when the product has more than one variant.
func DisplayName(p *Product, v *ProductVariant) string {
	if len(p.VariantIDs) > 1 {
		return fmt.Sprintf("%s (%s)", p.Name, v.Name)
	}
	return p.Name
}

// ProductBundle groups a product with the variants and inventory items
// fetched alongside it.
type ProductBundle struct {
	Product        *Product
	Variants       []*ProductVariant
	InventoryItems []*InventoryItem
}

// ProductVariantBundle pairs one variant with its product and inventory item.
type ProductVariantBundle struct {
	Product       *Product
	Variant       *ProductVariant
	InventoryItem *InventoryItem
}

// VariantBundles splits a product bundle into per-variant bundles, matching
// each variant with its inventory item by id.
func (pb *ProductBundle) VariantBundles() []ProductVariantBundle {
	byID := make(map[string]*InventoryItem, len(pb.InventoryItems))
	for _, item := range pb.InventoryItems {
		byID[item.ID] = item
	}
	bundles := make([]ProductVariantBundle, 0, len(pb.Variants))
	for _, v := range pb.Variants {
		bundles = append(bundles, ProductVariantBundle{
			Product:       pb.Product,
			Variant:       v,
			InventoryItem: byID[v.InventoryItemID],
		})
	}
	return bundles
}
