package shopify

import (
	"fmt"
)

// AuthInfo carries one tenant's Shopify credentials and write permissions.
type AuthInfo struct {
	StoreSlug     string
	APIKey        string
	APISecret     string
	LocationID    string
	WritesEnabled bool
}

// InventoryItem is the Shopify inventory item wire shape.
type InventoryItem struct {
	ID               int64  `json:"id"`
	Cost             string `json:"cost"`
	SKU              string `json:"sku"`
	Tracked          bool   `json:"tracked"`
	RequiresShipping bool   `json:"requires_shipping"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func (i *InventoryItem) validate() error {
	if i.ID == 0 {
		return fmt.Errorf("inventory item missing id")
	}
	return nil
}

// Variant is the Shopify product variant wire shape.
type Variant struct {
	ID                int64   `json:"id"`
	ProductID         int64   `json:"product_id"`
	Title             string  `json:"title"`
	Price             string  `json:"price"`
	SKU               *string `json:"sku"`
	Position          int     `json:"position"`
	InventoryPolicy   string  `json:"inventory_policy"`
	CompareAtPrice    *string `json:"compare_at_price"`
	InventoryMgmt     string  `json:"inventory_management"`
	Option1           string  `json:"option1"`
	Option2           *string `json:"option2"`
	Option3           *string `json:"option3"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
	ImageID           *int64  `json:"image_id"`
	InventoryItemID   int64   `json:"inventory_item_id"`
	InventoryQuantity int     `json:"inventory_quantity"`
}

func (v *Variant) validate() error {
	if v.ID == 0 {
		return fmt.Errorf("variant missing id")
	}
	if v.ProductID == 0 {
		return fmt.Errorf("variant %d missing product_id", v.ID)
	}
	if v.InventoryItemID == 0 {
		return fmt.Errorf("variant %d missing inventory_item_id", v.ID)
	}
	if v.Price == "" {
		return fmt.Errorf("variant %d missing price", v.ID)
	}
	return nil
}

// Option is the Shopify product option wire shape.
type Option struct {
	ID        int64    `json:"id"`
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Position  int      `json:"position"`
	Values    []string `json:"values"`
}

// Image is the Shopify product image wire shape.
type Image struct {
	ID         int64   `json:"id"`
	ProductID  int64   `json:"product_id"`
	Position   int     `json:"position"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
	Alt        *string `json:"alt"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Src        string  `json:"src"`
	VariantIDs []int64 `json:"variant_ids"`
}

// Product is the Shopify product wire shape.
type Product struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	BodyHTML  string    `json:"body_html"`
	Vendor    string    `json:"vendor"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
	Handle    string    `json:"handle"`
	Status    string    `json:"status"`
	Tags      string    `json:"tags"`
	Variants  []Variant `json:"variants"`
	Options   []Option  `json:"options"`
	Images    []Image   `json:"images"`
	Image     *Image    `json:"image"`
}

func (p *Product) validate() error {
	if p.ID == 0 {
		return fmt.Errorf("product missing id")
	}
	if p.Status == "" {
		return fmt.Errorf("product %d missing status", p.ID)
	}
	if len(p.Variants) == 0 {
		return fmt.Errorf("product %d has no variants", p.ID)
	}
	for i := range p.Variants {
		if err := p.Variants[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

// Metafield is the normalized unit metafield shape returned by the bulk
// metafield lookup.
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	OwnerID   int64  `json:"owner_id"`
}

// ImageInfo is the write payload for a product image: either an existing
// image by id, or a new one from a base64 attachment.
type ImageInfo struct {
	ID         string `json:"id,omitempty"`
	Attachment string `json:"attachment,omitempty"`
}

// MetafieldInfo is the write payload for a variant metafield.
type MetafieldInfo struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// VariantInfo is the write payload for a variant within a product create.
type VariantInfo struct {
	Price         string          `json:"price,omitempty"`
	InventoryMgmt string          `json:"inventory_management,omitempty"`
	Metafields    []MetafieldInfo `json:"metafields,omitempty"`
}

// OptionInfo is the write payload for a product option.
type OptionInfo struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ProductCreateInfo is the write payload for creating a product.
type ProductCreateInfo struct {
	Title    string        `json:"title"`
	BodyHTML string        `json:"body_html"`
	Vendor   string        `json:"vendor"`
	Images   []ImageInfo   `json:"images"`
	Options  []OptionInfo  `json:"options,omitempty"`
	Variants []VariantInfo `json:"variants,omitempty"`
}

// ProductUpdates is the partial-update payload for a product. Nil fields
// are omitted from the request and left untouched upstream. Images is a
// pointer so an explicit empty list (remove all images) still serializes.
type ProductUpdates struct {
	Status   *string      `json:"status,omitempty"`
	Title    *string      `json:"title,omitempty"`
	BodyHTML *string      `json:"body_html,omitempty"`
	Images   *[]ImageInfo `json:"images,omitempty"`
}

// VariantUpdates is the partial-update payload for a variant.
type VariantUpdates struct {
	Price         *string `json:"price,omitempty"`
	InventoryMgmt *string `json:"inventory_management,omitempty"`
}

// InventoryUpdates carries the independently optional parts of an
// inventory write: item cost and stock level at the tenant's location.
type InventoryUpdates struct {
	Cost     *string
	Quantity *int
}
