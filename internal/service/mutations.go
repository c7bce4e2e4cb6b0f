package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ryangomba/abunco/internal/auth"
	"github.com/ryangomba/abunco/internal/domain"
	"github.com/ryangomba/abunco/internal/shopify"
	apperrors "github.com/ryangomba/abunco/pkg/errors"
)

// CreateProductVariantInfo is the input for creating a product with its
// first variant. ProductImageData, when set, is base64 image data
// (optionally with a data-URI prefix).
type CreateProductVariantInfo struct {
	VendorID           string
	ProductName        string
	ProductDescription string
	ProductImageData   string
	Size               string
	Cost               string
	Price              string
	Quantity           int
}

// UpdateProductVariantInfo is the partial-update input for a variant. Nil
// fields mean "no change". ProductImage carries the three-state image
// argument explicitly.
type UpdateProductVariantInfo struct {
	ProductName        *string
	ProductDescription *string
	ProductImage       domain.ImagePatch
	Size               *string
	Cost               *string
	Price              *string
	Quantity           *int
}

// CreateProductVariant creates a new Shopify product carrying one variant
// with a "Size" option, then issues a follow-up inventory update for cost
// and quantity; Shopify's create endpoint does not accept inventory cost
// in the same call. The cache is not pre-populated; callers re-fetch if
// they need the record.
func (s *Catalog) CreateProductVariant(ctx context.Context, rc *auth.Context, info CreateProductVariantInfo) (*domain.ProductVariant, error) {
	if err := validateDecimal("price", info.Price); err != nil {
		return nil, err
	}
	if err := validateDecimal("cost", info.Cost); err != nil {
		return nil, err
	}
	if err := validateQuantity(info.Quantity); err != nil {
		return nil, err
	}

	var images []shopify.ImageInfo
	if info.ProductImageData != "" {
		images = []shopify.ImageInfo{
			{Attachment: attachmentDataForBase64ImageData(info.ProductImageData)},
		}
	}
	shopifyProduct, err := rc.Shopify.CreateProduct(ctx, shopify.ProductCreateInfo{
		Title:    info.ProductName,
		BodyHTML: info.ProductDescription,
		Vendor:   info.VendorID,
		Images:   images,
		Options: []shopify.OptionInfo{
			{Name: "Size", Values: []string{info.Size}},
		},
		Variants: []shopify.VariantInfo{
			{
				Price:         info.Price,
				InventoryMgmt: "shopify",
				Metafields: []shopify.MetafieldInfo{
					{
						Namespace: shopify.MetafieldNamespace,
						Key:       shopify.UnitMetafieldKey,
						Type:      "single_line_text_field",
						Value:     info.Size,
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	shopifyVariant := shopifyProduct.Variants[0]
	cost := info.Cost
	quantity := info.Quantity
	if _, err := rc.Shopify.UpdateInventory(ctx, formatID(shopifyVariant.InventoryItemID), shopify.InventoryUpdates{
		Cost:     &cost,
		Quantity: &quantity,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Created product variant",
		zap.String("requestID", rc.RequestID),
		zap.Int64("productID", shopifyProduct.ID),
		zap.Int64("variantID", shopifyVariant.ID),
	)
	return ProductVariantFromShopifyVariant(&shopifyVariant), nil
}

// UpdateProductVariant applies a partial update: only supplied fields
// change, everything else is left untouched upstream. Writes are sequenced
// variant → metafield → inventory → product, and the variant is re-fetched
// after an inventory write because its denormalized quantity must reflect
// the just-set stock level. The final variant, product and inventory item
// snapshots replace any cached copies. Partial failures are not rolled
// back; earlier steps stay committed upstream.
func (s *Catalog) UpdateProductVariant(ctx context.Context, rc *auth.Context, id string, updates UpdateProductVariantInfo) (*domain.ProductVariant, error) {
	if updates.Price != nil {
		if err := validateDecimal("price", *updates.Price); err != nil {
			return nil, err
		}
	}
	if updates.Cost != nil {
		if err := validateDecimal("cost", *updates.Cost); err != nil {
			return nil, err
		}
	}
	if updates.Quantity != nil {
		if err := validateQuantity(*updates.Quantity); err != nil {
			return nil, err
		}
	}

	var shopifyProduct *shopify.Product
	var shopifyVariant *shopify.Variant
	var shopifyItem *shopify.InventoryItem
	var err error

	if updates.Price != nil {
		shopifyVariant, err = rc.Shopify.UpdateProductVariant(ctx, id, shopify.VariantUpdates{Price: updates.Price})
	} else {
		shopifyVariant, err = rc.Shopify.GetProductVariantWithID(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	if updates.Size != nil {
		if _, err := rc.Shopify.SetProductVariantUnitMetafield(ctx, id, *updates.Size); err != nil {
			return nil, err
		}
	}

	if updates.Cost != nil || updates.Quantity != nil {
		shopifyItem, err = rc.Shopify.UpdateInventory(ctx, formatID(shopifyVariant.InventoryItemID), shopify.InventoryUpdates{
			Cost:     updates.Cost,
			Quantity: updates.Quantity,
		})
		if err != nil {
			return nil, err
		}
		// The variant's inventory_quantity is denormalized; re-read it so
		// the returned snapshot reflects the stock level just set.
		shopifyVariant, err = rc.Shopify.GetProductVariantWithID(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	variant := ProductVariantFromShopifyVariant(shopifyVariant)
	rc.Records.Set(variant)

	if updates.ProductName != nil || updates.ProductDescription != nil || updates.ProductImage.Op != domain.ImageKeep {
		productID := formatID(shopifyVariant.ProductID)
		var images *[]shopify.ImageInfo
		if updates.ProductImage.Op != domain.ImageKeep {
			shopifyProduct, err = rc.Shopify.GetProductWithID(ctx, productID)
			if err != nil {
				return nil, err
			}
			// Drop the primary image, keep the rest.
			imageList := make([]shopify.ImageInfo, 0, len(shopifyProduct.Images))
			for i, image := range shopifyProduct.Images {
				if i == 0 {
					continue
				}
				imageList = append(imageList, shopify.ImageInfo{ID: formatID(image.ID)})
			}
			if updates.ProductImage.Op == domain.ImageReplace {
				imageList = append([]shopify.ImageInfo{
					{Attachment: attachmentDataForBase64ImageData(updates.ProductImage.Data)},
				}, imageList...)
			}
			images = &imageList
		}
		var bodyHTML *string
		if updates.ProductDescription != nil {
			converted := bodyHTMLFromDescription(*updates.ProductDescription)
			bodyHTML = &converted
		}
		shopifyProduct, err = rc.Shopify.UpdateProduct(ctx, productID, shopify.ProductUpdates{
			Title:    updates.ProductName,
			BodyHTML: bodyHTML,
			Images:   images,
		})
		if err != nil {
			return nil, err
		}
	}

	if shopifyProduct == nil {
		shopifyProduct, err = rc.Shopify.GetProductWithID(ctx, formatID(shopifyVariant.ProductID))
		if err != nil {
			return nil, err
		}
	}
	rc.Records.Set(ProductFromShopifyProduct(rc.StoreSlug, shopifyProduct))

	if shopifyItem == nil {
		shopifyItem, err = rc.Shopify.GetInventoryItemWithID(ctx, formatID(shopifyVariant.InventoryItemID))
		if err != nil {
			return nil, err
		}
	}
	rc.Records.Set(InventoryItemFromShopifyInventoryItem(shopifyItem))

	return variant, nil
}

// DeleteProductVariant deletes a variant. A product with zero variants is
// not representable on Shopify, so deleting the sole variant archives the
// whole product instead; the variant itself stays in place upstream.
func (s *Catalog) DeleteProductVariant(ctx context.Context, rc *auth.Context, productID, id string) error {
	shopifyProduct, err := rc.Shopify.GetProductWithID(ctx, productID)
	if err != nil {
		return err
	}
	if len(shopifyProduct.Variants) == 1 && formatID(shopifyProduct.Variants[0].ID) == id {
		archived := string(domain.ProductStatusArchived)
		if _, err := rc.Shopify.UpdateProduct(ctx, productID, shopify.ProductUpdates{Status: &archived}); err != nil {
			return err
		}
		return nil
	}
	return rc.Shopify.DeleteProductVariant(ctx, productID, id)
}

// UnarchiveProduct sets the product's status back to active. No side
// effects on variants or inventory.
func (s *Catalog) UnarchiveProduct(ctx context.Context, rc *auth.Context, id string) error {
	active := string(domain.ProductStatusActive)
	_, err := rc.Shopify.UpdateProduct(ctx, id, shopify.ProductUpdates{Status: &active})
	return err
}

// attachmentDataForBase64ImageData strips any data-URI prefix, keeping
// only the raw base64 payload Shopify expects as an attachment.
func attachmentDataForBase64ImageData(imageData string) string {
	if i := strings.LastIndex(imageData, ","); i >= 0 {
		return imageData[i+1:]
	}
	return imageData
}

func validateDecimal(field, value string) error {
	if _, err := decimal.NewFromString(value); err != nil {
		return &apperrors.ErrValidation{Field: field, Message: "must be a decimal string"}
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < 0 {
		return &apperrors.ErrValidation{Field: "quantity", Message: "must not be negative"}
	}
	return nil
}
