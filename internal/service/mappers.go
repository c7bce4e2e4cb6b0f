package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ryangomba/abunco/internal/domain"
	"github.com/ryangomba/abunco/internal/shopify"
)

// Mappers are pure translations between Shopify wire shapes and the domain
// model. No I/O happens here, and monetary values stay decimal strings
// end-to-end.

var (
	blankLinesPattern     = regexp.MustCompile(`\n{2,}`)
	trailingBreaksPattern = regexp.MustCompile(`\n+$`)
	blockElements         = map[string]bool{
		"p": true, "div": true, "section": true, "article": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"ul": true, "ol": true, "li": true, "table": true, "tr": true,
		"blockquote": true, "pre": true,
	}
)

// ProductFromShopifyProduct maps a Shopify product to the domain model.
// The store id comes from the authenticated tenant, not from Shopify,
// which has no notion of our stores.
func ProductFromShopifyProduct(storeID string, p *shopify.Product) *domain.Product {
	var imageURI *string
	if p.Image != nil {
		src := p.Image.Src
		imageURI = &src
	}
	variantIDs := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		variantIDs = append(variantIDs, strconv.FormatInt(v.ID, 10))
	}
	return &domain.Product{
		ID:          strconv.FormatInt(p.ID, 10),
		Status:      domain.ProductStatus(p.Status),
		StoreID:     storeID,
		VendorID:    p.Vendor,
		Name:        p.Title,
		Description: descriptionFromBodyHTML(p.BodyHTML),
		ImageURI:    imageURI,
		VariantIDs:  variantIDs,
		CreatedAt:   parseShopifyTime(p.CreatedAt),
	}
}

// ProductVariantFromShopifyVariant maps a Shopify variant to the domain model.
func ProductVariantFromShopifyVariant(v *shopify.Variant) *domain.ProductVariant {
	return &domain.ProductVariant{
		ID:              strconv.FormatInt(v.ID, 10),
		ProductID:       strconv.FormatInt(v.ProductID, 10),
		Name:            v.Title,
		Price:           v.Price,
		Quantity:        v.InventoryQuantity,
		InventoryItemID: strconv.FormatInt(v.InventoryItemID, 10),
		CreatedAt:       parseShopifyTime(v.CreatedAt),
	}
}

// InventoryItemFromShopifyInventoryItem maps a Shopify inventory item to
// the domain model.
func InventoryItemFromShopifyInventoryItem(i *shopify.InventoryItem) *domain.InventoryItem {
	return &domain.InventoryItem{
		ID:   strconv.FormatInt(i.ID, 10),
		Cost: i.Cost,
	}
}

// ProductVariantUnitFromMetafields extracts the unit record for one
// variant from a metafield list. When no metafield matches, a record with
// a nil value is synthesized rather than erroring.
func ProductVariantUnitFromMetafields(variantID string, metafields []shopify.Metafield) *domain.ProductVariantUnit {
	for _, m := range metafields {
		if strconv.FormatInt(m.OwnerID, 10) != variantID {
			continue
		}
		if m.Key != shopify.UnitMetafieldKey {
			continue
		}
		value := m.Value
		return &domain.ProductVariantUnit{
			ID:    domain.UnitRecordID(variantID),
			Value: &value,
		}
	}
	return &domain.ProductVariantUnit{
		ID:    domain.UnitRecordID(variantID),
		Value: nil,
	}
}

// VendorFromShopifyVendor maps a vendor name to the domain model. Shopify
// has no vendor entity, so the name is both id and name.
func VendorFromShopifyVendor(storeID, name string) *domain.Vendor {
	return &domain.Vendor{
		ID:        name,
		Name:      name,
		StoreID:   storeID,
		CreatedAt: time.Now(),
	}
}

// descriptionFromBodyHTML strips Shopify's rich-text markup down to plain
// text, collapsing runs of blank lines to exactly one blank line and
// trimming trailing blank lines.
func descriptionFromBodyHTML(bodyHTML string) string {
	text := htmlToText(bodyHTML)
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	text = trailingBreaksPattern.ReplaceAllString(text, "")
	return text
}

// bodyHTMLFromDescription converts plain-text newlines to Shopify's
// line-break markup for write payloads.
func bodyHTMLFromDescription(description string) string {
	return strings.ReplaceAll(description, "\n", "<br/>")
}

func htmlToText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "br" {
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteString("\n\n")
		}
	}
	walk(doc)
	return b.String()
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseShopifyTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
