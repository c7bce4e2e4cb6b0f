package shopify

import (
	"fmt"
	"strings"
)

// ProductVendorsQuery enumerates the distinct vendor names on the shop.
// Shopify has no vendor resource; this is the only way to list vendors.
const ProductVendorsQuery = `
query ProductVendors {
  shop {
    productVendors(first: 100) {
      edges {
        node
      }
    }
  }
}
`

// MetafieldNamespace is the namespace under which the variant unit
// metafield is stored.
const MetafieldNamespace = "abunco"

// UnitMetafieldKey is the metafield key holding a variant's unit/size tag.
const UnitMetafieldKey = "unit"

// variantMetafieldsQuery builds an aliased query fetching the unit
// metafield for each variant id in one round trip. Aliases are keyed
// productVariant<id> so the response can be matched back to its variant.
func variantMetafieldsQuery(ids []string) string {
	var b strings.Builder
	b.WriteString("query ProductVariantUnits {")
	for _, id := range ids {
		fmt.Fprintf(&b, `
      productVariant%s: productVariant(id: "gid://shopify/ProductVariant/%s") {
        displayName
        metafields(
          namespace: %q,
          first: 1
        ) {
          edges {
            node {
              key
              value
            }
          }
        }
      }
`, id, id, MetafieldNamespace)
	}
	b.WriteString("}")
	return b.String()
}
