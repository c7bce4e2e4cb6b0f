package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/ryangomba/abunco/pkg/errors"
)

const productJSON = `{
	"id": 1001, "title": "Honey", "body_html": "<p>Raw honey</p>",
	"vendor": "Acme Farms", "status": "active",
	"created_at": "2021-09-28T12:54:22-07:00",
	"variants": [
		{"id": 2001, "product_id": 1001, "title": "500g", "price": "10.00",
		 "inventory_item_id": 3001, "inventory_quantity": 5}
	]
}`

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// testClient points a real Client at an httptest server and records every
// request it makes.
func testClient(t *testing.T, writesEnabled bool, respond http.HandlerFunc) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		respond(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(AuthInfo{
		StoreSlug:     "acme-test",
		APISecret:     "shhh",
		LocationID:    "77",
		WritesEnabled: writesEnabled,
	}, zap.NewNop())
	client.baseURL = server.URL
	return client, &requests
}

func respondJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func respondStatus(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func TestGetProductWithID(t *testing.T) {
	t.Run("RequestAndParse", func(t *testing.T) {
		client, requests := testClient(t, true, respondJSON(`{"product":`+productJSON+`}`))

		product, err := client.GetProductWithID(context.Background(), "1001")
		require.NoError(t, err)
		assert.Equal(t, int64(1001), product.ID)
		assert.Equal(t, "Honey", product.Title)
		require.Len(t, product.Variants, 1)
		assert.Equal(t, int64(3001), product.Variants[0].InventoryItemID)

		require.Len(t, *requests, 1)
		req := (*requests)[0]
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/products/1001.json", req.Path)
		assert.Equal(t, "shhh", req.Header.Get("X-Shopify-Access-Token"))
	})

	t.Run("NotFound", func(t *testing.T) {
		client, _ := testClient(t, true, respondStatus(http.StatusNotFound, `{"errors":"Not Found"}`))

		_, err := client.GetProductWithID(context.Background(), "9999")
		var notFound *apperrors.ErrNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "product", notFound.Resource)
		assert.Equal(t, "9999", notFound.ID)
	})

	t.Run("ServerError", func(t *testing.T) {
		client, _ := testClient(t, true, respondStatus(http.StatusBadGateway, "upstream exploded"))

		_, err := client.GetProductWithID(context.Background(), "1001")
		var upstream *apperrors.ErrUpstream
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusBadGateway, upstream.Status)
		assert.Contains(t, upstream.Body, "upstream exploded")
	})

	t.Run("InvalidResponseRejected", func(t *testing.T) {
		// Missing status and variants must not leak into the service layer.
		client, _ := testClient(t, true, respondJSON(`{"product":{"id":1001,"title":"Honey"}}`))

		_, err := client.GetProductWithID(context.Background(), "1001")
		require.Error(t, err)
	})
}

func TestGetProducts(t *testing.T) {
	client, requests := testClient(t, true, respondJSON(`{"products":[`+productJSON+`]}`))

	products, err := client.GetProducts(context.Background(), "Acme Farms")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Acme Farms", products[0].Vendor)

	req := (*requests)[0]
	assert.Equal(t, "/products.json", req.Path)
	assert.Equal(t, "vendor=Acme+Farms", req.Query)
}

func TestGetInventoryItemsWithIDs(t *testing.T) {
	t.Run("BulkFetch", func(t *testing.T) {
		client, requests := testClient(t, true, respondJSON(`{"inventory_items":[{"id":3001,"cost":"4.00"},{"id":3002,"cost":"7.00"}]}`))

		items, err := client.GetInventoryItemsWithIDs(context.Background(), []string{"3001", "3002"})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "4.00", items[0].Cost)

		req := (*requests)[0]
		assert.Equal(t, "/inventory_items.json", req.Path)
		assert.Contains(t, req.Query, "ids=3001%2C3002")
	})

	t.Run("BatchLimitRejectedBeforeNetwork", func(t *testing.T) {
		client, requests := testClient(t, true, respondJSON(`{}`))

		ids := make([]string, maxInventoryItemsPerFetch+1)
		for i := range ids {
			ids[i] = strconv.Itoa(i)
		}
		_, err := client.GetInventoryItemsWithIDs(context.Background(), ids)
		var limit *apperrors.ErrBatchLimit
		require.ErrorAs(t, err, &limit)
		assert.Equal(t, maxInventoryItemsPerFetch, limit.Limit)
		assert.Equal(t, maxInventoryItemsPerFetch+1, limit.Requested)
		assert.Empty(t, *requests)
	})
}

func TestGetMetafieldsForProductVariants(t *testing.T) {
	t.Run("AliasedQueryAndParse", func(t *testing.T) {
		response := `{"data":{
			"productVariant2001":{"displayName":"Honey - 500g","metafields":{"edges":[{"node":{"key":"unit","value":"g"}}]}},
			"productVariant2003":{"displayName":"Jam","metafields":{"edges":[]}}
		}}`
		client, requests := testClient(t, true, respondJSON(response))

		metafields, err := client.GetMetafieldsForProductVariants(context.Background(), []string{"2001", "2003"})
		require.NoError(t, err)
		require.Len(t, metafields, 1)
		assert.Equal(t, int64(2001), metafields[0].OwnerID)
		assert.Equal(t, "g", metafields[0].Value)
		assert.Equal(t, UnitMetafieldKey, metafields[0].Key)

		req := (*requests)[0]
		assert.Equal(t, "/graphql.json", req.Path)
		assert.Equal(t, "application/graphql", req.Header.Get("Content-Type"))
		assert.Contains(t, req.Body, `productVariant2001: productVariant(id: "gid://shopify/ProductVariant/2001")`)
		assert.Contains(t, req.Body, `namespace: "abunco"`)
	})

	t.Run("MissingAliasIsAnError", func(t *testing.T) {
		client, _ := testClient(t, true, respondJSON(`{"data":{}}`))

		_, err := client.GetMetafieldsForProductVariants(context.Background(), []string{"2001"})
		require.Error(t, err)
	})

	t.Run("BatchLimitRejectedBeforeNetwork", func(t *testing.T) {
		client, requests := testClient(t, true, respondJSON(`{}`))

		ids := make([]string, maxMetafieldsPerFetch+1)
		for i := range ids {
			ids[i] = strconv.Itoa(i)
		}
		_, err := client.GetMetafieldsForProductVariants(context.Background(), ids)
		var limit *apperrors.ErrBatchLimit
		require.ErrorAs(t, err, &limit)
		assert.Empty(t, *requests)
	})
}

func TestGetProductVendors(t *testing.T) {
	t.Run("ParsesEdges", func(t *testing.T) {
		response := `{"data":{"shop":{"productVendors":{"edges":[{"node":"Acme Farms"},{"node":"Bee Happy"}]}}}}`
		client, _ := testClient(t, true, respondJSON(response))

		vendors, err := client.GetProductVendors(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Acme Farms", "Bee Happy"}, vendors)
	})

	t.Run("GraphQLErrorsSurface", func(t *testing.T) {
		client, _ := testClient(t, true, respondJSON(`{"data":null,"errors":[{"message":"throttled"}]}`))

		_, err := client.GetProductVendors(context.Background())
		var upstream *apperrors.ErrUpstream
		require.ErrorAs(t, err, &upstream)
		assert.Contains(t, upstream.Body, "throttled")
	})
}

func TestUpdateProduct(t *testing.T) {
	t.Run("PartialPayload", func(t *testing.T) {
		client, requests := testClient(t, true, respondJSON(`{"product":`+productJSON+`}`))

		title := "Honey Deluxe"
		_, err := client.UpdateProduct(context.Background(), "1001", ProductUpdates{Title: &title})
		require.NoError(t, err)

		req := (*requests)[0]
		assert.Equal(t, http.MethodPut, req.Method)
		assert.Equal(t, "/products/1001.json", req.Path)

		var payload map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(req.Body), &payload))
		assert.Equal(t, "Honey Deluxe", payload["product"]["title"])
		// Fields not supplied stay out of the payload entirely.
		assert.NotContains(t, payload["product"], "status")
		assert.NotContains(t, payload["product"], "body_html")
		assert.NotContains(t, payload["product"], "images")
	})

	t.Run("ExplicitEmptyImageListSerializes", func(t *testing.T) {
		client, requests := testClient(t, true, respondJSON(`{"product":`+productJSON+`}`))

		images := []ImageInfo{}
		_, err := client.UpdateProduct(context.Background(), "1001", ProductUpdates{Images: &images})
		require.NoError(t, err)

		var payload map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte((*requests)[0].Body), &payload))
		value, ok := payload["product"]["images"]
		require.True(t, ok)
		assert.Empty(t, value)
	})
}

func TestUpdateInventory(t *testing.T) {
	itemResponse := `{"inventory_item":{"id":3001,"cost":"5.00"}}`

	t.Run("CostOnly", func(t *testing.T) {
		client, requests := testClient(t, true, respondJSON(itemResponse))

		cost := "5.00"
		item, err := client.UpdateInventory(context.Background(), "3001", InventoryUpdates{Cost: &cost})
		require.NoError(t, err)
		assert.Equal(t, "5.00", item.Cost)

		require.Len(t, *requests, 1)
		req := (*requests)[0]
		assert.Equal(t, http.MethodPut, req.Method)
		assert.Equal(t, "/inventory_items/3001.json", req.Path)
		assert.Contains(t, req.Body, `"cost":"5.00"`)
	})

	t.Run("QuantityOnlySetsLevelThenRefetches", func(t *testing.T) {
		client, requests := testClient(t, true, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/inventory_levels/set.json" {
				fmt.Fprint(w, `{}`)
				return
			}
			fmt.Fprint(w, itemResponse)
		})

		quantity := 9
		item, err := client.UpdateInventory(context.Background(), "3001", InventoryUpdates{Quantity: &quantity})
		require.NoError(t, err)
		assert.Equal(t, int64(3001), item.ID)

		require.Len(t, *requests, 2)
		setReq := (*requests)[0]
		assert.Equal(t, http.MethodPost, setReq.Method)
		assert.Equal(t, "/inventory_levels/set.json", setReq.Path)
		assert.Contains(t, setReq.Body, `"available":9`)
		assert.Contains(t, setReq.Body, `"location_id":"77"`)

		refetch := (*requests)[1]
		assert.Equal(t, http.MethodGet, refetch.Method)
		assert.Equal(t, "/inventory_items/3001.json", refetch.Path)
	})

	t.Run("CostAndQuantitySkipRefetch", func(t *testing.T) {
		client, requests := testClient(t, true, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/inventory_levels/set.json" {
				fmt.Fprint(w, `{}`)
				return
			}
			fmt.Fprint(w, itemResponse)
		})

		cost := "5.00"
		quantity := 9
		_, err := client.UpdateInventory(context.Background(), "3001", InventoryUpdates{Cost: &cost, Quantity: &quantity})
		require.NoError(t, err)

		require.Len(t, *requests, 2)
		assert.Equal(t, "/inventory_items/3001.json", (*requests)[0].Path)
		assert.Equal(t, "/inventory_levels/set.json", (*requests)[1].Path)
	})
}

func TestSetProductVariantUnitMetafield(t *testing.T) {
	response := `{"metafield":{"namespace":"abunco","key":"unit","value":"750g","owner_id":2001}}`
	client, requests := testClient(t, true, respondJSON(response))

	metafield, err := client.SetProductVariantUnitMetafield(context.Background(), "2001", "750g")
	require.NoError(t, err)
	assert.Equal(t, MetafieldNamespace, metafield.Namespace)
	assert.Equal(t, "750g", metafield.Value)
	assert.Equal(t, int64(2001), metafield.OwnerID)

	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/variants/2001/metafields.json", req.Path)
	assert.Contains(t, req.Body, `"type":"single_line_text_field"`)
}

func TestDeleteProductVariant(t *testing.T) {
	client, requests := testClient(t, true, respondJSON(`{}`))

	err := client.DeleteProductVariant(context.Background(), "1001", "2001")
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/products/1001/variants/2001.json", req.Path)
}

func TestWritesDisabled(t *testing.T) {
	client, requests := testClient(t, false, respondJSON(`{}`))
	ctx := context.Background()

	var disabled *apperrors.ErrWritesDisabled

	_, err := client.CreateProduct(ctx, ProductCreateInfo{Title: "X"})
	require.ErrorAs(t, err, &disabled)
	assert.Equal(t, "acme-test", disabled.StoreSlug)

	title := "X"
	_, err = client.UpdateProduct(ctx, "1001", ProductUpdates{Title: &title})
	require.ErrorAs(t, err, &disabled)

	price := "1.00"
	_, err = client.UpdateProductVariant(ctx, "2001", VariantUpdates{Price: &price})
	require.ErrorAs(t, err, &disabled)

	_, err = client.UpdateInventory(ctx, "3001", InventoryUpdates{Cost: &price})
	require.ErrorAs(t, err, &disabled)

	_, err = client.SetProductVariantUnitMetafield(ctx, "2001", "g")
	require.ErrorAs(t, err, &disabled)

	require.ErrorAs(t, client.DeleteProduct(ctx, "1001"), &disabled)
	require.ErrorAs(t, client.DeleteProductVariant(ctx, "1001", "2001"), &disabled)

	assert.Empty(t, *requests)
}
