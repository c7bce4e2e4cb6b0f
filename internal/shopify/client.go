package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/ryangomba/abunco/pkg/errors"
)

const apiVersion = "2021-07"

const (
	maxInventoryItemsPerFetch = 250
	maxMetafieldsPerFetch     = 100
)

// API is the upstream surface the service layer depends on. The real
// Client implements it; tests substitute a fake.
type API interface {
	GetProductWithID(ctx context.Context, id string) (*Product, error)
	GetProducts(ctx context.Context, vendorName string) ([]Product, error)
	GetProductVariantWithID(ctx context.Context, id string) (*Variant, error)
	GetInventoryItemWithID(ctx context.Context, id string) (*InventoryItem, error)
	GetInventoryItemsWithIDs(ctx context.Context, ids []string) ([]InventoryItem, error)
	GetMetafieldsForProductVariants(ctx context.Context, ids []string) ([]Metafield, error)
	GetProductVendors(ctx context.Context) ([]string, error)

	CreateProduct(ctx context.Context, info ProductCreateInfo) (*Product, error)
	UpdateProduct(ctx context.Context, id string, updates ProductUpdates) (*Product, error)
	UpdateProductVariant(ctx context.Context, id string, updates VariantUpdates) (*Variant, error)
	UpdateInventory(ctx context.Context, inventoryItemID string, updates InventoryUpdates) (*InventoryItem, error)
	SetProductVariantUnitMetafield(ctx context.Context, id string, value string) (*Metafield, error)
	DeleteProduct(ctx context.Context, productID string) error
	DeleteProductVariant(ctx context.Context, productID, id string) error
}

// Client issues REST and GraphQL calls to the Shopify admin API for one
// tenant. All mutating calls are gated on the tenant's writes flag before
// any network traffic happens.
type Client struct {
	auth       AuthInfo
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ API = (*Client)(nil)

// NewClient creates a Shopify client for one tenant's credentials.
func NewClient(auth AuthInfo, logger *zap.Logger) *Client {
	return &Client{
		auth:       auth,
		baseURL:    fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", auth.StoreSlug, apiVersion),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (c *Client) checkWrites() error {
	if !c.auth.WritesEnabled {
		return &apperrors.ErrWritesDisabled{StoreSlug: c.auth.StoreSlug}
	}
	return nil
}

// doREST issues one REST call and decodes the response body into out (when
// out is non-nil). Non-success responses surface as upstream errors except
// 404, which maps to a not-found error for the addressed resource.
func (c *Client) doREST(ctx context.Context, method, path string, payload, out interface{}, resource, id string) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.auth.APISecret)

	c.logger.Debug("Shopify REST call",
		zap.String("method", method),
		zap.String("path", path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return &apperrors.ErrNotFound{Resource: resource, ID: id}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperrors.ErrUpstream{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(respBody))
		}
	}
	return nil
}

// graphQL posts a raw query document to the GraphQL admin endpoint and
// returns the decoded data object.
func (c *Client) graphQL(ctx context.Context, query string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql.json", bytes.NewReader([]byte(query)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/graphql")
	req.Header.Set("X-Shopify-Access-Token", c.auth.APISecret)

	c.logger.Debug("Shopify GraphQL call")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.ErrUpstream{Status: resp.StatusCode, Body: string(respBody)}
	}

	var decoded struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(respBody))
	}
	if len(decoded.Errors) > 0 {
		return nil, &apperrors.ErrUpstream{Status: resp.StatusCode, Body: string(respBody)}
	}
	return decoded.Data, nil
}

// READS

func (c *Client) GetProductWithID(ctx context.Context, id string) (*Product, error) {
	var wrapper struct {
		Product Product `json:"product"`
	}
	if err := c.doREST(ctx, http.MethodGet, "/products/"+id+".json", nil, &wrapper, "product", id); err != nil {
		return nil, err
	}
	if err := wrapper.Product.validate(); err != nil {
		return nil, fmt.Errorf("invalid product response: %w", err)
	}
	return &wrapper.Product, nil
}

// GetProducts lists products, optionally filtered by vendor name.
func (c *Client) GetProducts(ctx context.Context, vendorName string) ([]Product, error) {
	path := "/products.json"
	if vendorName != "" {
		path += "?vendor=" + url.QueryEscape(vendorName)
	}
	var wrapper struct {
		Products []Product `json:"products"`
	}
	if err := c.doREST(ctx, http.MethodGet, path, nil, &wrapper, "products", vendorName); err != nil {
		return nil, err
	}
	for i := range wrapper.Products {
		if err := wrapper.Products[i].validate(); err != nil {
			return nil, fmt.Errorf("invalid product response: %w", err)
		}
	}
	return wrapper.Products, nil
}

func (c *Client) GetProductVariantWithID(ctx context.Context, id string) (*Variant, error) {
	var wrapper struct {
		Variant Variant `json:"variant"`
	}
	if err := c.doREST(ctx, http.MethodGet, "/variants/"+id+".json", nil, &wrapper, "variant", id); err != nil {
		return nil, err
	}
	if err := wrapper.Variant.validate(); err != nil {
		return nil, fmt.Errorf("invalid variant response: %w", err)
	}
	return &wrapper.Variant, nil
}

func (c *Client) GetInventoryItemWithID(ctx context.Context, id string) (*InventoryItem, error) {
	var wrapper struct {
		InventoryItem InventoryItem `json:"inventory_item"`
	}
	if err := c.doREST(ctx, http.MethodGet, "/inventory_items/"+id+".json", nil, &wrapper, "inventory item", id); err != nil {
		return nil, err
	}
	if err := wrapper.InventoryItem.validate(); err != nil {
		return nil, fmt.Errorf("invalid inventory item response: %w", err)
	}
	return &wrapper.InventoryItem, nil
}

func (c *Client) GetInventoryItemsWithIDs(ctx context.Context, ids []string) ([]InventoryItem, error) {
	if len(ids) > maxInventoryItemsPerFetch {
		return nil, &apperrors.ErrBatchLimit{
			Resource:  "inventory items",
			Limit:     maxInventoryItemsPerFetch,
			Requested: len(ids),
		}
	}
	path := fmt.Sprintf("/inventory_items.json?limit=%d&ids=%s",
		maxInventoryItemsPerFetch, url.QueryEscape(strings.Join(ids, ",")))
	var wrapper struct {
		InventoryItems []InventoryItem `json:"inventory_items"`
	}
	if err := c.doREST(ctx, http.MethodGet, path, nil, &wrapper, "inventory items", ""); err != nil {
		return nil, err
	}
	for i := range wrapper.InventoryItems {
		if err := wrapper.InventoryItems[i].validate(); err != nil {
			return nil, fmt.Errorf("invalid inventory item response: %w", err)
		}
	}
	return wrapper.InventoryItems, nil
}

// GetMetafieldsForProductVariants fetches the unit metafield for each
// variant id in one aliased GraphQL round trip.
func (c *Client) GetMetafieldsForProductVariants(ctx context.Context, ids []string) ([]Metafield, error) {
	if len(ids) > maxMetafieldsPerFetch {
		return nil, &apperrors.ErrBatchLimit{
			Resource:  "metafield items",
			Limit:     maxMetafieldsPerFetch,
			Requested: len(ids),
		}
	}
	data, err := c.graphQL(ctx, variantMetafieldsQuery(ids))
	if err != nil {
		return nil, err
	}

	var aliased map[string]struct {
		DisplayName string `json:"displayName"`
		Metafields  struct {
			Edges []struct {
				Node struct {
					Key   string `json:"key"`
					Value string `json:"value"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"metafields"`
	}
	if err := json.Unmarshal(data, &aliased); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metafields response: %w", err)
	}

	var metafields []Metafield
	for _, id := range ids {
		node, ok := aliased["productVariant"+id]
		if !ok {
			return nil, fmt.Errorf("metafields response missing variant %s", id)
		}
		ownerID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid variant id %q: %w", id, err)
		}
		for _, edge := range node.Metafields.Edges {
			if edge.Node.Key != UnitMetafieldKey {
				continue
			}
			metafields = append(metafields, Metafield{
				Namespace: MetafieldNamespace,
				Key:       UnitMetafieldKey,
				OwnerID:   ownerID,
				Value:     edge.Node.Value,
			})
		}
	}
	return metafields, nil
}

// GetProductVendors enumerates the distinct vendor names on the shop.
func (c *Client) GetProductVendors(ctx context.Context) ([]string, error) {
	data, err := c.graphQL(ctx, ProductVendorsQuery)
	if err != nil {
		return nil, err
	}
	var decoded struct {
		Shop struct {
			ProductVendors struct {
				Edges []struct {
					Node string `json:"node"`
				} `json:"edges"`
			} `json:"productVendors"`
		} `json:"shop"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vendors response: %w", err)
	}
	vendors := make([]string, 0, len(decoded.Shop.ProductVendors.Edges))
	for _, edge := range decoded.Shop.ProductVendors.Edges {
		vendors = append(vendors, edge.Node)
	}
	return vendors, nil
}

// WRITES

func (c *Client) CreateProduct(ctx context.Context, info ProductCreateInfo) (*Product, error) {
	if err := c.checkWrites(); err != nil {
		return nil, err
	}
	var wrapper struct {
		Product Product `json:"product"`
	}
	payload := map[string]interface{}{"product": info}
	if err := c.doREST(ctx, http.MethodPost, "/products.json", payload, &wrapper, "product", ""); err != nil {
		return nil, err
	}
	if err := wrapper.Product.validate(); err != nil {
		return nil, fmt.Errorf("invalid product response: %w", err)
	}
	return &wrapper.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, updates ProductUpdates) (*Product, error) {
	if err := c.checkWrites(); err != nil {
		return nil, err
	}
	payload := map[string]interface{}{
		"product": struct {
			ID string `json:"id"`
			ProductUpdates
		}{ID: id, ProductUpdates: updates},
	}
	var wrapper struct {
		Product Product `json:"product"`
	}
	if err := c.doREST(ctx, http.MethodPut, "/products/"+id+".json", payload, &wrapper, "product", id); err != nil {
		return nil, err
	}
	if err := wrapper.Product.validate(); err != nil {
		return nil, fmt.Errorf("invalid product response: %w", err)
	}
	return &wrapper.Product, nil
}

func (c *Client) UpdateProductVariant(ctx context.Context, id string, updates VariantUpdates) (*Variant, error) {
	if err := c.checkWrites(); err != nil {
		return nil, err
	}
	payload := map[string]interface{}{
		"variant": struct {
			ID string `json:"id"`
			VariantUpdates
		}{ID: id, VariantUpdates: updates},
	}
	var wrapper struct {
		Variant Variant `json:"variant"`
	}
	if err := c.doREST(ctx, http.MethodPut, "/variants/"+id+".json", payload, &wrapper, "variant", id); err != nil {
		return nil, err
	}
	if err := wrapper.Variant.validate(); err != nil {
		return nil, fmt.Errorf("invalid variant response: %w", err)
	}
	return &wrapper.Variant, nil
}

// UpdateInventory updates an inventory item's cost and/or sets its stock
// level at the tenant's location. Cost and quantity are independently
// optional; only the supplied parts are sent. Setting the stock level is a
// separate endpoint from the item resource, so when no cost write happened
// the item is re-fetched to return an authoritative snapshot.
func (c *Client) UpdateInventory(ctx context.Context, inventoryItemID string, updates InventoryUpdates) (*InventoryItem, error) {
	if err := c.checkWrites(); err != nil {
		return nil, err
	}
	var item *InventoryItem
	if updates.Cost != nil {
		payload := map[string]interface{}{
			"inventory_item": map[string]interface{}{
				"id":   inventoryItemID,
				"cost": *updates.Cost,
			},
		}
		var wrapper struct {
			InventoryItem InventoryItem `json:"inventory_item"`
		}
		if err := c.doREST(ctx, http.MethodPut, "/inventory_items/"+inventoryItemID+".json", payload, &wrapper, "inventory item", inventoryItemID); err != nil {
			return nil, err
		}
		if err := wrapper.InventoryItem.validate(); err != nil {
			return nil, fmt.Errorf("invalid inventory item response: %w", err)
		}
		item = &wrapper.InventoryItem
	}
	if updates.Quantity != nil {
		payload := map[string]interface{}{
			"location_id":       c.auth.LocationID,
			"inventory_item_id": inventoryItemID,
			"available":         *updates.Quantity,
		}
		if err := c.doREST(ctx, http.MethodPost, "/inventory_levels/set.json", payload, nil, "inventory level", inventoryItemID); err != nil {
			return nil, err
		}
	}
	if item == nil {
		return c.GetInventoryItemWithID(ctx, inventoryItemID)
	}
	return item, nil
}

func (c *Client) SetProductVariantUnitMetafield(ctx context.Context, id string, value string) (*Metafield, error) {
	if err := c.checkWrites(); err != nil {
		return nil, err
	}
	payload := map[string]interface{}{
		"metafield": MetafieldInfo{
			Namespace: MetafieldNamespace,
			Key:       UnitMetafieldKey,
			Type:      "single_line_text_field",
			Value:     value,
		},
	}
	var wrapper struct {
		Metafield struct {
			Namespace string `json:"namespace"`
			Key       string `json:"key"`
			Value     string `json:"value"`
			OwnerID   int64  `json:"owner_id"`
		} `json:"metafield"`
	}
	if err := c.doREST(ctx, http.MethodPost, "/variants/"+id+"/metafields.json", payload, &wrapper, "variant", id); err != nil {
		return nil, err
	}
	return &Metafield{
		Namespace: wrapper.Metafield.Namespace,
		Key:       wrapper.Metafield.Key,
		Value:     wrapper.Metafield.Value,
		OwnerID:   wrapper.Metafield.OwnerID,
	}, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	if err := c.checkWrites(); err != nil {
		return err
	}
	return c.doREST(ctx, http.MethodDelete, "/products/"+productID+".json", nil, nil, "product", productID)
}

func (c *Client) DeleteProductVariant(ctx context.Context, productID, id string) error {
	if err := c.checkWrites(); err != nil {
		return err
	}
	return c.doREST(ctx, http.MethodDelete, "/products/"+productID+"/variants/"+id+".json", nil, nil, "variant", id)
}
