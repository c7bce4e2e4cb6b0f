package auth

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryangomba/abunco/internal/cache"
	"github.com/ryangomba/abunco/internal/config"
	"github.com/ryangomba/abunco/internal/shopify"
	apperrors "github.com/ryangomba/abunco/pkg/errors"
)

// Tenants is the immutable per-tenant configuration table, constructed
// once at startup and passed in explicitly so tests can supply fixtures
// without environment manipulation.
type Tenants struct {
	bySlug map[string]config.UserConfig
}

func NewTenants(users []config.UserConfig) *Tenants {
	bySlug := make(map[string]config.UserConfig, len(users))
	for _, u := range users {
		bySlug[u.Slug] = u
	}
	return &Tenants{bySlug: bySlug}
}

// UserConfigForStore looks up a tenant by its store slug.
func (t *Tenants) UserConfigForStore(storeSlug string) (config.UserConfig, error) {
	u, ok := t.bySlug[storeSlug]
	if !ok {
		return config.UserConfig{}, &apperrors.ErrNotFound{Resource: "user config", ID: storeSlug}
	}
	return u, nil
}

// Context is the per-request unit of work: one tenant's Shopify client and
// an empty record cache, discarded when the request finishes.
type Context struct {
	RequestID   string
	StoreSlug   string
	CompanyName string
	Tenants     *Tenants
	Shopify     shopify.API
	Records     *cache.RecordCache
}

// NewContextForRequest resolves the tenant for storeSlug and builds a
// fresh request context around it.
func NewContextForRequest(tenants *Tenants, storeSlug string, logger *zap.Logger) (*Context, error) {
	userConfig, err := tenants.UserConfigForStore(storeSlug)
	if err != nil {
		return nil, err
	}
	client := shopify.NewClient(shopify.AuthInfo{
		StoreSlug:     userConfig.ShopifyStoreSlug,
		APIKey:        userConfig.ShopifyAPIKey,
		APISecret:     userConfig.ShopifyAPISecret,
		LocationID:    userConfig.ShopifyLocationID,
		WritesEnabled: userConfig.ShopifyWritesEnabled,
	}, logger)
	return &Context{
		RequestID:   uuid.NewString(),
		StoreSlug:   storeSlug,
		CompanyName: userConfig.CompanyName,
		Tenants:     tenants,
		Shopify:     client,
		Records:     cache.New(),
	}, nil
}
