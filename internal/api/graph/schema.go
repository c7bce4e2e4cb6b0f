package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/ryangomba/abunco/internal/domain"
	"github.com/ryangomba/abunco/internal/service"
)

// Schema wires the GraphQL node types to the catalog's record fetchers
// and mutation orchestrators. The node types mirror the domain model;
// cross-references (variant → product, product → vendor, ...) resolve
// through the request cache, so walking the graph within one operation
// stays cheap.
func NewSchema(catalog *service.Catalog) (graphql.Schema, error) {
	storeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Store",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					store, err := storeSource(p)
					if err != nil {
						return nil, err
					}
					return store.ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					store, err := storeSource(p)
					if err != nil {
						return nil, err
					}
					return store.Name, nil
				},
			},
		},
	})

	vendorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Vendor",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					vendor, err := vendorSource(p)
					if err != nil {
						return nil, err
					}
					return vendor.ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					vendor, err := vendorSource(p)
					if err != nil {
						return nil, err
					}
					return vendor.Name, nil
				},
			},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, err := productSource(p)
					if err != nil {
						return nil, err
					}
					return product.ID, nil
				},
			},
			"status": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, err := productSource(p)
					if err != nil {
						return nil, err
					}
					return string(product.Status), nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, err := productSource(p)
					if err != nil {
						return nil, err
					}
					return product.Name, nil
				},
			},
			"description": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, err := productSource(p)
					if err != nil {
						return nil, err
					}
					return product.Description, nil
				},
			},
			"imageURI": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, err := productSource(p)
					if err != nil {
						return nil, err
					}
					if product.ImageURI == nil {
						return nil, nil
					}
					return *product.ImageURI, nil
				},
			},
		},
	})

	variantType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductVariant",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					variant, err := variantSource(p)
					if err != nil {
						return nil, err
					}
					return variant.ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					variant, err := variantSource(p)
					if err != nil {
						return nil, err
					}
					return variant.Name, nil
				},
			},
			"displayName": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					variant, err := variantSource(p)
					if err != nil {
						return nil, err
					}
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					product, err := catalog.ProductWithID(p.Context, rc, variant.ProductID)
					if err != nil {
						return nil, err
					}
					return domain.DisplayName(product, variant), nil
				},
			},
			"size": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					variant, err := variantSource(p)
					if err != nil {
						return nil, err
					}
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					unit, err := catalog.ProductVariantUnit(p.Context, rc, variant.ID)
					if err != nil {
						return nil, err
					}
					if unit.Value == nil {
						return nil, nil
					}
					return *unit.Value, nil
				},
			},
			"cost": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					variant, err := variantSource(p)
					if err != nil {
						return nil, err
					}
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					item, err := catalog.InventoryItemWithID(p.Context, rc, variant.InventoryItemID)
					if err != nil {
						return nil, err
					}
					return item.Cost, nil
				},
			},
			"price": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					variant, err := variantSource(p)
					if err != nil {
						return nil, err
					}
					return variant.Price, nil
				},
			},
			"quantity": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					variant, err := variantSource(p)
					if err != nil {
						return nil, err
					}
					return variant.Quantity, nil
				},
			},
			"isDefault": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					variant, err := variantSource(p)
					if err != nil {
						return nil, err
					}
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					product, err := catalog.ProductWithID(p.Context, rc, variant.ProductID)
					if err != nil {
						return nil, err
					}
					return domain.IsDefault(product), nil
				},
			},
		},
	})

	// Cross-references are added after construction to break the cycles
	// between the node types.

	storeType.AddFieldConfig("vendors", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(vendorType))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			store, err := storeSource(p)
			if err != nil {
				return nil, err
			}
			rc, err := requestContext(p)
			if err != nil {
				return nil, err
			}
			return catalog.VendorsForStore(p.Context, rc, store.ID)
		},
	})

	vendorType.AddFieldConfig("store", &graphql.Field{
		Type: graphql.NewNonNull(storeType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			vendor, err := vendorSource(p)
			if err != nil {
				return nil, err
			}
			rc, err := requestContext(p)
			if err != nil {
				return nil, err
			}
			return catalog.StoreWithID(p.Context, rc, vendor.StoreID)
		},
	})
	vendorType.AddFieldConfig("products", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			vendor, err := vendorSource(p)
			if err != nil {
				return nil, err
			}
			rc, err := requestContext(p)
			if err != nil {
				return nil, err
			}
			return catalog.ProductsForVendor(p.Context, rc, vendor.ID)
		},
	})

	productType.AddFieldConfig("store", &graphql.Field{
		Type: graphql.NewNonNull(storeType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			product, err := productSource(p)
			if err != nil {
				return nil, err
			}
			rc, err := requestContext(p)
			if err != nil {
				return nil, err
			}
			return catalog.StoreWithID(p.Context, rc, product.StoreID)
		},
	})
	productType.AddFieldConfig("vendor", &graphql.Field{
		Type: graphql.NewNonNull(vendorType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			product, err := productSource(p)
			if err != nil {
				return nil, err
			}
			rc, err := requestContext(p)
			if err != nil {
				return nil, err
			}
			return catalog.VendorWithID(p.Context, rc, product.VendorID)
		},
	})
	productType.AddFieldConfig("variants", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(variantType))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			product, err := productSource(p)
			if err != nil {
				return nil, err
			}
			rc, err := requestContext(p)
			if err != nil {
				return nil, err
			}
			variants := make([]*domain.ProductVariant, 0, len(product.VariantIDs))
			for _, variantID := range product.VariantIDs {
				variant, err := catalog.ProductVariantWithID(p.Context, rc, variantID)
				if err != nil {
					return nil, err
				}
				variants = append(variants, variant)
			}
			return variants, nil
		},
	})

	variantType.AddFieldConfig("product", &graphql.Field{
		Type: graphql.NewNonNull(productType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			variant, err := variantSource(p)
			if err != nil {
				return nil, err
			}
			rc, err := requestContext(p)
			if err != nil {
				return nil, err
			}
			return catalog.ProductWithID(p.Context, rc, variant.ProductID)
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType(catalog, storeType, vendorType, productType, variantType),
		Mutation: mutationType(catalog, variantType),
	})
}

func storeSource(p graphql.ResolveParams) (*domain.Store, error) {
	store, ok := p.Source.(*domain.Store)
	if !ok {
		return nil, fmt.Errorf("expected store source, got %T", p.Source)
	}
	return store, nil
}

func vendorSource(p graphql.ResolveParams) (*domain.Vendor, error) {
	vendor, ok := p.Source.(*domain.Vendor)
	if !ok {
		return nil, fmt.Errorf("expected vendor source, got %T", p.Source)
	}
	return vendor, nil
}

func productSource(p graphql.ResolveParams) (*domain.Product, error) {
	product, ok := p.Source.(*domain.Product)
	if !ok {
		return nil, fmt.Errorf("expected product source, got %T", p.Source)
	}
	return product, nil
}

func variantSource(p graphql.ResolveParams) (*domain.ProductVariant, error) {
	variant, ok := p.Source.(*domain.ProductVariant)
	if !ok {
		return nil, fmt.Errorf("expected product variant source, got %T", p.Source)
	}
	return variant, nil
}
