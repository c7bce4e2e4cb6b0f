package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/ryangomba/abunco/internal/service"
)

func queryType(catalog *service.Catalog, storeType, vendorType, productType, variantType *graphql.Object) *graphql.Object {
	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"store": &graphql.Field{
				Type: graphql.NewNonNull(storeType),
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					return catalog.StoreWithID(p.Context, rc, p.Args["id"].(string))
				},
			},
			"vendor": &graphql.Field{
				Type: graphql.NewNonNull(vendorType),
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					return catalog.VendorWithID(p.Context, rc, p.Args["id"].(string))
				},
			},
			"product": &graphql.Field{
				Type: graphql.NewNonNull(productType),
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					return catalog.ProductWithID(p.Context, rc, p.Args["id"].(string))
				},
			},
			"productVariant": &graphql.Field{
				Type: graphql.NewNonNull(variantType),
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					return catalog.ProductVariantWithID(p.Context, rc, p.Args["id"].(string))
				},
			},
		},
	})
}
