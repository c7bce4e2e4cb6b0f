package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/ryangomba/abunco/internal/domain"
	"github.com/ryangomba/abunco/internal/service"
)

func mutationType(catalog *service.Catalog, variantType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createProductVariant": &graphql.Field{
				Type: variantType,
				Args: graphql.FieldConfigArgument{
					"vendorID":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"productName":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"productDescription": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"productImageData":   &graphql.ArgumentConfig{Type: graphql.String},
					"size":               &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"cost":               &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"price":              &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"quantity":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					info := service.CreateProductVariantInfo{
						VendorID:           p.Args["vendorID"].(string),
						ProductName:        p.Args["productName"].(string),
						ProductDescription: p.Args["productDescription"].(string),
						Size:               p.Args["size"].(string),
						Cost:               p.Args["cost"].(string),
						Price:              p.Args["price"].(string),
						Quantity:           p.Args["quantity"].(int),
					}
					if data, ok := p.Args["productImageData"].(string); ok {
						info.ProductImageData = data
					}
					return catalog.CreateProductVariant(p.Context, rc, info)
				},
			},
			"updateProductVariant": &graphql.Field{
				Type: variantType,
				Args: graphql.FieldConfigArgument{
					"id":                 &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"productName":        &graphql.ArgumentConfig{Type: graphql.String},
					"productDescription": &graphql.ArgumentConfig{Type: graphql.String},
					"productImageData":   &graphql.ArgumentConfig{Type: graphql.String},
					"size":               &graphql.ArgumentConfig{Type: graphql.String},
					"cost":               &graphql.ArgumentConfig{Type: graphql.String},
					"price":              &graphql.ArgumentConfig{Type: graphql.String},
					"quantity":           &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					updates := service.UpdateProductVariantInfo{
						ProductName:        optionalString(p.Args, "productName"),
						ProductDescription: optionalString(p.Args, "productDescription"),
						ProductImage:       imagePatch(p.Args, "productImageData"),
						Size:               optionalString(p.Args, "size"),
						Cost:               optionalString(p.Args, "cost"),
						Price:              optionalString(p.Args, "price"),
						Quantity:           optionalInt(p.Args, "quantity"),
					}
					return catalog.UpdateProductVariant(p.Context, rc, p.Args["id"].(string), updates)
				},
			},
			"deleteProductVariant": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"productID": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"id":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					if err := catalog.DeleteProductVariant(p.Context, rc, p.Args["productID"].(string), p.Args["id"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"unarchiveProduct": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc, err := requestContext(p)
					if err != nil {
						return nil, err
					}
					if err := catalog.UnarchiveProduct(p.Context, rc, p.Args["id"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
		},
	})
}

func optionalString(args map[string]interface{}, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}

func optionalInt(args map[string]interface{}, key string) *int {
	if v, ok := args[key].(int); ok {
		return &v
	}
	return nil
}

// imagePatch distinguishes the image argument's three states: key absent
// means keep, an explicit null means remove, a value means replace.
func imagePatch(args map[string]interface{}, key string) domain.ImagePatch {
	raw, ok := args[key]
	if !ok {
		return domain.KeepImage()
	}
	if raw == nil {
		return domain.RemoveImage()
	}
	data, ok := raw.(string)
	if !ok {
		return domain.KeepImage()
	}
	return domain.ReplaceImage(data)
}
