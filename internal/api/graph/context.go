package graph

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/ryangomba/abunco/internal/auth"
)

type contextKey int

const requestContextKey contextKey = iota

// WithRequestContext attaches the per-request unit of work to a standard
// context so resolvers can reach it.
func WithRequestContext(ctx context.Context, rc *auth.Context) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

func requestContext(p graphql.ResolveParams) (*auth.Context, error) {
	rc, ok := p.Context.Value(requestContextKey).(*auth.Context)
	if !ok {
		return nil, fmt.Errorf("no request context; store slug middleware missing")
	}
	return rc, nil
}
