// Package graph defines the GraphQL schema, the field resolver graph and
// the per-request context every resolver consumes.
package graph

import (
	"context"

	"github.com/SamuelFlet/hpdb/internal/auth"
	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/pubsub"
	"github.com/SamuelFlet/hpdb/internal/service"
)

type ctxKey struct{}

// RequestContext is the request-scoped bundle of service handles, the
// resolved current user (nil for anonymous callers) and the event bus.
type RequestContext struct {
	Users       service.UserService
	Products    service.ProductService
	Listings    service.ListingService
	Reviews     service.ReviewService
	Bus         *pubsub.ListingBus
	CurrentUser *domain.User
}

// ContextBuilder assembles a RequestContext per incoming request. The
// service and bus handles are process-wide; the current user is resolved
// fresh for every call.
type ContextBuilder struct {
	verifier *auth.Verifier
	users    service.UserService
	products service.ProductService
	listings service.ListingService
	reviews  service.ReviewService
	bus      *pubsub.ListingBus
}

func NewContextBuilder(
	verifier *auth.Verifier,
	users service.UserService,
	products service.ProductService,
	listings service.ListingService,
	reviews service.ReviewService,
	bus *pubsub.ListingBus,
) *ContextBuilder {
	return &ContextBuilder{
		verifier: verifier,
		users:    users,
		products: products,
		listings: listings,
		reviews:  reviews,
		bus:      bus,
	}
}

// Build verifies the Authorization header (exactly once per request) and
// returns a context carrying the request bundle. A missing header yields
// an anonymous context; a malformed or expired credential is an error.
func (b *ContextBuilder) Build(ctx context.Context, authHeader string) (context.Context, error) {
	current, err := b.verifier.Authenticate(ctx, authHeader)
	if err != nil {
		return nil, err
	}

	rc := &RequestContext{
		Users:       b.users,
		Products:    b.products,
		Listings:    b.listings,
		Reviews:     b.reviews,
		Bus:         b.bus,
		CurrentUser: current,
	}
	return context.WithValue(ctx, ctxKey{}, rc), nil
}

// For extracts the request bundle placed by Build. Resolvers only run
// under contexts produced by the builder.
func For(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(ctxKey{}).(*RequestContext)
	return rc
}
