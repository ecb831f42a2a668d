package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/repository"
	"github.com/SamuelFlet/hpdb/internal/service"
)

// NewSchema builds the executable schema. All resolvers read their
// dependencies from the RequestContext placed on the execution context by
// ContextBuilder.Build; the schema itself holds no handles.
func NewSchema() (graphql.Schema, error) {
	uploadScalar := graphql.NewScalar(graphql.ScalarConfig{
		Name:        "Upload",
		Description: "A file payload delivered through the GraphQL multipart request protocol.",
		Serialize: func(value interface{}) interface{} {
			return nil
		},
		ParseValue: func(value interface{}) interface{} {
			if upload, ok := value.(*domain.Upload); ok {
				return upload
			}
			return nil
		},
		ParseLiteral: func(valueAST ast.Value) interface{} {
			return nil
		},
	})

	orderByEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "ListingOrderBy",
		Values: graphql.EnumValueConfigMap{
			"cost_ASC":  &graphql.EnumValueConfig{Value: repository.OrderCostAsc},
			"cost_DESC": &graphql.EnumValueConfig{Value: repository.OrderCostDesc},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"category": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"photo":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	listingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Listing",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"cost":        &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"condition":   &graphql.Field{Type: graphql.String},
			"photo":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	reviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"content": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"rating":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.String},
			"user":  &graphql.Field{Type: userType},
		},
	})

	// Relation fields are attached after all object types exist; every one
	// of them re-queries by the parent's id instead of trusting any nested
	// data on the parent.
	userType.AddFieldConfig("listings", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(listingType)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			user := userSource(p.Source)
			if user == nil {
				return nil, fmt.Errorf("listings: unexpected parent type")
			}
			return For(p.Context).Listings.ByUser(p.Context, user.ID)
		},
	})
	userType.AddFieldConfig("reviews", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(reviewType)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			user := userSource(p.Source)
			if user == nil {
				return nil, fmt.Errorf("reviews: unexpected parent type")
			}
			return For(p.Context).Reviews.ByUser(p.Context, user.ID)
		},
	})

	productType.AddFieldConfig("listings", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(listingType)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			product := productSource(p.Source)
			if product == nil {
				return nil, fmt.Errorf("listings: unexpected parent type")
			}
			return For(p.Context).Listings.ByProduct(p.Context, product.ID, repository.OrderDefault)
		},
	})
	productType.AddFieldConfig("reviews", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(reviewType)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			product := productSource(p.Source)
			if product == nil {
				return nil, fmt.Errorf("reviews: unexpected parent type")
			}
			return For(p.Context).Reviews.ByProduct(p.Context, product.ID)
		},
	})
	productType.AddFieldConfig("rating", &graphql.Field{
		Type:        graphql.Float,
		Description: "Mean review rating, null when the product has no reviews.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			product := productSource(p.Source)
			if product == nil {
				return nil, fmt.Errorf("rating: unexpected parent type")
			}
			avg, err := For(p.Context).Reviews.Average(p.Context, product.ID)
			if err != nil {
				return nil, err
			}
			if avg == nil {
				return nil, nil
			}
			return *avg, nil
		},
	})

	listingType.AddFieldConfig("product", &graphql.Field{
		Type: productType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			listing := listingSource(p.Source)
			if listing == nil {
				return nil, fmt.Errorf("product: unexpected parent type")
			}
			if listing.ProductID == 0 {
				return nil, nil
			}
			product, err := For(p.Context).Products.GetByID(p.Context, listing.ProductID)
			if err != nil {
				if isNotFound(err) {
					return nil, nil
				}
				return nil, err
			}
			return product, nil
		},
	})
	listingType.AddFieldConfig("postedBy", &graphql.Field{
		Type: userType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			listing := listingSource(p.Source)
			if listing == nil {
				return nil, fmt.Errorf("postedBy: unexpected parent type")
			}
			if listing.PostedByID == 0 {
				return nil, nil
			}
			user, err := For(p.Context).Users.GetByID(p.Context, listing.PostedByID)
			if err != nil {
				if isNotFound(err) {
					return nil, nil
				}
				return nil, err
			}
			return user, nil
		},
	})

	reviewType.AddFieldConfig("user", &graphql.Field{
		Type: userType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			review := reviewSource(p.Source)
			if review == nil {
				return nil, fmt.Errorf("user: unexpected parent type")
			}
			if review.UserID == 0 {
				return nil, nil
			}
			user, err := For(p.Context).Users.GetByID(p.Context, review.UserID)
			if err != nil {
				if isNotFound(err) {
					return nil, nil
				}
				return nil, err
			}
			return user, nil
		},
	})
	reviewType.AddFieldConfig("product", &graphql.Field{
		Type: productType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			review := reviewSource(p.Source)
			if review == nil {
				return nil, fmt.Errorf("product: unexpected parent type")
			}
			if review.ProductID == 0 {
				return nil, nil
			}
			product, err := For(p.Context).Products.GetByID(p.Context, review.ProductID)
			if err != nil {
				if isNotFound(err) {
					return nil, nil
				}
				return nil, err
			}
			return product, nil
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return "Hello World!", nil
				},
			},
			"feed": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(listingType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return For(p.Context).Listings.Feed(p.Context)
				},
			},
			"prodlistFeed": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(listingType))),
				Args: graphql.FieldConfigArgument{
					"id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"orderBy": &graphql.ArgumentConfig{Type: orderByEnum},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					productID, err := parseID(p.Args["id"])
					if err != nil {
						return nil, err
					}
					order := repository.OrderDefault
					if v, ok := p.Args["orderBy"].(repository.ListingOrder); ok {
						order = v
					}
					return For(p.Context).Listings.ByProduct(p.Context, productID, order)
				},
			},
			"getProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id"])
					if err != nil {
						return nil, err
					}
					product, err := For(p.Context).Products.GetByID(p.Context, id)
					if err != nil {
						if isNotFound(err) {
							return nil, nil
						}
						return nil, err
					}
					return product, nil
				},
			},
			"getListing": &graphql.Field{
				Type: listingType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id"])
					if err != nil {
						return nil, err
					}
					listing, err := For(p.Context).Listings.GetByID(p.Context, id)
					if err != nil {
						if isNotFound(err) {
							return nil, nil
						}
						return nil, err
					}
					return listing, nil
				},
			},
			"prodfeed": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return For(p.Context).Products.Feed(p.Context)
				},
			},
			"me": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc := For(p.Context)
					if rc.CurrentUser == nil {
						return nil, service.ErrUnauthenticated
					}
					return rc.CurrentUser, nil
				},
			},
			"avg": &graphql.Field{
				Type: graphql.Float,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					productID, err := parseID(p.Args["id"])
					if err != nil {
						return nil, err
					}
					avg, err := For(p.Context).Reviews.Average(p.Context, productID)
					if err != nil {
						return nil, err
					}
					if avg == nil {
						return nil, nil
					}
					return *avg, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"signup": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)
					name, _ := p.Args["name"].(string)
					return For(p.Context).Users.Signup(p.Context, email, password, name)
				},
			},
			"login": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)
					return For(p.Context).Users.Login(p.Context, email, password)
				},
			},
			"newListing": &graphql.Field{
				Type: graphql.NewNonNull(listingType),
				Args: graphql.FieldConfigArgument{
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"cost":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"file":        &graphql.ArgumentConfig{Type: uploadScalar},
					"prodid":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc := For(p.Context)
					productID, err := parseID(p.Args["prodid"])
					if err != nil {
						return nil, err
					}
					input := service.NewListingInput{
						ProductID: productID,
					}
					input.Title, _ = p.Args["title"].(string)
					input.Description, _ = p.Args["description"].(string)
					input.Cost, _ = p.Args["cost"].(float64)
					input.File, _ = p.Args["file"].(*domain.Upload)
					return rc.Listings.Create(p.Context, rc.CurrentUser, input)
				},
			},
			"newProd": &graphql.Field{
				Type: graphql.NewNonNull(productType),
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"category": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"file":     &graphql.ArgumentConfig{Type: uploadScalar},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rc := For(p.Context)
					var input service.NewProductInput
					input.Name, _ = p.Args["name"].(string)
					input.Category, _ = p.Args["category"].(string)
					input.File, _ = p.Args["file"].(*domain.Upload)
					return rc.Products.Create(p.Context, rc.CurrentUser, input)
				},
			},
		},
	})

	subscriptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Subscription",
		Fields: graphql.Fields{
			"newListing": &graphql.Field{
				Type: graphql.NewNonNull(listingType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source, nil
				},
				Subscribe: func(p graphql.ResolveParams) (interface{}, error) {
					src := For(p.Context).Bus.Subscribe(p.Context)
					out := make(chan interface{})
					go func() {
						defer close(out)
						for listing := range src {
							select {
							case out <- listing:
							case <-p.Context.Done():
								return
							}
						}
					}()
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:        queryType,
		Mutation:     mutationType,
		Subscription: subscriptionType,
	})
}

func parseID(value interface{}) (int64, error) {
	switch v := value.(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid id %q", v)
		}
		return id, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("invalid id %v", value)
	}
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

func userSource(src interface{}) *domain.User {
	switch u := src.(type) {
	case *domain.User:
		return u
	case domain.User:
		return &u
	}
	return nil
}

func productSource(src interface{}) *domain.Product {
	switch p := src.(type) {
	case *domain.Product:
		return p
	case domain.Product:
		return &p
	}
	return nil
}

func listingSource(src interface{}) *domain.Listing {
	switch l := src.(type) {
	case *domain.Listing:
		return l
	case domain.Listing:
		return &l
	}
	return nil
}

func reviewSource(src interface{}) *domain.Review {
	switch r := src.(type) {
	case *domain.Review:
		return r
	case domain.Review:
		return &r
	}
	return nil
}
