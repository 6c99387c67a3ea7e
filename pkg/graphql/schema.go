// Package graphql exposes the read-only catalogue over GraphQL.
//
//	{ catalog(category: "cat1") { demo buckets { name products { name price_formatted } } } }
package graphql

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/internal/catalog"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// NewSchema creates a schema from a root query.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

// CatalogSchema builds the storefront schema over loader.
func CatalogSchema(loader *catalog.Loader, prices catalog.PriceFormatter) (graphql.Schema, error) {
	category := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"icon": &graphql.Field{Type: graphql.String},
		},
	})

	product := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.String},
			"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Description: "Minor currency units."},
			"stock":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"image_url":   &graphql.Field{Type: graphql.String},
			"category_id": &graphql.Field{Type: graphql.String},
			"in_stock": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					prod := p.Source.(models.Product)
					return prod.InStock(), nil
				},
			},
			"price_formatted": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return prices.Format(p.Source.(models.Product).Price), nil
				},
			},
		},
	})

	bucket := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bucket",
		Fields: graphql.Fields{
			"category_id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"icon":        &graphql.Field{Type: graphql.String},
			"products":    &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(product))},
		},
	})

	settings := graphql.NewObject(graphql.ObjectConfig{
		Name: "Settings",
		Fields: graphql.Fields{
			"logo_url":               &graphql.Field{Type: graphql.String},
			"hero_image_url":         &graphql.Field{Type: graphql.String},
			"why_choose_image_url":   &graphql.Field{Type: graphql.String},
			"how_it_works_image_url": &graphql.Field{Type: graphql.String},
			"hero_title":             &graphql.Field{Type: graphql.String},
			"hero_discount":          &graphql.Field{Type: graphql.String},
		},
	})

	view := graphql.NewObject(graphql.ObjectConfig{
		Name: "Catalog",
		Fields: graphql.Fields{
			"filter":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"demo":       &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"categories": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(category))},
			"buckets":    &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(bucket))},
			"settings":   &graphql.Field{Type: settings},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"catalog": &graphql.Field{
				Type: graphql.NewNonNull(view),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: catalog.FilterAll},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					filter, _ := p.Args["category"].(string)
					return loader.Load(p.Context, filter)
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(category)),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					_, cats, _, err := loader.Lists(p.Context)
					return cats, err
				},
			},
			"product": &graphql.Field{
				Type: product,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					prod, err := loader.Product(p.Context, id)
					if err != nil {
						return nil, nil
					}
					return prod, nil
				},
			},
		},
	})

	return NewSchema(query)
}

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Execute runs req against schema.
func Execute(ctx context.Context, schema graphql.Schema, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// Handler serves GET ?query= and POST JSON requests.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if r.Method == http.MethodGet {
			req.Query = r.URL.Query().Get("query")
			req.OperationName = r.URL.Query().Get("operationName")
		} else if _, err := bind.JSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res := Execute(r.Context(), schema, req)
		if res.HasErrors() {
			logger.WithCtx(r.Context()).Debug("graphql: query errors", "errors", res.Errors)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res) //nolint:errcheck
	}
}
