package controllers

import (
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/kasirin/kasirin/app/repositories"
	gql "github.com/kasirin/kasirin/pkg/graphql"
)

// NewGraphQLHandler builds the read-only reporting schema and returns its
// HTTP handler. Queries: products, customers, orders (same sorting as the
// REST endpoints), plus a salesSummary aggregate.
func NewGraphQLHandler(
	products *repositories.ProductRepository,
	customers *repositories.CustomerRepository,
	orders *repositories.OrderRepository,
) (http.HandlerFunc, error) {
	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"price":    &graphql.Field{Type: graphql.Float},
			"category": &graphql.Field{Type: graphql.String},
			"stock":    &graphql.Field{Type: graphql.Int},
			"barcode":  &graphql.Field{Type: graphql.String},
			"imageUrl": &graphql.Field{Type: graphql.String},
		},
	})

	customerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"email":       &graphql.Field{Type: graphql.String},
			"phone":       &graphql.Field{Type: graphql.String},
			"totalOrders": &graphql.Field{Type: graphql.Int},
			"totalSpent":  &graphql.Field{Type: graphql.Float},
			"status":      &graphql.Field{Type: graphql.String},
		},
	})

	orderItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderItem",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"productId":  &graphql.Field{Type: graphql.String},
			"quantity":   &graphql.Field{Type: graphql.Int},
			"unitPrice":  &graphql.Field{Type: graphql.Float},
			"totalPrice": &graphql.Field{Type: graphql.Float},
			"product":    &graphql.Field{Type: productType},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"customerId":    &graphql.Field{Type: graphql.String},
			"totalAmount":   &graphql.Field{Type: graphql.Float},
			"taxAmount":     &graphql.Field{Type: graphql.Float},
			"paymentMethod": &graphql.Field{Type: graphql.String},
			"paymentStatus": &graphql.Field{Type: graphql.String},
			"customer":      &graphql.Field{Type: customerType},
			"items":         &graphql.Field{Type: graphql.NewList(orderItemType)},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SalesSummary",
		Fields: graphql.Fields{
			"orderCount": &graphql.Field{Type: graphql.Int},
			"gross":      &graphql.Field{Type: graphql.Float},
			"tax":        &graphql.Field{Type: graphql.Float},
		},
	})

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return products.List(p.Context)
				},
			},
			"customers": &graphql.Field{
				Type: graphql.NewList(customerType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return customers.List(p.Context)
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return orders.List(p.Context)
				},
			},
			"salesSummary": &graphql.Field{
				Type: summaryType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					all, err := orders.List(p.Context)
					if err != nil {
						return nil, err
					}
					var gross, tax float64
					for _, o := range all {
						gross += o.TotalAmount
						tax += o.TaxAmount
					}
					return map[string]any{
						"orderCount": len(all),
						"gross":      gross,
						"tax":        tax,
					}, nil
				},
			},
		},
	})

	schema, err := gql.NewSchema(rootQuery)
	if err != nil {
		return nil, fmt.Errorf("graphql: build schema: %w", err)
	}
	return gql.Handler(schema), nil
}
