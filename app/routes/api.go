// Package routes wires controllers onto the router.
package routes

import (
	"net/http"
	"time"

	"github.com/kasirin/kasirin/app/controllers"
	"github.com/kasirin/kasirin/pkg/ctx"
	"github.com/kasirin/kasirin/pkg/metrics"
	"github.com/kasirin/kasirin/pkg/middleware"
	"github.com/kasirin/kasirin/pkg/rbac"
	"github.com/kasirin/kasirin/pkg/reqid"
	"github.com/kasirin/kasirin/pkg/router"
)

// Deps carries everything the route table needs. Built in
// internal/server.Boot.
type Deps struct {
	Products  *controllers.ProductController
	Customers *controllers.CustomerController
	Orders    *controllers.OrderController
	Users     *controllers.UserController
	Payments  *controllers.PaymentController
	Realtime  *controllers.RealtimeController
	GraphQL   http.HandlerFunc
}

// Register builds the full route table.
func Register(r *router.Router, d Deps) {
	r.Use(
		reqid.Middleware(),
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(middleware.DefaultCORSOptions()),
		metrics.Middleware(),
		middleware.RateLimit(300, time.Minute),
	)

	r.HandleFunc("/metrics", metrics.Handler())

	api := r.Group("/api", middleware.Authenticate)

	api.Get("/products", "products.index", ctx.Wrap(d.Products.Index))
	api.Post("/products", "products.store", ctx.Wrap(d.Products.Store))
	api.Patch("/products/{id}", "products.update", ctx.Wrap(d.Products.Update))
	api.Delete("/products/{id}", "products.destroy", ctx.Wrap(d.Products.Destroy))
	api.Post("/products/{id}/image", "products.image", ctx.Wrap(d.Products.UploadImage))

	api.Get("/customers", "customers.index", ctx.Wrap(d.Customers.Index))
	api.Post("/customers", "customers.store", ctx.Wrap(d.Customers.Store))
	api.Patch("/customers/{id}", "customers.update", ctx.Wrap(d.Customers.Update))
	api.Delete("/customers/{id}", "customers.destroy", ctx.Wrap(d.Customers.Destroy))

	api.Get("/orders", "orders.index", ctx.Wrap(d.Orders.Index))
	api.Post("/orders", "orders.store", ctx.Wrap(d.Orders.Store))

	api.Get("/users", "users.index", ctx.Wrap(d.Users.Index))
	api.Post("/users", "users.store", ctx.Wrap(d.Users.Store))
	api.Get("/users/{id}", "users.show", ctx.Wrap(d.Users.Show))
	api.Patch("/users/{id}", "users.update", ctx.Wrap(d.Users.Update), rbac.HasRole("admin"))
	api.Delete("/users/{id}", "users.destroy", ctx.Wrap(d.Users.Destroy))

	api.Post("/payment/simulate", "payment.simulate", ctx.Wrap(d.Payments.Simulate))

	api.Get("/realtime", "realtime.stream", ctx.Wrap(d.Realtime.Stream))
	api.Get("/realtime/ws", "realtime.ws", ctx.Wrap(d.Realtime.Socket))

	if d.GraphQL != nil {
		api.Post("/graphql", "graphql", d.GraphQL)
	}
}
