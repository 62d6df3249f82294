// Package ctx wraps a request/response pair into a single handler argument.
//
// Handlers take a *Context instead of (http.ResponseWriter, *http.Request)
// and get path params, body binding, and the API's JSON response shapes in
// one place:
//
//	func (c *ProductController) Show(cc *ctx.Context) {
//	    id := cc.Param("id")
//	    ...
//	    cc.OK(product)
//	}
//
//	r.Get("/api/products/{id}", "products.show", ctx.Wrap(controller.Show))
package ctx

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/kasirin/kasirin/pkg/bind"
	"github.com/kasirin/kasirin/pkg/response"
	"github.com/kasirin/kasirin/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context carries one request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ─────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/products/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value, or "" if absent.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// ─── Binding / validation ────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation.
// On failure it writes the appropriate error response (400 for malformed
// JSON, 422 with field errors) and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		response.Error(c.W, http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// ShouldBindJSON decodes and validates without writing a response; the
// caller handles errors.
func (c *Context) ShouldBindJSON(dest any) (map[string]string, error) {
	return bind.JSON(c.R, dest)
}

// ─── Response helpers (delegate to pkg/response) ─────────────────────────────

// OK writes a 200 with the record or list.
func (c *Context) OK(v any) { response.OK(c.W, v) }

// JSON writes v with an arbitrary status code.
func (c *Context) JSON(status int, v any) { response.JSON(c.W, status, v) }

// Null writes an explicit 200 "null" body.
func (c *Context) Null() { response.Null(c.W) }

// Deleted writes {"success": true}.
func (c *Context) Deleted() { response.Deleted(c.W) }

// Error writes a JSON error body.
func (c *Context) Error(status int, message string) { response.Error(c.W, status, message) }

// StoreError writes a 500 with the store failure as details.
func (c *Context) StoreError(message string, err error) { response.StoreError(c.W, message, err) }

// MethodNotAllowed writes the fixed 405 body.
func (c *Context) MethodNotAllowed(message string) { response.MethodNotAllowed(c.W, message) }
