// Package controllers maps HTTP requests to the service and repository
// layer. Handlers use the ctx wrapper and the shared JSON response shapes.
package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/pkg/cache"
	"github.com/kasirin/kasirin/pkg/ctx"
	"github.com/kasirin/kasirin/pkg/storage"
)

// listCacheTTL bounds staleness when a change event is lost; normally the
// realtime invalidator clears entries well before this.
const listCacheTTL = 30 * time.Second

// ProductController serves /api/products.
type ProductController struct {
	products *repositories.ProductRepository
	cache    *cache.Cache
}

// NewProductController creates the controller. cache may be nil, which
// disables list caching.
func NewProductController(products *repositories.ProductRepository, cache *cache.Cache) *ProductController {
	return &ProductController{products: products, cache: cache}
}

// ProductInput is the create payload.
type ProductInput struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"required,gte=0"`
	Category string  `json:"category" validate:"required"`
	Stock    int     `json:"stock" validate:"gte=0"`
	Barcode  *string `json:"barcode" validate:"nullable"`
	ImageURL *string `json:"image_url" validate:"nullable,url"`
}

func (in ProductInput) toModel() *models.Product {
	return &models.Product{
		Name:     in.Name,
		Price:    in.Price,
		Category: in.Category,
		Stock:    in.Stock,
		Barcode:  in.Barcode,
		ImageURL: in.ImageURL,
	}
}

// ProductPatch is the partial-update payload. Nil fields stay untouched.
type ProductPatch struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price" validate:"nullable,gte=0"`
	Category *string  `json:"category"`
	Stock    *int     `json:"stock" validate:"nullable,gte=0"`
	Barcode  *string  `json:"barcode"`
	ImageURL *string  `json:"image_url" validate:"nullable,url"`
}

func (p ProductPatch) changes() map[string]any {
	changes := map[string]any{}
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.Price != nil {
		changes["price"] = *p.Price
	}
	if p.Category != nil {
		changes["category"] = *p.Category
	}
	if p.Stock != nil {
		changes["stock"] = *p.Stock
	}
	if p.Barcode != nil {
		changes["barcode"] = *p.Barcode
	}
	if p.ImageURL != nil {
		changes["image_url"] = *p.ImageURL
	}
	return changes
}

// Index lists all products sorted by name. The list is served from the
// Redis cache when warm; change events evict it.
func (pc *ProductController) Index(c *ctx.Context) {
	if pc.cache != nil {
		var products []models.Product
		err := pc.cache.Remember(c.Context(), "products:list", listCacheTTL, &products, func() (any, error) {
			return pc.products.List(c.Context())
		})
		if err == nil {
			c.OK(products)
			return
		}
		// Fall through to the store on any cache failure.
	}

	products, err := pc.products.List(c.Context())
	if err != nil {
		c.StoreError("Failed to fetch products", err)
		return
	}
	c.OK(products)
}

// Store creates a product and returns the stored row.
func (pc *ProductController) Store(c *ctx.Context) {
	var in ProductInput
	if !c.BindJSON(&in) {
		return
	}

	product := in.toModel()
	if err := pc.products.Create(c.Context(), product); err != nil {
		c.StoreError("Failed to create product", err)
		return
	}
	c.OK(product)
}

// Update applies a partial update and returns the fresh row.
func (pc *ProductController) Update(c *ctx.Context) {
	var patch ProductPatch
	if !c.BindJSON(&patch) {
		return
	}

	changes := patch.changes()
	if len(changes) == 0 {
		c.Error(http.StatusBadRequest, "No fields to update")
		return
	}

	product, err := pc.products.Update(c.Context(), c.Param("id"), changes)
	if err != nil {
		c.StoreError("Failed to update product", err)
		return
	}
	c.OK(product)
}

// Destroy deletes a product.
func (pc *ProductController) Destroy(c *ctx.Context) {
	if err := pc.products.Delete(c.Context(), c.Param("id")); err != nil {
		c.StoreError("Failed to delete product", err)
		return
	}
	c.Deleted()
}

// maxImageBytes caps product image uploads at 8 MB.
const maxImageBytes = 8 << 20

// UploadImage stores a product image on the configured disk and points the
// product's image_url at it. Expects a multipart form with an "image" part.
func (pc *ProductController) UploadImage(c *ctx.Context) {
	id := c.Param("id")
	if _, err := pc.products.Find(c.Context(), id); err != nil {
		c.StoreError("Failed to fetch product", err)
		return
	}

	if err := c.R.ParseMultipartForm(maxImageBytes); err != nil {
		c.Error(http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := c.R.FormFile("image")
	if err != nil {
		c.Error(http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		c.Error(http.StatusBadRequest, "Unsupported image type")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.Error(http.StatusBadRequest, "Could not read image")
		return
	}

	path := fmt.Sprintf("products/%s%s", id, ext)
	if err := storage.Put(path, data); err != nil {
		c.StoreError("Failed to store image", err)
		return
	}

	url := storage.URL(path)
	product, err := pc.products.Update(c.Context(), id, map[string]any{"image_url": url})
	if err != nil {
		c.StoreError("Failed to update product", err)
		return
	}
	c.OK(product)
}
