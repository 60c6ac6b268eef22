package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/storage"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// --- Inputs ---

type ProductInput struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Slug        string          `json:"slug" binding:"omitempty,max=220,slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *int64          `json:"categoryId" binding:"omitempty,gt=0"`
	Origin      string          `json:"origin" binding:"max=120"`
	Era         string          `json:"era" binding:"max=120"`
	Material    string          `json:"material" binding:"max=120"`
	IsActive    *bool           `json:"isActive"` // defaults to true on create
	IsFeatured  bool            `json:"isFeatured"`
}

type ImageInput struct {
	ID        int64  `json:"id" binding:"gte=0"`
	URL       string `json:"url" binding:"required,max=500"`
	AltText   string `json:"altText" binding:"max=255"`
	Position  int    `json:"position" binding:"gte=0"`
	IsPrimary bool   `json:"isPrimary"`
}

type VariantInput struct {
	ID            int64               `json:"id" binding:"gte=0"`
	SKU           string              `json:"sku" binding:"required,max=64"`
	Name          string              `json:"name" binding:"required,max=150"`
	Color         string              `json:"color" binding:"max=60"`
	Size          string              `json:"size" binding:"max=60"`
	PriceOverride decimal.NullDecimal `json:"priceOverride"`
	Stock         int                 `json:"stock" binding:"gte=0"`
}

// CreateProductInput may carry images and variants to insert together with
// the product.
type CreateProductInput struct {
	ProductInput
	Images   []ImageInput   `json:"images" binding:"omitempty,dive"`
	Variants []VariantInput `json:"variants" binding:"omitempty,dive"`
}

// BundleInput is the full editor state saved by PUT /admin/products/:id/bundle.
type BundleInput struct {
	Product  ProductInput   `json:"product"`
	Images   []ImageInput   `json:"images" binding:"omitempty,dive"`
	Variants []VariantInput `json:"variants" binding:"omitempty,dive"`
}

type ImagePatchInput struct {
	AltText   *string `json:"altText" form:"altText" binding:"omitempty,max=255"`
	Position  *int    `json:"position" form:"position" binding:"omitempty,gte=0"`
	IsPrimary *bool   `json:"isPrimary" form:"isPrimary"`
}

// --- Conversions ---

var errNegativePrice = errors.New("price must not be negative")

func (in *ProductInput) apply(p *models.Product) error {
	if in.Price.IsNegative() {
		return errNegativePrice
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Slug = makeSlug(in.Slug, in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.CategoryID = in.CategoryID
	p.Origin = in.Origin
	p.Era = in.Era
	p.Material = in.Material
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.IsFeatured = in.IsFeatured
	return nil
}

func (in *VariantInput) apply(v *models.ProductVariant) error {
	if in.PriceOverride.Valid && in.PriceOverride.Decimal.IsNegative() {
		return errNegativePrice
	}
	v.SKU = strings.TrimSpace(in.SKU)
	v.Name = strings.TrimSpace(in.Name)
	v.Color = in.Color
	v.Size = in.Size
	v.PriceOverride = in.PriceOverride
	v.Stock = in.Stock
	return nil
}

func toImages(productID int64, in []ImageInput) []models.ProductImage {
	out := make([]models.ProductImage, 0, len(in))
	for _, img := range in {
		out = append(out, models.ProductImage{
			ID:        img.ID,
			ProductID: productID,
			URL:       img.URL,
			AltText:   img.AltText,
			Position:  img.Position,
			IsPrimary: img.IsPrimary,
		})
	}
	return out
}

func toVariants(productID int64, in []VariantInput) ([]models.ProductVariant, error) {
	out := make([]models.ProductVariant, 0, len(in))
	for i := range in {
		v := models.ProductVariant{ID: in[i].ID, ProductID: productID}
		if err := in[i].apply(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseProductFilter reads the listing query string shared by the storefront
// and the back office.
func parseProductFilter(c *gin.Context) (store.ProductFilter, error) {
	f := store.ProductFilter{
		Query:        strings.TrimSpace(c.Query("q")),
		CategorySlug: c.Query("category"),
		Sort:         c.DefaultQuery("sort", "newest"),
		Page:         parsePage(c),
	}
	f.FeaturedOnly, _ = strconv.ParseBool(c.Query("featured"))

	for name, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return f, errors.New("invalid " + name)
		}
		*dst = &d
	}
	return f, nil
}

func (h *Handlers) listProducts(c *gin.Context, includeInactive bool) {
	f, err := parseProductFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f.IncludeInactive = includeInactive

	products, meta, err := fetchPage(f.Page, func(p store.Page) ([]models.Product, int64, error) {
		f.Page = p
		return h.Catalog.SearchProducts(c.Request.Context(), f)
	})
	if err != nil {
		h.respondError(c, err, "Failed to load products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "pagination": meta})
}

// --- Storefront ---

// ListProducts handles GET /v1/products
func (h *Handlers) ListProducts(c *gin.Context) {
	h.listProducts(c, false)
}

// GetProduct handles GET /v1/products/:slug
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.Catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// --- Admin: products ---

// AdminListProducts handles GET /v1/admin/products
func (h *Handlers) AdminListProducts(c *gin.Context) {
	h.listProducts(c, true)
}

// AdminGetProduct handles GET /v1/admin/products/:id
func (h *Handlers) AdminGetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct handles POST /v1/admin/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Build the product tree ---
	product := &models.Product{IsActive: true}
	if err := input.ProductInput.apply(product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	variants, err := toVariants(0, input.Variants)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product.Images = toImages(0, input.Images)
	product.Variants = variants
	for i := range product.Images {
		product.Images[i].ID = 0
	}
	for i := range product.Variants {
		product.Variants[i].ID = 0
	}

	// 3. --- Save ---
	if err := h.Catalog.CreateProduct(c.Request.Context(), product); err != nil {
		h.respondError(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product})
}

// UpdateProduct handles PUT /v1/admin/products/:id
// Only the product's own fields change; images and variants have their own
// routes.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}
	if err := input.apply(product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product.Category = nil

	if err := h.Catalog.UpdateProduct(c.Request.Context(), product); err != nil {
		h.respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

// SaveProductBundle handles PUT /v1/admin/products/:id/bundle
func (h *Handlers) SaveProductBundle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input BundleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Apply onto the current row ---
	product, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}
	previous := product.Images

	if err := input.Product.apply(product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	variants, err := toVariants(id, input.Variants)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	images := toImages(id, input.Images)
	product.Category = nil
	product.Images = nil
	product.Variants = nil

	// 3. --- Save everything in one transaction ---
	if err := h.Catalog.SaveProductBundle(c.Request.Context(), product, images, variants); err != nil {
		h.respondError(c, err, "Failed to save product")
		return
	}

	// 4. --- Remove files of images that were dropped ---
	kept := make(map[string]bool, len(images))
	for _, img := range images {
		kept[img.URL] = true
	}
	for _, img := range previous {
		if !kept[img.URL] {
			h.removeUpload(c, img.URL)
		}
	}

	saved, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product saved", "product": saved})
}

// DeleteProduct handles DELETE /v1/admin/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	product, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}
	if err := h.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete product")
		return
	}
	for _, img := range product.Images {
		h.removeUpload(c, img.URL)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// --- Admin: images ---

// AddProductImage handles POST /v1/admin/products/:id/images
// It takes either a multipart "image" file or a JSON body with a URL.
func (h *Handlers) AddProductImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := h.Catalog.GetProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}

	img := &models.ProductImage{ProductID: id}
	uploaded := ""

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		// 1a. --- File upload ---
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		var patch ImagePatchInput
		if err := c.ShouldBind(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		url, ok := h.saveUpload(c, storage.KindProducts, file)
		if !ok {
			return
		}
		uploaded = url
		img.URL = url
		applyImagePatch(img, &patch)
	} else {
		// 1b. --- URL registration ---
		var input ImageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		img.URL = input.URL
		img.AltText = input.AltText
		img.Position = input.Position
		img.IsPrimary = input.IsPrimary
	}

	// 2. --- Save ---
	if err := h.Catalog.AddProductImage(c.Request.Context(), img); err != nil {
		h.removeUpload(c, uploaded)
		h.respondError(c, err, "Failed to add image")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Image added", "image": img})
}

func applyImagePatch(img *models.ProductImage, patch *ImagePatchInput) {
	if patch.AltText != nil {
		img.AltText = *patch.AltText
	}
	if patch.Position != nil {
		img.Position = *patch.Position
	}
	if patch.IsPrimary != nil {
		img.IsPrimary = *patch.IsPrimary
	}
}

// UpdateProductImage handles PUT /v1/admin/products/:id/images/:imageId
func (h *Handlers) UpdateProductImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	imageID, ok := paramID(c, "imageId")
	if !ok {
		return
	}

	var patch ImagePatchInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	img, err := h.Catalog.GetProductImage(c.Request.Context(), id, imageID)
	if err != nil {
		h.respondError(c, err, "Failed to load image")
		return
	}
	applyImagePatch(img, &patch)

	if err := h.Catalog.UpdateProductImage(c.Request.Context(), img); err != nil {
		h.respondError(c, err, "Failed to update image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image updated", "image": img})
}

// DeleteProductImage handles DELETE /v1/admin/products/:id/images/:imageId
func (h *Handlers) DeleteProductImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	imageID, ok := paramID(c, "imageId")
	if !ok {
		return
	}

	img, err := h.Catalog.GetProductImage(c.Request.Context(), id, imageID)
	if err != nil {
		h.respondError(c, err, "Failed to load image")
		return
	}
	if err := h.Catalog.DeleteProductImage(c.Request.Context(), id, imageID); err != nil {
		h.respondError(c, err, "Failed to delete image")
		return
	}
	h.removeUpload(c, img.URL)

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// --- Admin: variants ---

// CreateVariant handles POST /v1/admin/products/:id/variants
func (h *Handlers) CreateVariant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.Catalog.GetProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to load product")
		return
	}

	variant := &models.ProductVariant{ProductID: id}
	if err := input.apply(variant); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Catalog.CreateVariant(c.Request.Context(), variant); err != nil {
		h.respondError(c, err, "Failed to create variant")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Variant created", "variant": variant})
}

// UpdateVariant handles PUT /v1/admin/products/:id/variants/:variantId
func (h *Handlers) UpdateVariant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	variantID, ok := paramID(c, "variantId")
	if !ok {
		return
	}

	var input VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	variant, err := h.Catalog.GetVariant(c.Request.Context(), id, variantID)
	if err != nil {
		h.respondError(c, err, "Failed to load variant")
		return
	}
	if err := input.apply(variant); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Catalog.UpdateVariant(c.Request.Context(), variant); err != nil {
		h.respondError(c, err, "Failed to update variant")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant updated", "variant": variant})
}

// DeleteVariant handles DELETE /v1/admin/products/:id/variants/:variantId
func (h *Handlers) DeleteVariant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	variantID, ok := paramID(c, "variantId")
	if !ok {
		return
	}

	if err := h.Catalog.DeleteVariant(c.Request.Context(), id, variantID); err != nil {
		h.respondError(c, err, "Failed to delete variant")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant deleted"})
}
