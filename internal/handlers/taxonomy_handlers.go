package handlers

import (
	"net/http"
	"strings"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/storage"
	"github.com/gin-gonic/gin"
)

// BuildCategoryTree nests a flat list under its parents at every depth.
// Input order is kept among siblings, so a list sorted by position then name
// gives a sorted tree. Categories whose parent is missing become roots, and
// so does the first member of any parent cycle left in old data.
func BuildCategoryTree(flat []models.Category) []models.Category {
	// 1. Index every category by ID
	known := make(map[int64]bool, len(flat))
	for _, cat := range flat {
		known[cat.ID] = true
	}

	// 2. Group children under their parent
	byParent := make(map[int64][]models.Category)
	var roots []models.Category
	for _, cat := range flat {
		if cat.ParentID != nil && known[*cat.ParentID] && *cat.ParentID != cat.ID {
			byParent[*cat.ParentID] = append(byParent[*cat.ParentID], cat)
			continue
		}
		roots = append(roots, cat)
	}

	// 3. Attach children recursively. visited guards against parent cycles.
	visited := make(map[int64]bool, len(flat))
	var attach func(cats []models.Category) []models.Category
	attach = func(cats []models.Category) []models.Category {
		out := make([]models.Category, 0, len(cats))
		for _, cat := range cats {
			if visited[cat.ID] {
				continue
			}
			visited[cat.ID] = true
			cat.Children = attach(byParent[cat.ID])
			out = append(out, cat)
		}
		return out
	}
	tree := attach(roots)

	// 4. Anything still unvisited sits on a cycle; surface it as a root.
	for _, cat := range flat {
		if !visited[cat.ID] {
			tree = append(tree, attach([]models.Category{cat})...)
		}
	}
	return tree
}

// --- Storefront ---

// ListCategories (Public - Returns Tree Structure)
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": BuildCategoryTree(cats)})
}

// GetCategory (Public) returns a category and its direct children.
func (h *Handlers) GetCategory(c *gin.Context) {
	cat, err := h.Catalog.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err, "Failed to load category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat})
}

// --- Admin ---

// CategoryInput binds from JSON or from a multipart form carrying an
// "image" file.
type CategoryInput struct {
	Name        string  `json:"name" form:"name" binding:"required,max=120"`
	Slug        string  `json:"slug" form:"slug" binding:"omitempty,max=160,slug"`
	Description string  `json:"description" form:"description"`
	ParentID    *int64  `json:"parentId" form:"parentId" binding:"omitempty,gt=0"`
	Position    int     `json:"position" form:"position" binding:"gte=0"`
	ImageURL    *string `json:"imageUrl" form:"imageUrl" binding:"omitempty,url,max=500"`
}

// bindCategory binds the input and stores an attached image, if any.
// The returned URL is empty when no file came with the request.
func (h *Handlers) bindCategory(c *gin.Context) (*CategoryInput, string, bool) {
	var input CategoryInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, "", false
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return &input, "", true
	}
	file, err := c.FormFile("image")
	if err != nil {
		return &input, "", true
	}
	url, ok := h.saveUpload(c, storage.KindCategories, file)
	if !ok {
		return nil, "", false
	}
	return &input, url, true
}

// CreateCategory handles POST /v1/admin/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	input, uploaded, ok := h.bindCategory(c)
	if !ok {
		return
	}

	cat := &models.Category{
		Name:        strings.TrimSpace(input.Name),
		Slug:        makeSlug(input.Slug, input.Name),
		Description: input.Description,
		ParentID:    input.ParentID,
		Position:    input.Position,
		ImageURL:    input.ImageURL,
	}
	if uploaded != "" {
		cat.ImageURL = &uploaded
	}

	if err := h.Catalog.CreateCategory(c.Request.Context(), cat); err != nil {
		h.removeUpload(c, uploaded)
		h.respondError(c, err, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": cat})
}

// UpdateCategory handles PUT /v1/admin/categories/:id
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 1. Load current row
	cat, err := h.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to load category")
		return
	}

	// 2. Bind the new values
	input, uploaded, ok := h.bindCategory(c)
	if !ok {
		return
	}
	oldImage := cat.ImageURL

	cat.Name = strings.TrimSpace(input.Name)
	cat.Slug = makeSlug(input.Slug, input.Name)
	cat.Description = input.Description
	cat.ParentID = input.ParentID
	cat.Position = input.Position
	if input.ImageURL != nil {
		cat.ImageURL = input.ImageURL
	}
	if uploaded != "" {
		cat.ImageURL = &uploaded
	}

	// 3. Save
	if err := h.Catalog.UpdateCategory(c.Request.Context(), cat); err != nil {
		h.removeUpload(c, uploaded)
		h.respondError(c, err, "Failed to update category")
		return
	}

	// 4. The replaced image is no longer referenced
	if oldImage != nil && (cat.ImageURL == nil || *cat.ImageURL != *oldImage) {
		h.removeUpload(c, *oldImage)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": cat})
}

// DeleteCategory handles DELETE /v1/admin/categories/:id
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	cat, err := h.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to load category")
		return
	}

	if err := h.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete category")
		return
	}
	if cat.ImageURL != nil {
		h.removeUpload(c, *cat.ImageURL)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
