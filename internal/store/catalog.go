package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/antiquenepal/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Categories ---

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.db.WithContext(ctx).Order("position ASC, name ASC").Find(&cats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translateError(err)
	}

	var children []models.Category
	err := s.db.WithContext(ctx).Where("parent_id = ?", c.ID).Order("position ASC, name ASC").Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load child categories: %w", err)
	}
	c.Children = children
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// UpdateCategory writes every column of an already loaded category. A new
// parent may not be the category itself or one of its descendants.
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.ParentID != nil {
			if err := ensureNotDescendant(tx, c.ID, *c.ParentID); err != nil {
				return err
			}
		}
		return translateError(tx.Save(c).Error)
	})
}

// ensureNotDescendant walks up from parentID and fails if the chain reaches
// id. The walk is bounded so existing bad data cannot loop forever.
func ensureNotDescendant(tx *gorm.DB, id, parentID int64) error {
	seen := make(map[int64]bool)
	for next := &parentID; next != nil; {
		if *next == id {
			return fmt.Errorf("%w: a category cannot be moved under itself or its descendants", ErrInvalidInput)
		}
		if seen[*next] {
			return nil
		}
		seen[*next] = true

		var ancestor models.Category
		err := tx.Select("id", "parent_id").First(&ancestor, *next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: parent category %d does not exist", ErrInvalidInput, *next)
		}
		if err != nil {
			return fmt.Errorf("failed to load parent category: %w", err)
		}
		next = ancestor.ParentID
	}
	return nil
}

// DeleteCategory detaches the category's products, moves its children up one
// level and removes the row, all in one transaction.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. --- Lock the row being deleted ---
		var cat models.Category
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cat, id).Error; err != nil {
			return translateError(err)
		}

		// 2. --- Detach products ---
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}

		// 3. --- Re-parent children ---
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Update("parent_id", cat.ParentID).Error; err != nil {
			return fmt.Errorf("failed to re-parent children: %w", err)
		}

		// 4. --- Delete ---
		if err := tx.Delete(&models.Category{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
}

// --- Products ---

var productSorts = map[string]string{
	"newest":     "products.created_at DESC, products.id DESC",
	"price_asc":  "products.price ASC, products.id ASC",
	"price_desc": "products.price DESC, products.id DESC",
	"name":       "products.name ASC, products.id ASC",
}

func (s *Store) filterProducts(ctx context.Context, f ProductFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Product{})

	if !f.IncludeInactive {
		q = q.Where("products.is_active = ?", true)
	}
	if f.Query != "" {
		like := likePattern(f.Query)
		q = q.Where("(products.name LIKE ? OR products.description LIKE ?)", like, like)
	}
	if f.CategorySlug != "" {
		// The category itself plus its direct children.
		parent := s.db.Model(&models.Category{}).Select("id").Where("slug = ?", f.CategorySlug)
		ids := s.db.Model(&models.Category{}).Select("id").Where("slug = ? OR parent_id IN (?)", f.CategorySlug, parent)
		q = q.Where("products.category_id IN (?)", ids)
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.FeaturedOnly {
		q = q.Where("products.is_featured = ?", true)
	}
	return q
}

func (s *Store) SearchProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	// 1. --- Count ---
	var total int64
	if err := s.filterProducts(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// 2. --- Page ---
	order, ok := productSorts[f.Sort]
	if !ok {
		order = productSorts["newest"]
	}

	var products []models.Product
	err := s.filterProducts(ctx, f).
		Preload("Category").
		Preload("Images", orderedByPosition).
		Preload("Variants", orderedByID).
		Order(order).
		Offset(f.Page.Offset()).
		Limit(f.Page.Size).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	return products, total, nil
}

func (s *Store) loadProduct(ctx context.Context, cond string, args ...any) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", orderedByPosition).
		Preload("Variants", orderedByID).
		Where(cond, args...).
		First(&p).Error
	if err != nil {
		return nil, translateError(err)
	}

	var summary models.RatingSummary
	err = s.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", p.ID).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load rating summary: %w", err)
	}
	p.AverageRating = summary.Average
	p.ReviewCount = summary.Count
	return &p, nil
}

// GetProduct loads a product by id regardless of its active flag.
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.loadProduct(ctx, "products.id = ?", id)
}

// GetProductBySlug only returns active products.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.loadProduct(ctx, "products.slug = ? AND products.is_active = ?", slug, true)
}

// CreateProduct inserts the product together with any images and variants
// already attached to it.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	normalizeImages(p.Images)
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveProductBundle replaces a product's fields, images and variants in one
// transaction. Rows missing from images or variants are deleted; rows with an
// id are updated and must already belong to the product.
func (s *Store) SaveProductBundle(ctx context.Context, p *models.Product, images []models.ProductImage, variants []models.ProductVariant) error {
	normalizeImages(images)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. --- Lock the product ---
		var locked models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&locked, p.ID).Error; err != nil {
			return translateError(err)
		}

		// 2. --- Product fields ---
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return translateError(err)
		}

		// 3. --- Images ---
		imageIDs := make([]int64, 0, len(images))
		for _, img := range images {
			if img.ID != 0 {
				imageIDs = append(imageIDs, img.ID)
			}
		}
		if err := ensureOwned(tx, &models.ProductImage{}, p.ID, imageIDs); err != nil {
			return err
		}
		if err := deleteOmitted(tx, &models.ProductImage{}, p.ID, imageIDs); err != nil {
			return err
		}
		for i := range images {
			images[i].ProductID = p.ID
			if err := upsertChild(tx, &images[i], images[i].ID); err != nil {
				return err
			}
		}

		// 4. --- Variants ---
		variantIDs := make([]int64, 0, len(variants))
		for _, v := range variants {
			if v.ID != 0 {
				variantIDs = append(variantIDs, v.ID)
			}
		}
		if err := ensureOwned(tx, &models.ProductVariant{}, p.ID, variantIDs); err != nil {
			return err
		}
		if err := deleteOmitted(tx, &models.ProductVariant{}, p.ID, variantIDs); err != nil {
			return err
		}
		for i := range variants {
			variants[i].ProductID = p.ID
			variants[i].Product = nil
			if err := upsertChild(tx, &variants[i], variants[i].ID); err != nil {
				return err
			}
		}

		p.Images = images
		p.Variants = variants
		return nil
	})
}

func ensureOwned(tx *gorm.DB, model any, productID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var n int64
	if err := tx.Model(model).Where("product_id = ? AND id IN ?", productID, ids).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to verify ownership: %w", err)
	}
	if n != int64(len(ids)) {
		return fmt.Errorf("%w: row does not belong to product %d", ErrInvalidInput, productID)
	}
	return nil
}

func deleteOmitted(tx *gorm.DB, model any, productID int64, keep []int64) error {
	q := tx.Where("product_id = ?", productID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	if err := q.Delete(model).Error; err != nil {
		return fmt.Errorf("failed to delete omitted rows: %w", err)
	}
	return nil
}

func upsertChild(tx *gorm.DB, row any, id int64) error {
	var err error
	if id == 0 {
		err = tx.Create(row).Error
	} else {
		err = tx.Omit("created_at").Save(row).Error
	}
	return translateError(err)
}

// normalizeImages leaves exactly one primary image when there are any.
func normalizeImages(images []models.ProductImage) {
	primary := -1
	for i := range images {
		if images[i].IsPrimary && primary == -1 {
			primary = i
		}
		images[i].IsPrimary = false
	}
	if len(images) == 0 {
		return
	}
	if primary == -1 {
		primary = 0
	}
	images[primary].IsPrimary = true
}

// --- Images ---

func (s *Store) AddProductImage(ctx context.Context, img *models.ProductImage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", img.ProductID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			img.IsPrimary = true
		}
		if img.IsPrimary && count > 0 {
			if err := clearPrimary(tx, img.ProductID); err != nil {
				return err
			}
		}
		return translateError(tx.Create(img).Error)
	})
}

func (s *Store) GetProductImage(ctx context.Context, productID, imageID int64) (*models.ProductImage, error) {
	var img models.ProductImage
	err := s.db.WithContext(ctx).Where("id = ? AND product_id = ?", imageID, productID).First(&img).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &img, nil
}

func (s *Store) UpdateProductImage(ctx context.Context, img *models.ProductImage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if img.IsPrimary {
			if err := clearPrimary(tx, img.ProductID); err != nil {
				return err
			}
		}
		res := tx.Model(&models.ProductImage{}).
			Where("id = ? AND product_id = ?", img.ID, img.ProductID).
			Updates(map[string]any{
				"url":        img.URL,
				"alt_text":   img.AltText,
				"position":   img.Position,
				"is_primary": img.IsPrimary,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update image: %w", res.Error)
		}
		return nil
	})
}

// DeleteProductImage removes an image and promotes the next one when the
// primary image goes away.
func (s *Store) DeleteProductImage(ctx context.Context, productID, imageID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var img models.ProductImage
		if err := tx.Where("id = ? AND product_id = ?", imageID, productID).First(&img).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Delete(&img).Error; err != nil {
			return fmt.Errorf("failed to delete image: %w", err)
		}
		if !img.IsPrimary {
			return nil
		}

		var next models.ProductImage
		err := tx.Where("product_id = ?", productID).Order("position ASC, id ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
}

func clearPrimary(tx *gorm.DB, productID int64) error {
	err := tx.Model(&models.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, true).
		Update("is_primary", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear primary image: %w", err)
	}
	return nil
}

// --- Variants ---

func (s *Store) CreateVariant(ctx context.Context, v *models.ProductVariant) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) GetVariant(ctx context.Context, productID, variantID int64) (*models.ProductVariant, error) {
	var v models.ProductVariant
	err := s.db.WithContext(ctx).Where("id = ? AND product_id = ?", variantID, productID).First(&v).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &v, nil
}

func (s *Store) UpdateVariant(ctx context.Context, v *models.ProductVariant) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(v).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) DeleteVariant(ctx context.Context, productID, variantID int64) error {
	res := s.db.WithContext(ctx).Where("id = ? AND product_id = ?", variantID, productID).Delete(&models.ProductVariant{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
