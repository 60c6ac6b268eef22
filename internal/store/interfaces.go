package store

import (
	"context"
	"time"

	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// Page selects one page of a listing. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// ProductFilter narrows a catalog search.
type ProductFilter struct {
	Query           string
	CategorySlug    string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	FeaturedOnly    bool
	IncludeInactive bool
	Sort            string // newest, price_asc, price_desc, name
	Page            Page
}

// OrderFilter narrows the back-office order list.
type OrderFilter struct {
	Status string
	Search string // order number or customer email
	Page   Page
}

// PlaceOrderInput carries everything checkout needs.
type PlaceOrderInput struct {
	UserID        int64
	AddressID     int64
	PaymentMethod string
	Notes         string
	Pricing       pricing.Policy
}

// DashboardStats is the summary shown on the admin landing page.
type DashboardStats struct {
	OrdersByStatus   map[string]int64 `json:"ordersByStatus"`
	TotalOrders      int64            `json:"totalOrders"`
	Revenue          decimal.Decimal  `json:"revenue"`
	ActiveProducts   int64            `json:"activeProducts"`
	LowStockVariants int64            `json:"lowStockVariants"`
	Customers        int64            `json:"customers"`
	RecentOrders     []models.Order   `json:"recentOrders"`
}

type CatalogStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	SearchProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	SaveProductBundle(ctx context.Context, p *models.Product, images []models.ProductImage, variants []models.ProductVariant) error

	AddProductImage(ctx context.Context, img *models.ProductImage) error
	GetProductImage(ctx context.Context, productID, imageID int64) (*models.ProductImage, error)
	UpdateProductImage(ctx context.Context, img *models.ProductImage) error
	DeleteProductImage(ctx context.Context, productID, imageID int64) error

	CreateVariant(ctx context.Context, v *models.ProductVariant) error
	GetVariant(ctx context.Context, productID, variantID int64) (*models.ProductVariant, error)
	UpdateVariant(ctx context.Context, v *models.ProductVariant) error
	DeleteVariant(ctx context.Context, productID, variantID int64) error
}

type CartStore interface {
	GetCart(ctx context.Context, userID int64) (*models.Cart, error)
	AddItem(ctx context.Context, userID, variantID int64, quantity int) error
	SetItemQuantity(ctx context.Context, userID, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID int64) error
	ClearCart(ctx context.Context, userID int64) error
	CountItems(ctx context.Context, userID int64) (int, error)
}

type OrderStore interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID int64, p Page) ([]models.Order, int64, error)
	GetUserOrder(ctx context.Context, userID, orderID int64) (*models.Order, error)

	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (order *models.Order, previous string, err error)
	UpdatePaymentStatus(ctx context.Context, id int64, status string) (*models.Order, error)
	CancelOverdueOrders(ctx context.Context, placedBefore time.Time) ([]models.Order, error)

	DashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertOAuthUser(ctx context.Context, subject, email, fullName, avatarURL string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error

	ListAddresses(ctx context.Context, userID int64) ([]models.Address, error)
	GetAddress(ctx context.Context, userID, id int64) (*models.Address, error)
	CreateAddress(ctx context.Context, a *models.Address) error
	UpdateAddress(ctx context.Context, a *models.Address) error
	DeleteAddress(ctx context.Context, userID, id int64) error
	SetDefaultAddress(ctx context.Context, userID, id int64) error
}

type WishlistStore interface {
	ListWishlist(ctx context.Context, userID int64) ([]models.WishlistItem, error)
	AddToWishlist(ctx context.Context, userID, productID int64) error
	RemoveFromWishlist(ctx context.Context, userID, productID int64) error
	ToggleWishlist(ctx context.Context, userID, productID int64) (bool, error)
}

type ReviewStore interface {
	ListReviews(ctx context.Context, productID int64, p Page) ([]models.Review, int64, error)
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	CreateReview(ctx context.Context, r *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
}

type ContentStore interface {
	GetFooter(ctx context.Context) (*models.FooterContent, error)
	SaveFooter(ctx context.Context, f *models.FooterContent) error
	ListSettings(ctx context.Context) ([]models.SiteSetting, error)
	GetSetting(ctx context.Context, key string) (*models.SiteSetting, error)
	PutSetting(ctx context.Context, key, value string) (*models.SiteSetting, error)
}

type NotificationStore interface {
	AddNotification(ctx context.Context, userID int64, message, link string) error
	ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error

	SaveAssistantLog(ctx context.Context, l *models.AssistantLog) error
}
