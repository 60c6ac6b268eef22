package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/antiquenepal/storefront/internal/ai"
	"github.com/antiquenepal/storefront/internal/auth"
	"github.com/antiquenepal/storefront/internal/events"
	"github.com/antiquenepal/storefront/internal/middleware"
	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

// asUser stands in for AuthMiddleware.
func asUser(id int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Set("userRole", role)
		c.Next()
	}
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func placedOrder() *models.Order {
	d := decimal.RequireFromString
	return &models.Order{
		ID:            11,
		OrderNumber:   "AN-0A1B2C3D",
		UserID:        7,
		Status:        models.OrderStatusPending,
		PaymentMethod: models.PaymentMethodCOD,
		PaymentStatus: models.PaymentUnpaid,
		ShippingName:  "Sita Sharma",
		Subtotal:      d("2400"),
		ShippingFee:   d("150"),
		Tax:           d("312"),
		Total:         d("2862"),
		CreatedAt:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{ProductName: "Copper Singing Bowl", VariantName: "Large", SKU: "SB-L", UnitPrice: d("1200"), Quantity: 2, LineTotal: d("2400")},
		},
		Badge: models.BadgeFor(models.OrderStatusPending),
	}
}

// --- Checkout ---

func TestCheckout_Success(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.POST("/checkout", asUser(7, models.RoleCustomer), h.Checkout)

	d.orders.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(in store.PlaceOrderInput) bool {
		return in.UserID == 7 && in.AddressID == 3 && in.PaymentMethod == models.PaymentMethodCOD &&
			in.Pricing.Currency == "NPR"
	})).Return(placedOrder(), nil).Once()
	d.users.On("GetUser", mock.Anything, int64(7)).Return(&models.User{ID: 7, Email: "sita@example.com"}, nil)

	w := doJSON(r, http.MethodPost, "/checkout", gin.H{"addressId": 3, "paymentMethod": "cod"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AN-0A1B2C3D", resp.Order.OrderNumber)

	assert.Equal(t, []string{events.OrderPlaced}, d.events.types())
	require.Len(t, d.mailer.sent, 1)
	assert.Equal(t, "sita@example.com", d.mailer.sent[0].to)
	assert.Contains(t, d.mailer.sent[0].subject, "AN-0A1B2C3D")
	d.orders.AssertExpectations(t)
}

func TestCheckout_StoreErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty cart", store.ErrEmptyCart, http.StatusBadRequest},
		{"stock conflict", fmt.Errorf("variant 4: %w", store.ErrInsufficientStock), http.StatusConflict},
		{"foreign address", store.ErrNotFound, http.StatusNotFound},
		{"database down", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, d := newTestHandlers()
			r := gin.New()
			r.POST("/checkout", asUser(7, models.RoleCustomer), h.Checkout)

			d.orders.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := doJSON(r, http.MethodPost, "/checkout", gin.H{"addressId": 3, "paymentMethod": "esewa"})
			assert.Equal(t, tt.want, w.Code)
			assert.Empty(t, d.events.types(), "no event for a failed checkout")
			assert.Empty(t, d.mailer.sent)
		})
	}
}

func TestCheckout_RejectsUnknownPaymentMethod(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.POST("/checkout", asUser(7, models.RoleCustomer), h.Checkout)

	w := doJSON(r, http.MethodPost, "/checkout", gin.H{"addressId": 3, "paymentMethod": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	d.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

// --- Cart ---

func TestAddToCart_Validation(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.POST("/cart/items", asUser(7, models.RoleCustomer), h.AddToCart)

	for _, body := range []gin.H{
		{"variantId": 5, "quantity": 0},
		{"variantId": 5, "quantity": -2},
		{"quantity": 1},
	} {
		w := doJSON(r, http.MethodPost, "/cart/items", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	d.carts.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddToCart_Success(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.POST("/cart/items", asUser(7, models.RoleCustomer), h.AddToCart)

	d.carts.On("AddItem", mock.Anything, int64(7), int64(5), 2).Return(nil).Once()
	d.carts.On("CountItems", mock.Anything, int64(7)).Return(3, nil).Once()

	w := doJSON(r, http.MethodPost, "/cart/items", gin.H{"variantId": 5, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Item added to cart","count":3}`, w.Body.String())
}

func TestAddToCart_OutOfStock(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.POST("/cart/items", asUser(7, models.RoleCustomer), h.AddToCart)

	d.carts.On("AddItem", mock.Anything, int64(7), int64(5), 9).Return(store.ErrInsufficientStock).Once()

	w := doJSON(r, http.MethodPost, "/cart/items", gin.H{"variantId": 5, "quantity": 9})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBuildCartView(t *testing.T) {
	h, _ := newTestHandlers()
	d := decimal.RequireFromString

	bowl := &models.Product{ID: 1, Name: "Singing Bowl", Slug: "singing-bowl", Price: d("1200"), IsActive: true,
		Images: []models.ProductImage{{URL: "/uploads/products/a.png", IsPrimary: true}}}
	mask := &models.Product{ID: 2, Name: "Bhairav Mask", Slug: "bhairav-mask", Price: d("3000"), IsActive: false}

	cart := &models.Cart{Items: []models.CartItem{
		{ID: 10, Quantity: 2, Variant: &models.ProductVariant{ID: 100, Name: "Large", Stock: 5, Product: bowl}},
		{ID: 11, Quantity: 1, Variant: &models.ProductVariant{ID: 200, Name: "Painted", Stock: 1,
			PriceOverride: decimal.NewNullDecimal(d("2500")), Product: mask}},
	}}

	view := buildCartView(cart, h.Pricing)
	require.Len(t, view.Items, 2)

	assert.Equal(t, "2400", view.Items[0].LineTotal.String())
	assert.Equal(t, "/uploads/products/a.png", view.Items[0].ImageURL)
	assert.True(t, view.Items[0].Available)

	assert.Equal(t, "2500", view.Items[1].UnitPrice.String())
	assert.False(t, view.Items[1].Available, "inactive product")

	assert.Equal(t, "4900", view.Summary.Subtotal.String())
	assert.True(t, view.Summary.Shipping.Equal(decimal.NewFromInt(150)), "below the free shipping threshold")
	assert.Equal(t, 3, view.Summary.ItemCount)
}

// --- Orders ---

func TestDownloadReceipt(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.GET("/orders/:id/receipt.pdf", asUser(7, models.RoleCustomer), h.DownloadReceipt)

	d.orders.On("GetUserOrder", mock.Anything, int64(7), int64(11)).Return(placedOrder(), nil).Once()

	w := doJSON(r, http.MethodGet, "/orders/11/receipt.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-AN-0A1B2C3D.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestDownloadReceipt_OtherUsersOrder(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.GET("/orders/:id/receipt.pdf", asUser(8, models.RoleCustomer), h.DownloadReceipt)

	d.orders.On("GetUserOrder", mock.Anything, int64(8), int64(11)).Return(nil, store.ErrNotFound).Once()

	w := doJSON(r, http.MethodGet, "/orders/11/receipt.pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateOrderStatus_NotifiesCustomer(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.PATCH("/admin/orders/:id/status", asUser(1, models.RoleAdmin), h.UpdateOrderStatus)

	updated := placedOrder()
	updated.Status = models.OrderStatusShipped
	updated.Badge = models.BadgeFor(models.OrderStatusShipped)

	d.orders.On("UpdateOrderStatus", mock.Anything, int64(11), models.OrderStatusShipped).Return(updated, models.OrderStatusPending, nil).Once()
	d.notifications.On("AddNotification", mock.Anything, int64(7), "Your order AN-0A1B2C3D is now shipped.", "/orders/11").Return(nil).Once()

	w := doJSON(r, http.MethodPatch, "/admin/orders/11/status", gin.H{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	d.notifications.AssertExpectations(t)
	assert.Equal(t, []string{events.OrderStatusChanged}, d.events.types())
}

func TestUpdateOrderStatus_AlreadyAppliedIsSilent(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.PATCH("/admin/orders/:id/status", asUser(1, models.RoleAdmin), h.UpdateOrderStatus)

	// Another request shipped the order first; the locked read already saw "shipped".
	shipped := placedOrder()
	shipped.Status = models.OrderStatusShipped
	shipped.Badge = models.BadgeFor(models.OrderStatusShipped)
	d.orders.On("UpdateOrderStatus", mock.Anything, int64(11), models.OrderStatusShipped).Return(shipped, models.OrderStatusShipped, nil).Once()

	w := doJSON(r, http.MethodPatch, "/admin/orders/11/status", gin.H{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Order status unchanged")

	d.notifications.AssertNotCalled(t, "AddNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, d.events.types())
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.PATCH("/admin/orders/:id/status", asUser(1, models.RoleAdmin), h.UpdateOrderStatus)

	w := doJSON(r, http.MethodPatch, "/admin/orders/11/status", gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	d.orders.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessOverdueOrders(t *testing.T) {
	h, d := newTestHandlers()

	first, second := placedOrder(), placedOrder()
	second.ID, second.OrderNumber, second.UserID = 12, "AN-0000FFFF", 9

	d.orders.On("CancelOverdueOrders", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) >= 48*time.Hour-time.Minute
	})).Return([]models.Order{*first, *second}, nil).Once()
	d.notifications.On("AddNotification", mock.Anything, int64(7), mock.Anything, "/orders/11").Return(nil).Once()
	d.notifications.On("AddNotification", mock.Anything, int64(9), mock.Anything, "/orders/12").Return(errors.New("db busy")).Once()

	n, err := h.ProcessOverdueOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{events.OrderCancelled, events.OrderCancelled}, d.events.types())
	d.notifications.AssertExpectations(t)
}

// --- Admin guard ---

func TestAdminRoutesRejectCustomers(t *testing.T) {
	h, d := newTestHandlers()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	r := gin.New()
	r.GET("/admin/dashboard-stats", middleware.AuthMiddleware(tokens), middleware.AdminMiddleware(d.users), h.GetDashboardStats)

	// The token claims admin, but the stored role decides.
	token, err := tokens.GenerateToken(7, models.RoleAdmin)
	require.NoError(t, err)
	d.users.On("GetUser", mock.Anything, int64(7)).Return(&models.User{ID: 7, Role: models.RoleCustomer}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard-stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	d.orders.AssertNotCalled(t, "DashboardStats", mock.Anything, mock.Anything)

	w = doJSON(r, http.MethodGet, "/admin/dashboard-stats", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetDashboardStats(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.GET("/admin/dashboard-stats", asUser(1, models.RoleAdmin), h.GetDashboardStats)

	stats := &store.DashboardStats{TotalOrders: 4, Revenue: decimal.RequireFromString("12500")}
	d.orders.On("DashboardStats", mock.Anything, lowStockThreshold).Return(stats, nil).Once()

	w := doJSON(r, http.MethodGet, "/admin/dashboard-stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalOrders":4`)
}

// --- Catalog ---

func TestListProducts_PassesFilters(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.GET("/products", h.ListProducts)

	d.catalog.On("SearchProducts", mock.Anything, mock.MatchedBy(func(f store.ProductFilter) bool {
		return f.Query == "bowl" && f.CategorySlug == "metalwork" && f.MinPrice != nil &&
			f.MinPrice.Equal(decimal.NewFromInt(1000)) && f.MaxPrice == nil && f.FeaturedOnly &&
			!f.IncludeInactive && f.Sort == "price_asc" && f.Page == store.Page{Number: 1, Size: defaultPageSize}
	})).Return([]models.Product{{ID: 1, Name: "Singing Bowl"}}, int64(1), nil).Once()

	w := doJSON(r, http.MethodGet, "/products?q=bowl&category=metalwork&min_price=1000&featured=true&sort=price_asc", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Products   []models.Product `json:"products"`
		Pagination PageMeta         `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 1)
	assert.Equal(t, PageMeta{Page: 1, PageSize: 12, Total: 1, TotalPages: 1}, resp.Pagination)
}

func TestListProducts_BadPrice(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.GET("/products", h.ListProducts)

	for _, q := range []string{"min_price=abc", "max_price=-5"} {
		w := doJSON(r, http.MethodGet, "/products?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	d.catalog.AssertNotCalled(t, "SearchProducts", mock.Anything, mock.Anything)
}

func TestGetProduct_NotFound(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.GET("/products/:slug", h.GetProduct)

	d.catalog.On("GetProductBySlug", mock.Anything, "retired-thangka").Return(nil, store.ErrNotFound).Once()

	w := doJSON(r, http.MethodGet, "/products/retired-thangka", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuildCategoryTree_NestsGrandchildren(t *testing.T) {
	id := func(v int64) *int64 { return &v }
	flat := []models.Category{
		{ID: 1, Name: "Art", Slug: "art"},
		{ID: 2, Name: "Paintings", Slug: "paintings", ParentID: id(1)},
		{ID: 3, Name: "Thangka", Slug: "thangka", ParentID: id(2)},
		{ID: 4, Name: "Metalwork", Slug: "metalwork"},
		{ID: 5, Name: "Orphan", Slug: "orphan", ParentID: id(99)},
		{ID: 6, Name: "Paubha", Slug: "paubha", ParentID: id(2)},
	}

	tree := BuildCategoryTree(flat)
	require.Len(t, tree, 3)
	assert.Equal(t, []string{"art", "metalwork", "orphan"}, []string{tree[0].Slug, tree[1].Slug, tree[2].Slug})

	require.Len(t, tree[0].Children, 1)
	paintings := tree[0].Children[0]
	assert.Equal(t, "paintings", paintings.Slug)
	require.Len(t, paintings.Children, 2)
	assert.Equal(t, "thangka", paintings.Children[0].Slug)
	assert.Equal(t, "paubha", paintings.Children[1].Slug)

	assert.Empty(t, tree[1].Children)
}

func TestBuildCategoryTree_KeepsCycleMembers(t *testing.T) {
	id := func(v int64) *int64 { return &v }
	flat := []models.Category{
		{ID: 1, Name: "A", ParentID: id(2)},
		{ID: 2, Name: "B", ParentID: id(1)},
		{ID: 3, Name: "Root"},
	}
	tree := BuildCategoryTree(flat)
	require.Len(t, tree, 2)
	assert.Equal(t, int64(3), tree[0].ID)
	assert.Equal(t, int64(1), tree[1].ID)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, int64(2), tree[1].Children[0].ID)
	assert.Empty(t, tree[1].Children[0].Children)
}

func TestUpdateCategory_KeepsImageWhenOmitted(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.PUT("/admin/categories/:id", asUser(1, models.RoleAdmin), h.UpdateCategory)

	image := "/uploads/categories/thangka.png"
	d.catalog.On("GetCategory", mock.Anything, int64(5)).Return(&models.Category{ID: 5, Name: "Thangka", Slug: "thangka", ImageURL: &image}, nil)
	d.catalog.On("UpdateCategory", mock.Anything, mock.MatchedBy(func(c *models.Category) bool {
		return c.ImageURL != nil && *c.ImageURL == image && c.Name == "Thangka Paintings"
	})).Return(nil).Once()

	w := doJSON(r, http.MethodPut, "/admin/categories/5", gin.H{"name": "Thangka Paintings"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	d.catalog.AssertExpectations(t)
	assert.Empty(t, d.uploads.deleted)
}

func TestUpdateCategory_NewImageReplacesUpload(t *testing.T) {
	h, d := newTestHandlers()
	r := gin.New()
	r.PUT("/admin/categories/:id", asUser(1, models.RoleAdmin), h.UpdateCategory)

	image := "/uploads/categories/thangka.png"
	d.catalog.On("GetCategory", mock.Anything, int64(5)).Return(&models.Category{ID: 5, Name: "Thangka", Slug: "thangka", ImageURL: &image}, nil)
	d.catalog.On("UpdateCategory", mock.Anything, mock.MatchedBy(func(c *models.Category) bool {
		return c.ImageURL != nil && *c.ImageURL == "https://cdn.example.com/thangka.jpg"
	})).Return(nil).Once()

	w := doJSON(r, http.MethodPut, "/admin/categories/5", gin.H{"name": "Thangka", "imageUrl": "https://cdn.example.com/thangka.jpg"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{image}, d.uploads.deleted)
}

// --- Pagination ---

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  store.Page
	}{
		{"", store.Page{Number: 1, Size: 12}},
		{"page=3&page_size=24", store.Page{Number: 3, Size: 24}},
		{"page=0&page_size=-1", store.Page{Number: 1, Size: 12}},
		{"page=x&page_size=500", store.Page{Number: 1, Size: 60}},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		assert.Equal(t, tt.want, parsePage(c), tt.query)
	}
}

func TestFetchPage_ClampsPastLastPage(t *testing.T) {
	var asked []int
	fetch := func(p store.Page) ([]int, int64, error) {
		asked = append(asked, p.Number)
		if p.Number > 3 {
			return nil, 25, nil
		}
		return []int{p.Number}, 25, nil
	}

	items, meta, err := fetchPage(store.Page{Number: 5, Size: 12}, fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 3}, asked)
	assert.Equal(t, []int{3}, items)
	assert.Equal(t, PageMeta{Page: 3, PageSize: 12, Total: 25, TotalPages: 3}, meta)
}

func TestFetchPage_EmptyResult(t *testing.T) {
	items, meta, err := fetchPage(store.Page{Number: 2, Size: 12}, func(store.Page) ([]string, int64, error) {
		return nil, 0, nil
	})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, 0, meta.TotalPages)
	assert.Equal(t, 2, meta.Page)
}

// --- Reviews ---

func TestDeleteReview_Ownership(t *testing.T) {
	h, d := newTestHandlers()
	d.reviews.On("GetReview", mock.Anything, int64(4)).Return(&models.Review{ID: 4, UserID: 7}, nil)
	d.reviews.On("DeleteReview", mock.Anything, int64(4)).Return(nil)
	d.users.On("GetUser", mock.Anything, int64(8)).Return(&models.User{ID: 8, Role: models.RoleCustomer}, nil)
	d.users.On("GetUser", mock.Anything, int64(1)).Return(&models.User{ID: 1, Role: models.RoleAdmin}, nil)

	stranger := gin.New()
	stranger.DELETE("/reviews/:id", asUser(8, models.RoleCustomer), h.DeleteReview)
	w := doJSON(stranger, http.MethodDelete, "/reviews/4", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	d.reviews.AssertNotCalled(t, "DeleteReview", mock.Anything, int64(4))

	owner := gin.New()
	owner.DELETE("/reviews/:id", asUser(7, models.RoleCustomer), h.DeleteReview)
	w = doJSON(owner, http.MethodDelete, "/reviews/4", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	admin := gin.New()
	admin.DELETE("/reviews/:id", asUser(1, models.RoleAdmin), h.DeleteReview)
	w = doJSON(admin, http.MethodDelete, "/reviews/4", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteReview_DemotedAdminTokenIsRejected(t *testing.T) {
	h, d := newTestHandlers()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	r := gin.New()
	r.DELETE("/reviews/:id", middleware.AuthMiddleware(tokens), h.DeleteReview)

	// Token minted while user 7 was an admin; the stored role is now customer.
	token, err := tokens.GenerateToken(7, models.RoleAdmin)
	require.NoError(t, err)
	d.users.On("GetUser", mock.Anything, int64(7)).Return(&models.User{ID: 7, Role: models.RoleCustomer}, nil)
	d.reviews.On("GetReview", mock.Anything, int64(99)).Return(&models.Review{ID: 99, UserID: 3}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/reviews/99", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	d.reviews.AssertNotCalled(t, "DeleteReview", mock.Anything, mock.Anything)
}

// --- Assistant ---

func TestAssistantChat_Disabled(t *testing.T) {
	h, _ := newTestHandlers()
	r := gin.New()
	r.POST("/admin/assistant/chat", asUser(1, models.RoleAdmin), h.AssistantChat)

	w := doJSON(r, http.MethodPost, "/admin/assistant/chat", gin.H{"message": "How many orders today?"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAssistantChat_LogsExchange(t *testing.T) {
	h, d := newTestHandlers()
	assistant := &assistantMock{}
	h.Assistant = assistant

	r := gin.New()
	r.POST("/admin/assistant/chat", asUser(1, models.RoleAdmin), h.AssistantChat)

	assistant.On("Ask", mock.Anything, "How many orders today?").Return(&ai.Answer{Text: "Three.", TokensUsed: 42}, nil).Once()
	d.notifications.On("SaveAssistantLog", mock.Anything, mock.MatchedBy(func(l *models.AssistantLog) bool {
		return l.UserID == 1 && l.Answer == "Three." && l.TokensUsed == 42
	})).Return(nil).Once()

	w := doJSON(r, http.MethodPost, "/admin/assistant/chat", gin.H{"message": "How many orders today?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"response":"Three."`))
	d.notifications.AssertExpectations(t)
}

// --- Misc ---

func TestRespondError_Canceled(t *testing.T) {
	h, _ := newTestHandlers()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.respondError(c, fmt.Errorf("query: %w", context.Canceled), "Failed")
	assert.Equal(t, 499, c.Writer.Status())
}

func TestMakeSlug(t *testing.T) {
	assert.Equal(t, "custom-slug", makeSlug("custom-slug", "Ignored Name"))
	assert.Equal(t, "bronze-buddha-statue", makeSlug("", "Bronze Buddha Statue"))
}
