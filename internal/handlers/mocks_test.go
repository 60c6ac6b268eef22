package handlers

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"sync"
	"time"

	"github.com/antiquenepal/storefront/internal/ai"
	"github.com/antiquenepal/storefront/internal/events"
	"github.com/antiquenepal/storefront/internal/models"
	"github.com/antiquenepal/storefront/internal/pricing"
	"github.com/antiquenepal/storefront/internal/receipt"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/stretchr/testify/mock"
)

// Each mock embeds its store interface so methods a test never sets up
// panic instead of silently succeeding.

type catalogMock struct {
	mock.Mock
	store.CatalogStore
}

func (m *catalogMock) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *catalogMock) SearchProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(ctx, f)
	p, _ := args.Get(0).([]models.Product)
	return p, args.Get(1).(int64), args.Error(2)
}

func (m *catalogMock) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *catalogMock) UpdateCategory(ctx context.Context, c *models.Category) error {
	return m.Called(ctx, c).Error(0)
}

type cartsMock struct {
	mock.Mock
	store.CartStore
}

func (m *cartsMock) AddItem(ctx context.Context, userID, variantID int64, quantity int) error {
	return m.Called(ctx, userID, variantID, quantity).Error(0)
}

func (m *cartsMock) CountItems(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type ordersMock struct {
	mock.Mock
	store.OrderStore
}

func (m *ordersMock) PlaceOrder(ctx context.Context, in store.PlaceOrderInput) (*models.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *ordersMock) GetUserOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *ordersMock) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *ordersMock) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, string, error) {
	args := m.Called(ctx, id, status)
	o, _ := args.Get(0).(*models.Order)
	return o, args.String(1), args.Error(2)
}

func (m *ordersMock) CancelOverdueOrders(ctx context.Context, placedBefore time.Time) ([]models.Order, error) {
	args := m.Called(ctx, placedBefore)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Error(1)
}

func (m *ordersMock) DashboardStats(ctx context.Context, lowStockThreshold int) (*store.DashboardStats, error) {
	args := m.Called(ctx, lowStockThreshold)
	s, _ := args.Get(0).(*store.DashboardStats)
	return s, args.Error(1)
}

type usersMock struct {
	mock.Mock
	store.UserStore
}

func (m *usersMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type reviewsMock struct {
	mock.Mock
	store.ReviewStore
}

func (m *reviewsMock) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Review)
	return r, args.Error(1)
}

func (m *reviewsMock) DeleteReview(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type notificationsMock struct {
	mock.Mock
	store.NotificationStore
}

func (m *notificationsMock) AddNotification(ctx context.Context, userID int64, message, link string) error {
	return m.Called(ctx, userID, message, link).Error(0)
}

func (m *notificationsMock) SaveAssistantLog(ctx context.Context, l *models.AssistantLog) error {
	return m.Called(ctx, l).Error(0)
}

type assistantMock struct{ mock.Mock }

func (m *assistantMock) Ask(ctx context.Context, question string) (*ai.Answer, error) {
	args := m.Called(ctx, question)
	a, _ := args.Get(0).(*ai.Answer)
	return a, args.Error(1)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, e events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type sentMail struct{ to, subject, body string }

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type recordingUploads struct {
	mu      sync.Mutex
	deleted []string
}

func (u *recordingUploads) SaveFileHeader(kind string, _ *multipart.FileHeader) (string, error) {
	return "/uploads/" + kind + "/new.png", nil
}

func (u *recordingUploads) Delete(url string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, url)
	return nil
}

type testDeps struct {
	catalog       *catalogMock
	carts         *cartsMock
	orders        *ordersMock
	users         *usersMock
	reviews       *reviewsMock
	notifications *notificationsMock
	events        *recordingPublisher
	mailer        *recordingMailer
	uploads       *recordingUploads
}

func newTestHandlers() (*Handlers, *testDeps) {
	policy, err := pricing.NewPolicy("5000", "150", "0.13", "NPR")
	if err != nil {
		panic(err)
	}

	d := &testDeps{
		catalog:       &catalogMock{},
		carts:         &cartsMock{},
		orders:        &ordersMock{},
		users:         &usersMock{},
		reviews:       &reviewsMock{},
		notifications: &notificationsMock{},
		events:        &recordingPublisher{},
		mailer:        &recordingMailer{},
		uploads:       &recordingUploads{},
	}
	h := &Handlers{
		Catalog:       d.catalog,
		Carts:         d.carts,
		Orders:        d.orders,
		Users:         d.users,
		Reviews:       d.reviews,
		Notifications: d.notifications,
		Pricing:       policy,
		Shop:          receipt.Shop{Name: "Antique Nepal", Email: "hello@antiquenepal.com", Currency: "NPR"},
		Events:        d.events,
		Mailer:        d.mailer,
		Uploads:       d.uploads,
		PaymentWindow: 48 * time.Hour,
		Log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h, d
}
