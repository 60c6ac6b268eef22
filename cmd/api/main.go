package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antiquenepal/storefront/internal/ai"
	"github.com/antiquenepal/storefront/internal/auth"
	"github.com/antiquenepal/storefront/internal/cache"
	"github.com/antiquenepal/storefront/internal/config"
	"github.com/antiquenepal/storefront/internal/database"
	"github.com/antiquenepal/storefront/internal/email"
	"github.com/antiquenepal/storefront/internal/events"
	"github.com/antiquenepal/storefront/internal/handlers"
	"github.com/antiquenepal/storefront/internal/middleware"
	"github.com/antiquenepal/storefront/internal/pricing"
	"github.com/antiquenepal/storefront/internal/receipt"
	"github.com/antiquenepal/storefront/internal/routes"
	"github.com/antiquenepal/storefront/internal/storage"
	"github.com/antiquenepal/storefront/internal/store"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	// 0. --- Load Configuration (.env + APP_* variables) ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Main Database Connection (Read/Write) ---
	db, err := database.OpenDBWithDSN(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	gdb, err := database.OpenGorm(db, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(gdb, log); err != nil {
			return err
		}
	}

	st, err := store.New(gdb, log)
	if err != nil {
		return err
	}

	// 2. --- Catalog Cache (optional) ---
	var catalog store.CatalogStore = st
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		catalog = cache.NewCachedCatalog(st, rdb, cfg.Redis.TTL, log)
		log.Info("catalog cache enabled", "addr", cfg.Redis.Addr)
	}

	// 3. --- Order Events (optional) ---
	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		publisher = kp
		log.Info("order events enabled", "topic", cfg.Kafka.Topic)
	}
	defer publisher.Close()

	// 4. --- AI Assistant (optional, read-only connection) ---
	var assistant handlers.AssistantService
	if cfg.Assistant.GeminiAPIKey != "" {
		a, closeAssistant, err := newAssistant(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeAssistant()
		assistant = a
	}

	// 5. --- Google Sign-In (optional) ---
	var oauth handlers.OAuthProvider
	if cfg.OAuth.GoogleClientID != "" {
		oauth = auth.NewGoogleOAuth(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.GoogleRedirectURL)
	}

	policy, err := pricing.NewPolicy(cfg.Pricing.FreeShippingThreshold, cfg.Pricing.FlatShippingFee, cfg.Pricing.TaxRate, cfg.Pricing.Currency)
	if err != nil {
		return err
	}
	uploader := storage.NewUploader(cfg.Uploads.PublicDir, cfg.Server.BaseURL, cfg.Uploads.MaxBytes)

	// --- Application Setup ---
	app := &handlers.Handlers{
		Catalog:       catalog,
		Carts:         st,
		Orders:        st,
		Users:         st,
		Wishlist:      st,
		Reviews:       st,
		Content:       st,
		Notifications: st,

		Pricing: policy,
		Shop: receipt.Shop{
			Name:     cfg.Shop.Name,
			Email:    cfg.Shop.Email,
			Phone:    cfg.Shop.Phone,
			Address:  cfg.Shop.Address,
			Currency: cfg.Pricing.Currency,
		},
		Tokens:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		OAuth:     oauth,
		Assistant: assistant,
		Uploads:   uploader,
		Events:    publisher,
		Mailer:    email.NewLogMailer(log),

		PaymentWindow: cfg.Worker.PaymentWindow,
		SecureCookies: !cfg.IsDevelopment(),
		Log:           log,
	}

	// --- Router Setup ---
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(app, routes.Options{
		FrontendOrigin: cfg.Server.FrontendOrigin,
		UploadsDir:     uploader.Root(),
		AuthLimiter:    middleware.NewIPRateLimiter(rate.Every(6*time.Second), 10),
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// --- Start Server ---
	g.Go(func() error {
		log.Info("starting Antique Nepal API server", "port", cfg.Server.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// --- Graceful Shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// --- Background Worker ---
	// Cancels online-payment orders that stayed unpaid past the payment window.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Worker.Interval)
		defer ticker.Stop()

		log.Info("background worker started", "interval", cfg.Worker.Interval, "payment_window", cfg.Worker.PaymentWindow)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := app.ProcessOverdueOrders(gctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("overdue order sweep failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

// newAssistant opens the read-only pool and the Gemini client. The returned
// func closes both.
func newAssistant(ctx context.Context, cfg *config.Config, log *slog.Logger) (*ai.Assistant, func(), error) {
	if cfg.Database.ReadOnlyDSN == "" {
		return nil, nil, errors.New("APP_DATABASE_READONLY_DSN is required when the assistant is enabled")
	}

	dbReadOnly, err := database.OpenDBWithDSN(ctx, cfg.Database.ReadOnlyDSN)
	if err != nil {
		return nil, nil, err
	}

	a, err := ai.NewAssistant(ctx, cfg.Assistant.GeminiAPIKey, cfg.Assistant.Model, dbReadOnly, log)
	if err != nil {
		dbReadOnly.Close()
		return nil, nil, err
	}
	log.Info("assistant enabled", "model", cfg.Assistant.Model)

	return a, func() {
		a.Close()
		dbReadOnly.Close()
	}, nil
}
