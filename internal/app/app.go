// Package app builds the storefront from configuration and runs its HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/address"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/category"
	"github.com/wichananm65/storefront-backend/internal/config"
	"github.com/wichananm65/storefront-backend/internal/favorite"
	"github.com/wichananm65/storefront-backend/internal/httpx"
	"github.com/wichananm65/storefront-backend/internal/notify"
	"github.com/wichananm65/storefront-backend/internal/order"
	"github.com/wichananm65/storefront-backend/internal/payment"
	"github.com/wichananm65/storefront-backend/internal/product"
	"github.com/wichananm65/storefront-backend/internal/ratelimit"
	"github.com/wichananm65/storefront-backend/internal/recent"
	"github.com/wichananm65/storefront-backend/internal/recommended"
	"github.com/wichananm65/storefront-backend/internal/sale"
	"github.com/wichananm65/storefront-backend/internal/shipping"
	"github.com/wichananm65/storefront-backend/internal/storage"
	"github.com/wichananm65/storefront-backend/internal/user"
	"gorm.io/gorm"
)

type routes interface {
	RegisterRoutes(r fiber.Router, g httpx.Guards)
}

type App struct {
	ctx      context.Context
	cfg      config.Config
	db       *gorm.DB
	producer *notify.Kafka
	notifier notify.Notifier
	http     *fiber.App
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initNotifier()
	app.initHTTP()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.SlogLevel()}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	db, err := storage.Open(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		app.fallDown(op, err)
	}
	app.db = db
}

func (app *App) initNotifier() {
	const op = "App.initNotifier"

	var notifiers notify.Multi
	if app.cfg.Email.APIURL != "" {
		notifiers = append(notifiers, notify.NewEmail(notify.EmailConfig{
			APIURL:  app.cfg.Email.APIURL,
			APIKey:  app.cfg.Email.APIKey,
			From:    app.cfg.Email.From,
			Timeout: app.cfg.Email.Timeout,
		}))
	}
	if len(app.cfg.Broker.SeedBrokers) > 0 {
		cl, err := notify.NewProducerClient(app.ctx, app.cfg.Broker.SeedBrokers, app.cfg.Broker.OrderEventsTopic)
		if err != nil {
			app.fallDown(op, err)
		}
		app.producer = notify.NewKafka(cl)
		notifiers = append(notifiers, app.producer)
	}

	if len(notifiers) == 0 {
		slog.Warn("no order notifiers configured", "op", op)
		app.notifier = notify.Nop{}
		return
	}
	app.notifier = notifiers
}

func (app *App) pricing() order.Pricing {
	const op = "App.pricing"

	parse := func(key, v string) decimal.Decimal {
		d, err := decimal.NewFromString(v)
		if err != nil {
			app.fallDown(op, fmt.Errorf("checkout.%s: %w", key, err))
		}
		return d
	}
	c := app.cfg.Checkout
	return order.Pricing{
		TaxRate:          parse("tax_rate", c.TaxRate),
		ShippingFlat:     parse("shipping_flat", c.ShippingFlat),
		FreeShippingOver: parse("free_shipping_over", c.FreeShippingOver),
		Currency:         c.Currency,
		SuccessURL:       c.SuccessURL,
		CancelURL:        c.CancelURL,
	}
}

func (app *App) payments() payment.Gateway {
	if app.cfg.Stripe.SecretKey == "" {
		slog.Warn("stripe is not configured, checkout is disabled", "op", "App.payments")
		return payment.Disabled{}
	}
	return payment.NewStripe(app.cfg.Stripe.SecretKey, app.cfg.Stripe.WebhookSecret)
}

func (app *App) labels() *shipping.HTTPProvider {
	s := app.cfg.Shipping
	return shipping.New(shipping.Config{
		APIURL:   s.APIURL,
		APIToken: s.APIToken,
		Carrier:  s.Carrier,
		Timeout:  s.Timeout,
		From: shipping.Address{
			Name:       s.FromName,
			Line1:      s.FromLine,
			City:       s.FromCity,
			PostalCode: s.FromZip,
			Country:    s.FromCtry,
		},
	})
}

func (app *App) guards() httpx.Guards {
	const op = "App.guards"

	secret := app.cfg.Auth.JWTSecret
	if secret == "" {
		app.fallDown(op, errors.New("auth.jwt_secret is required"))
	}
	return httpx.Guards{
		Auth:         auth.RequireAuth(secret),
		OptionalAuth: auth.OptionalAuth(secret),
		Admin:        auth.RequireAdmin(),
		RateLimit: ratelimit.New(ratelimit.Config{
			Enabled: app.cfg.RateLimit.Enabled,
			Max:     app.cfg.RateLimit.Max,
			Window:  app.cfg.RateLimit.Window,
		}),
	}
}

func (app *App) initHTTP() {
	db := app.db
	g := app.guards()

	categories := category.NewService(category.NewPostgresRepository(db))
	sales := sale.NewService(sale.NewPostgresRepository(db))
	products := product.NewService(product.NewPostgresRepository(db), categories, sales)
	carts := cart.NewService(cart.NewPostgresRepository(db), products)
	addresses := address.NewService(address.NewPostgresRepository(db))
	orders := order.NewService(order.Deps{
		Repo:      order.NewPostgresRepository(db),
		Catalog:   products,
		Carts:     carts,
		Addresses: addresses,
		Payments:  app.payments(),
		Labels:    app.labels(),
		Notifier:  app.notifier,
		Pricing:   app.pricing(),
	})
	issuer := auth.NewIssuer(app.cfg.Auth.JWTSecret, app.cfg.Auth.TokenTTL)

	handlers := []routes{
		user.NewHandler(user.NewService(user.NewPostgresRepository(db), app.cfg.Auth.AdminEmails), issuer),
		address.NewHandler(addresses),
		category.NewHandler(categories),
		sale.NewHandler(sales),
		recommended.NewHandler(recommended.NewService(recommended.NewPostgresRepository(db), products)),
		product.NewHandler(products),
		cart.NewHandler(carts),
		favorite.NewHandler(favorite.NewService(favorite.NewPostgresRepository(db), products)),
		recent.NewHandler(recent.NewService(recent.NewPostgresRepository(db), products)),
		order.NewHandler(orders),
	}

	f := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: httpx.ErrorHandler,
	})
	f.Use(recover.New())
	f.Use(cors.New(cors.Config{
		AllowOrigins: app.cfg.AllowOrigin,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	f.Use(httpx.RequestLogger())
	f.Get("/healthz", app.health)

	api := f.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api, g)
	}
	f.Use(func(c *fiber.Ctx) error {
		return httpx.Fail(c, httpx.NotFound("route not found"))
	})

	app.http = f
}

func (app *App) health(c *fiber.Ctx) error {
	sqlDB, err := app.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		return httpx.Fail(c, httpx.NewError(fiber.StatusServiceUnavailable, "database is unavailable"))
	}
	return httpx.OK(c, fiber.Map{"status": "ok"})
}

// Run serves HTTP in the background; stopFn is called if the server fails.
func (app *App) Run(stopFn context.CancelFunc) {
	const op = "App.Run"
	log := slog.With("op", op)

	go func() {
		log.Info("http server is listening", "addr", app.cfg.HTTPAddr)
		if err := app.http.Listen(app.cfg.HTTPAddr); err != nil {
			log.Error("http server failed", "err", err)
			stopFn()
		}
	}()

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	if err := app.http.ShutdownWithContext(ctx); err != nil {
		slog.Error("failed to shut down http server", "err", err)
	}
	if app.producer != nil {
		app.producer.Close()
	}
	storage.Close(app.db)

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
