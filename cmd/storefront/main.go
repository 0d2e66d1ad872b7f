package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/bookworm-shop/storefront/api/routes"
	"github.com/bookworm-shop/storefront/internal/cart"
	"github.com/bookworm-shop/storefront/internal/catalog"
	"github.com/bookworm-shop/storefront/internal/checkout"
	"github.com/bookworm-shop/storefront/internal/counter"
	"github.com/bookworm-shop/storefront/internal/identity"
	"github.com/bookworm-shop/storefront/internal/session"
	"github.com/bookworm-shop/storefront/pkg/bookworm"
	"github.com/bookworm-shop/storefront/pkg/config"
	"github.com/bookworm-shop/storefront/pkg/logger"
	"github.com/bookworm-shop/storefront/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := newStore(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	backend, err := bookworm.NewClient(cfg.Backend, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create backend client", err)
		os.Exit(1)
	}

	broadcaster := counter.NewBroadcaster()
	broadcaster.Subscribe(func(delta int) {
		ctx := logg.WithField(context.Background(), "delta", delta)
		logg.Debug(ctx, "cart count changed")
	})

	resolver, err := identity.NewResolver(store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity resolver", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(store, resolver, broadcaster, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(backend)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(store, backend, cartService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(cartService, backend, sessionManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Driver,
		"backend": cfg.Backend.BaseURL,
	})
	logg.Info(ctx, "starting storefront gateway")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			store,
			broadcaster,
			catalogService,
			cartService,
			sessionManager,
			checkoutService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront gateway stopped unexpectedly", err)
		os.Exit(1)
	}
}

func newStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		return storage.NewRedis(ctx, cfg.Redis, logg)
	case config.StorageDriverMemory:
		return storage.NewMemory(), nil
	default:
		return storage.NewSQLite(ctx, cfg.Storage, logg)
	}
}
