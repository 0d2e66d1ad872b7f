package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookworm-shop/storefront/api/controllers"
	"github.com/bookworm-shop/storefront/api/middleware"
	"github.com/bookworm-shop/storefront/internal/cart"
	"github.com/bookworm-shop/storefront/internal/catalog"
	checkoutsvc "github.com/bookworm-shop/storefront/internal/checkout"
	"github.com/bookworm-shop/storefront/internal/counter"
	"github.com/bookworm-shop/storefront/internal/session"
	"github.com/bookworm-shop/storefront/pkg/config"
	"github.com/bookworm-shop/storefront/pkg/logger"
	"github.com/bookworm-shop/storefront/pkg/storage"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store storage.Store,
	broadcaster *counter.Broadcaster,
	catalogService *catalog.Service,
	cartService cart.Service,
	sessionManager *session.Manager,
	checkoutService *checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.UI),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/", controllers.BooksList(catalogService, logg))
		r.Get("/on-sale", controllers.BooksRail(catalogService, logg, "on-sale"))
		r.Get("/recommended", controllers.BooksRail(catalogService, logg, "recommended"))
		r.Get("/popular", controllers.BooksRail(catalogService, logg, "popular"))
		r.Get("/{bookID}", controllers.BookDetail(catalogService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(sessionManager, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, logg))
		r.Get("/me", controllers.AuthMe(sessionManager, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", controllers.CartGet(cartService, logg))
		r.Delete("/", controllers.CartClear(cartService, logg))
		r.Get("/count", controllers.CartCount(cartService, logg))
		r.Get("/events", controllers.CartEvents(broadcaster, cartService, logg))
		r.Post("/items", controllers.CartAddItem(cartService, catalogService, logg))
		r.Patch("/items/{bookID}", controllers.CartUpdateItem(cartService, logg))
		r.Delete("/items/{bookID}", controllers.CartRemoveItem(cartService, logg))
	})

	r.Post("/api/v1/checkout", controllers.CheckoutPlaceOrder(checkoutService, logg))

	return r
}
