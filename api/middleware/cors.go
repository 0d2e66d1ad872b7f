package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/bookworm-shop/storefront/pkg/config"
)

// CORS returns middleware that admits the local web UI origin.
func CORS(cfg config.UIConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
