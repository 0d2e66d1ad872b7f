package controllers

import (
	"fmt"
	"net/http"

	cartsvc "github.com/bookworm-shop/storefront/internal/cart"
	"github.com/bookworm-shop/storefront/internal/counter"
	"github.com/bookworm-shop/storefront/pkg/logger"
)

// CartEvents streams the cart unit count over server-sent events so every
// open view keeps its badge in sync without polling. Each event carries the
// freshly derived count rather than the raw delta, which makes dropped
// signals self-healing.
func CartEvents(broadcaster *counter.Broadcaster, svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok || broadcaster == nil || svc == nil {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		// Coalescing wakeup. The writer recomputes the count on every
		// signal, so losing intermediate signals loses nothing.
		wake := make(chan struct{}, 1)
		unsubscribe := broadcaster.Subscribe(func(int) {
			select {
			case wake <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		ctx := r.Context()
		sendCount := func() bool {
			count, err := svc.Count(ctx)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart count stream read failed")
				}
				return false
			}
			if _, err := fmt.Fprintf(w, "event: cart-count\ndata: {\"count\":%d}\n\n", count); err != nil {
				return false
			}
			flusher.Flush()
			return true
		}

		if !sendCount() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-wake:
				if !sendCount() {
					return
				}
			}
		}
	}
}
