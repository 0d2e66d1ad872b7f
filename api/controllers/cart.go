package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bookworm-shop/storefront/api/responses"
	"github.com/bookworm-shop/storefront/api/validators"
	cartsvc "github.com/bookworm-shop/storefront/internal/cart"
	"github.com/bookworm-shop/storefront/internal/catalog"
	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
	"github.com/bookworm-shop/storefront/pkg/logger"
)

type cartResponse struct {
	Items []cartsvc.LineItem `json:"items"`
	Count int                `json:"count"`
	Total decimal.Decimal    `json:"total"`
}

func newCartResponse(items []cartsvc.LineItem, count int, total decimal.Decimal) cartResponse {
	if items == nil {
		items = []cartsvc.LineItem{}
	}
	return cartResponse{Items: items, Count: count, Total: total}
}

// CartGet serves the active cart with its derived count and total.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		items, err := svc.Items(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		total, err := svc.Total(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count, err := svc.Count(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(items, count, total))
	}
}

type addItemRequest struct {
	BookID   int `json:"bookId" validate:"required,min=1"`
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type addItemResponse struct {
	Added int `json:"added"`
	Count int `json:"count"`
}

// CartAddItem snapshots the book from the catalog and upserts it into the
// cart. The response carries how many units actually went in, which is less
// than requested once the per-item cap bites.
func CartAddItem(svc cartsvc.Service, books *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || books == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := books.ToCartItem(r.Context(), payload.BookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		added, err := svc.AddItem(r.Context(), item, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count, err := svc.Count(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addItemResponse{Added: added, Count: count})
	}
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

// CartUpdateItem sets the quantity of one line. Zero removes the line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		bookID, err := bookIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateQuantity(r.Context(), bookID, *payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartCount(w, r, svc, logg)
	}
}

// CartRemoveItem drops one line.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		bookID, err := bookIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), bookID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartCount(w, r, svc, logg)
	}
}

// CartClear empties the active cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"count": 0})
	}
}

// CartCount serves the derived unit count on its own, for badge hydration.
func CartCount(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		writeCartCount(w, r, svc, logg)
	}
}

func writeCartCount(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, logg *logger.Logger) {
	count, err := svc.Count(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]int{"count": count})
}
