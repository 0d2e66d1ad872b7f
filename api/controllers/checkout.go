package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bookworm-shop/storefront/api/responses"
	checkoutsvc "github.com/bookworm-shop/storefront/internal/checkout"
	"github.com/bookworm-shop/storefront/pkg/bookworm"
	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
	"github.com/bookworm-shop/storefront/pkg/logger"
)

type orderLineResponse struct {
	BookID    int             `json:"bookId"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	ItemTotal decimal.Decimal `json:"itemTotal"`
}

type orderResponse struct {
	ID          int                 `json:"id"`
	OrderDate   string              `json:"orderDate"`
	OrderAmount decimal.Decimal     `json:"orderAmount"`
	Items       []orderLineResponse `json:"items"`
}

func newOrderResponse(order *bookworm.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(order.Items))
	for _, line := range order.Items {
		lines = append(lines, orderLineResponse{
			BookID:    line.BookID,
			Title:     line.Title,
			Quantity:  line.Quantity,
			Price:     line.Price,
			ItemTotal: line.ItemTotal,
		})
	}
	return orderResponse{
		ID:          order.ID,
		OrderDate:   order.OrderDate,
		OrderAmount: order.OrderAmount,
		Items:       lines,
	}
}

// CheckoutPlaceOrder submits the cart as an order. A conflict response means
// the order service refused part of the cart; the details say whether a line
// was removed, and the cart should be re-fetched either way.
func CheckoutPlaceOrder(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		order, err := svc.PlaceOrder(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
