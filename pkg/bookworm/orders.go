package bookworm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
)

type OrderItem struct {
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}

type OrderLine struct {
	BookID    int             `json:"book_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	ItemTotal decimal.Decimal `json:"item_total"`
}

type Order struct {
	ID          int             `json:"id"`
	UserID      int             `json:"user_id"`
	OrderDate   string          `json:"order_date"`
	OrderAmount decimal.Decimal `json:"order_amount"`
	Items       []OrderLine     `json:"items"`
}

type orderResponse struct {
	Success bool  `json:"success"`
	Order   Order `json:"order"`
}

// ItemUnavailableError reports that the order service rejected one of the
// submitted lines. BookID is zero when the response did not identify which
// line was refused.
type ItemUnavailableError struct {
	BookID int
	Detail string
}

func (e *ItemUnavailableError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "item unavailable"
}

var bookIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)book with id (\d+)`),
	regexp.MustCompile(`(?i)book_id:?\s*(\d+)`),
}

// CreateOrder submits the cart lines to the order service. Rejections that
// name an unpurchasable book surface as *ItemUnavailableError so the caller
// can repair the cart; everything else maps to the shared taxonomy.
func (c *Client) CreateOrder(ctx context.Context, token string, items []OrderItem) (*Order, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order items")
	}

	var resp orderResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/orders/",
		token:       token,
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	}, &resp)
	if err != nil {
		if unavailable, ok := unavailableFrom(err); ok {
			return nil, unavailable
		}
		return nil, mapError(err)
	}
	if !resp.Success {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order service reported failure")
	}
	return &resp.Order, nil
}

func unavailableFrom(err error) (*ItemUnavailableError, bool) {
	var ae *apiError
	if !errors.As(err, &ae) {
		return nil, false
	}
	switch ae.Status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusGone:
	default:
		return nil, false
	}

	lower := strings.ToLower(ae.Detail)
	if !strings.Contains(lower, "not available") &&
		!strings.Contains(lower, "unavailable") &&
		!strings.Contains(lower, "not found") {
		return nil, false
	}

	for _, pattern := range bookIDPatterns {
		if m := pattern.FindStringSubmatch(ae.Detail); m != nil {
			id, convErr := strconv.Atoi(m[1])
			if convErr == nil && id > 0 {
				return &ItemUnavailableError{BookID: id, Detail: ae.Detail}, true
			}
		}
	}
	return &ItemUnavailableError{Detail: ae.Detail}, true
}
