// Package checkout turns the persisted cart into a submitted order and
// repairs the cart when the order service refuses part of it.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookworm-shop/storefront/internal/cart"
	"github.com/bookworm-shop/storefront/pkg/bookworm"
	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
	"github.com/bookworm-shop/storefront/pkg/logger"
)

const (
	removedOneFormat = "Item '%s' is not available and was removed from your cart."
	removedSomeMsg   = "Some items are not available and were removed from your cart."
)

// TokenSource yields the access token the order submission travels under.
type TokenSource interface {
	Token(ctx context.Context) (string, bool, error)
}

// OrderClient is the slice of the backend client that submits orders.
type OrderClient interface {
	CreateOrder(ctx context.Context, token string, items []bookworm.OrderItem) (*bookworm.Order, error)
}

type Service struct {
	carts  cart.Service
	orders OrderClient
	tokens TokenSource
	logger *logger.Logger
}

func NewService(carts cart.Service, orders OrderClient, tokens TokenSource, logg *logger.Logger) (*Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order client required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source required")
	}
	return &Service{carts: carts, orders: orders, tokens: tokens, logger: logg}, nil
}

// PlaceOrder submits every cart line to the order service. On success the
// cart is cleared and the order returned. When the order service refuses a
// named line as unavailable, that line is removed and the caller gets a
// conflict error carrying the user-facing removal message, so a retry submits
// only what is left. A rejection that does not name a book mutates nothing.
func (s *Service) PlaceOrder(ctx context.Context) (*bookworm.Order, error) {
	token, ok, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	items, err := s.carts.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]bookworm.OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, bookworm.OrderItem{BookID: item.ID, Quantity: item.Quantity})
	}

	order, err := s.orders.CreateOrder(ctx, token, lines)
	if err != nil {
		var unavailable *bookworm.ItemUnavailableError
		if errors.As(err, &unavailable) {
			return nil, s.repairCart(ctx, items, unavailable)
		}
		return nil, err
	}

	if err := s.carts.Clear(ctx); err != nil {
		if s.logger != nil {
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "order placed but cart not cleared")
		}
	}
	return order, nil
}

// repairCart removes the line the order service refused. A rejection that
// does not identify a book leaves the cart alone; there is no safe guess
// about which lines to drop.
func (s *Service) repairCart(ctx context.Context, items []cart.LineItem, unavailable *bookworm.ItemUnavailableError) error {
	if unavailable.BookID <= 0 {
		return s.conflict("Some items in your cart are not available.", nil)
	}

	title := ""
	for _, item := range items {
		if item.ID == unavailable.BookID {
			title = item.Title
			break
		}
	}
	if err := s.carts.RemoveItem(ctx, unavailable.BookID); err != nil {
		return err
	}
	message := removedSomeMsg
	if title != "" {
		message = fmt.Sprintf(removedOneFormat, title)
	}
	return s.conflict(message, []int{unavailable.BookID})
}

func (s *Service) conflict(message string, removed []int) error {
	err := pkgerrors.New(pkgerrors.CodeItemUnavailable, message)
	return err.WithDetails(map[string]any{
		"message": message,
		"removed": removed,
	})
}
