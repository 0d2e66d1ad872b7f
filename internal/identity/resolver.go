// Package identity maps the device's auth state onto a cart storage scope.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookworm-shop/storefront/internal/cart"
	"github.com/bookworm-shop/storefront/internal/session"
	"github.com/bookworm-shop/storefront/pkg/logger"
	"github.com/bookworm-shop/storefront/pkg/storage"
)

// Resolver derives the active cart scope from the stored access token. It
// reads storage on every call so a login or logout between operations takes
// effect immediately.
type Resolver struct {
	store  storage.Store
	logger *logger.Logger
}

func NewResolver(store storage.Store, logg *logger.Logger) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("storage required")
	}
	return &Resolver{store: store, logger: logg}, nil
}

// Scope returns the storage key of the cart the device should operate on.
// Anything short of a readable token with a usable subject claim resolves to
// the guest cart; the token's signature is deliberately not verified, since
// the scope only namespaces local data and the order service re-checks the
// token on every authenticated call.
func (r *Resolver) Scope(ctx context.Context) string {
	raw, ok, err := r.store.Get(ctx, session.TokenKey)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn(r.logger.WithField(ctx, "error", err.Error()), "falling back to guest cart scope")
		}
		return cart.GuestCartKey
	}
	if !ok || len(raw) == 0 {
		return cart.GuestCartKey
	}

	sub, ok := subjectFrom(string(raw))
	if !ok {
		return cart.GuestCartKey
	}
	return cart.UserCartKeyPrefix + sub
}

func subjectFrom(token string) (string, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", false
	}

	switch sub := claims["sub"].(type) {
	case string:
		if sub == "" {
			return "", false
		}
		return sub, true
	case float64:
		// Some token issuers encode numeric user ids without quoting.
		return strconv.FormatFloat(sub, 'f', -1, 64), true
	case json.Number:
		return sub.String(), true
	default:
		return "", false
	}
}
