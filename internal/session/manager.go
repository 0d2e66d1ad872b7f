// Package session owns the device-local auth state: the stored access token,
// the cached profile, and the cart handover that runs on login.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bookworm-shop/storefront/pkg/bookworm"
	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
	"github.com/bookworm-shop/storefront/pkg/logger"
	"github.com/bookworm-shop/storefront/pkg/storage"
)

// AuthClient is the slice of the backend client the session manager needs.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*bookworm.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*bookworm.User, error)
}

// CartMerger drains the guest cart into the freshly authenticated user's
// cart and reports how many units actually moved.
type CartMerger interface {
	MergeGuestCart(ctx context.Context) (int, error)
}

type Manager struct {
	store  storage.Store
	client AuthClient
	carts  CartMerger
	logger *logger.Logger
}

func NewManager(store storage.Store, client AuthClient, carts CartMerger, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("storage required")
	}
	if client == nil {
		return nil, fmt.Errorf("auth client required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart merger required")
	}
	return &Manager{store: store, client: client, carts: carts, logger: logg}, nil
}

// Login authenticates against the backend, persists the session, then drains
// the guest cart into the user's cart. It returns the profile and the number
// of units the drain credited. A failed drain does not undo the login; the
// guest cart simply waits for the next one.
func (m *Manager) Login(ctx context.Context, email, password string) (*bookworm.User, int, error) {
	auth, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, 0, err
	}

	if err := m.store.Set(ctx, TokenKey, []byte(auth.AccessToken)); err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting session token")
	}
	if raw, err := json.Marshal(auth.User); err == nil {
		if err := m.store.Set(ctx, UserKey, raw); err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting session profile")
		}
	}

	merged, err := m.carts.MergeGuestCart(ctx)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn(m.logger.WithField(ctx, "error", err.Error()), "guest cart drain failed after login")
		}
		return &auth.User, 0, nil
	}
	return &auth.User, merged, nil
}

// Logout revokes the server-side session when possible and always clears the
// local one. Backend failures never leave a half-logged-out device.
func (m *Manager) Logout(ctx context.Context) error {
	token, ok, err := m.Token(ctx)
	if err != nil {
		return err
	}
	if ok {
		if err := m.client.Logout(ctx, token); err != nil {
			if m.logger != nil {
				m.logger.Warn(m.logger.WithField(ctx, "error", err.Error()), "remote logout failed, clearing local session anyway")
			}
		}
	}

	if err := m.store.Delete(ctx, TokenKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing session token")
	}
	if err := m.store.Delete(ctx, UserKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing session profile")
	}
	return nil
}

// Token returns the stored access token, if any.
func (m *Manager) Token(ctx context.Context) (string, bool, error) {
	raw, ok, err := m.store.Get(ctx, TokenKey)
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading session token")
	}
	if !ok || len(raw) == 0 {
		return "", false, nil
	}
	return string(raw), true, nil
}

// CurrentUser returns the cached profile. A cache miss with a live token
// falls back to the backend and refreshes the cache.
func (m *Manager) CurrentUser(ctx context.Context) (*bookworm.User, bool, error) {
	raw, ok, err := m.store.Get(ctx, UserKey)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading session profile")
	}
	if ok {
		var user bookworm.User
		if err := json.Unmarshal(raw, &user); err == nil {
			return &user, true, nil
		}
		if m.logger != nil {
			m.logger.Warn(m.logger.WithField(ctx, "error", "malformed cached profile"), "refreshing session profile from backend")
		}
	}

	token, ok, err := m.Token(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	user, err := m.client.Me(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := m.store.Set(ctx, UserKey, raw); err != nil && m.logger != nil {
			m.logger.Warn(m.logger.WithField(ctx, "error", err.Error()), "caching session profile failed")
		}
	}
	return user, true, nil
}

// IsAuthenticated reports whether a token is on device. It says nothing about
// whether the backend still honors it.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, ok, err := m.Token(ctx)
	return err == nil && ok
}
