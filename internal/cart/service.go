package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
	"github.com/bookworm-shop/storefront/pkg/logger"
	"github.com/bookworm-shop/storefront/pkg/storage"
)

// ScopeResolver names the storage key of the currently active cart. It is
// consulted on every operation because the auth state can change between
// calls.
type ScopeResolver interface {
	Scope(ctx context.Context) string
}

// Notifier receives the net quantity delta of every cart mutation. The
// service is the only caller; views subscribe on the other side.
type Notifier interface {
	NotifyDelta(delta int)
}

// Service exposes the persisted cart operations.
type Service interface {
	Items(ctx context.Context) ([]LineItem, error)
	SaveItems(ctx context.Context, items []LineItem) error
	AddItem(ctx context.Context, item CatalogItem, requested int) (int, error)
	UpdateQuantity(ctx context.Context, bookID, quantity int) error
	RemoveItem(ctx context.Context, bookID int) error
	Clear(ctx context.Context) error
	Total(ctx context.Context) (decimal.Decimal, error)
	Count(ctx context.Context) (int, error)
	MergeGuestCart(ctx context.Context) (int, error)
}

type service struct {
	mu     sync.Mutex
	store  storage.Store
	scopes ScopeResolver
	notify Notifier
	logger *logger.Logger
}

// NewService builds the cart service backed by the provided stack.
func NewService(store storage.Store, scopes ScopeResolver, notify Notifier, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("storage required")
	}
	if scopes == nil {
		return nil, fmt.Errorf("scope resolver required")
	}
	if notify == nil {
		return nil, fmt.Errorf("count notifier required")
	}
	return &service{
		store:  store,
		scopes: scopes,
		notify: notify,
		logger: logg,
	}, nil
}

func (s *service) Items(ctx context.Context) ([]LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx, s.scopes.Scope(ctx))
}

func (s *service) SaveItems(ctx context.Context, items []LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := s.scopes.Scope(ctx)
	previous, err := s.read(ctx, scope)
	if err != nil {
		return err
	}
	if err := s.write(ctx, scope, items); err != nil {
		return err
	}
	s.broadcast(sumQuantities(items) - sumQuantities(previous))
	return nil
}

// AddItem upserts a line for the catalog item and returns the quantity
// actually added, which is less than requested once the per-item cap is hit.
// Callers must reconcile cached counts from the returned value.
func (s *service) AddItem(ctx context.Context, item CatalogItem, requested int) (int, error) {
	if requested <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scope := s.scopes.Scope(ctx)
	items, err := s.read(ctx, scope)
	if err != nil {
		return 0, err
	}

	added := 0
	found := false
	for i := range items {
		if items[i].ID != item.ID {
			continue
		}
		next := clampQuantity(items[i].Quantity + requested)
		added = next - items[i].Quantity
		items[i].Quantity = next
		found = true
		break
	}
	if !found {
		added = clampQuantity(requested)
		items = append(items, item.lineItem(added))
	}

	if err := s.write(ctx, scope, items); err != nil {
		return 0, err
	}
	s.broadcast(added)
	return added, nil
}

// UpdateQuantity sets the stored quantity for a line, clamped to the cap. A
// quantity of zero or below removes the line. Unknown ids are a no-op.
func (s *service) UpdateQuantity(ctx context.Context, bookID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := s.scopes.Scope(ctx)
	items, err := s.read(ctx, scope)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ID != bookID {
			continue
		}
		if quantity <= 0 {
			return s.removeLocked(ctx, scope, items, i)
		}
		next := clampQuantity(quantity)
		delta := next - items[i].Quantity
		items[i].Quantity = next
		if err := s.write(ctx, scope, items); err != nil {
			return err
		}
		s.broadcast(delta)
		return nil
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, bookID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := s.scopes.Scope(ctx)
	items, err := s.read(ctx, scope)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == bookID {
			return s.removeLocked(ctx, scope, items, i)
		}
	}
	return nil
}

// Clear deletes the active scope's entire persisted collection.
func (s *service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := s.scopes.Scope(ctx)
	items, err := s.read(ctx, scope)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, scope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	s.broadcast(-sumQuantities(items))
	return nil
}

func (s *service) Total(ctx context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read(ctx, s.scopes.Scope(ctx))
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

func (s *service) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read(ctx, s.scopes.Scope(ctx))
	if err != nil {
		return 0, err
	}
	return sumQuantities(items), nil
}

func (s *service) removeLocked(ctx context.Context, scope string, items []LineItem, idx int) error {
	removed := items[idx].Quantity
	items = append(items[:idx], items[idx+1:]...)
	if err := s.write(ctx, scope, items); err != nil {
		return err
	}
	s.broadcast(-removed)
	return nil
}

// read loads the collection under key. A missing collection is an empty cart;
// malformed persisted data is treated as empty and logged, never surfaced.
func (s *service) read(ctx context.Context, key string) ([]LineItem, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading cart")
	}
	if !ok {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		if s.logger != nil {
			ctx = s.logger.WithCartScope(ctx, key)
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "discarding malformed cart data")
		}
		return nil, nil
	}
	return items, nil
}

func (s *service) write(ctx context.Context, key string, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting cart")
	}
	return nil
}

func (s *service) broadcast(delta int) {
	if delta != 0 {
		s.notify.NotifyDelta(delta)
	}
}
